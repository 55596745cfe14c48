package domain

// ScoreBreakdown is the per-factor similarity, each in [0,1].
type ScoreBreakdown struct {
	SportsOverlap    float64 `json:"sportsOverlap"`
	GymLevelMatch    float64 `json:"gymLevelMatch"`
	WorkoutGoalMatch float64 `json:"workoutGoalMatch"`
	AgeCompatibility float64 `json:"ageCompatibility"`
}

// Match is a ranked candidate as shown on the home screen.
type Match struct {
	UserID             string         `json:"userId"`
	Name               string         `json:"name"`
	PhotoURL           *string        `json:"photoURL,omitempty"`
	Sports             []string       `json:"sports"`
	GymLevel           GymLevel       `json:"gymLevel"`
	WorkoutGoal        string         `json:"workoutGoal"`
	CompatibilityScore int            `json:"compatibilityScore"`
	ScoreBreakdown     ScoreBreakdown `json:"scoreBreakdown"`
}

// MatchExplanation details why two users scored the way they did.
type MatchExplanation struct {
	UserID             string         `json:"userId"`
	OtherUserID        string         `json:"otherUserId"`
	CompatibilityScore int            `json:"compatibilityScore"`
	ScoreBreakdown     ScoreBreakdown `json:"breakdown"`
	CommonSports       []string       `json:"commonSports"`
	AgeDifference      int            `json:"ageDifference"`
	GymLevels          [2]GymLevel    `json:"gymLevels"`
	WorkoutGoals       [2]string      `json:"workoutGoals"`
	Summary            string         `json:"summary"`
}
