package domain

import "strings"

// GymLevel is the self-reported training experience on an ordinal scale.
type GymLevel string

const (
	GymLevelBeginner     GymLevel = "Beginner"
	GymLevelIntermediate GymLevel = "Intermediate"
	GymLevelAdvanced     GymLevel = "Advanced"
)

// Ordinal returns the position of the level on the scale, or -1 if unknown.
func (l GymLevel) Ordinal() int {
	switch strings.ToLower(string(l)) {
	case "beginner":
		return 0
	case "intermediate":
		return 1
	case "advanced":
		return 2
	default:
		return -1
	}
}

// ParseGymLevel accepts any casing and returns the canonical level.
func ParseGymLevel(s string) (GymLevel, error) {
	switch GymLevel(strings.TrimSpace(s)).Ordinal() {
	case 0:
		return GymLevelBeginner, nil
	case 1:
		return GymLevelIntermediate, nil
	case 2:
		return GymLevelAdvanced, nil
	}
	return "", ErrInvalidGymLevel
}

// Sports is the fixed catalog offered by the survey.
var Sports = []string{
	"Basketball", "Soccer", "Tennis", "Swimming",
	"Running", "Volleyball", "Weightlifting", "Cycling",
	"Badminton", "Pickleball", "Table Tennis", "Football",
}

// WorkoutGoals is the fixed catalog of goals offered by the survey.
var WorkoutGoals = []string{
	"Getting stronger",
	"Building endurance",
	"Getting fit",
	"Flexibility & mindfulness",
	"Moving & staying active",
}

var (
	sportIndex = indexCatalog(Sports)
	goalIndex  = indexCatalog(WorkoutGoals)
)

func indexCatalog(values []string) map[string]string {
	idx := make(map[string]string, len(values))
	for _, v := range values {
		idx[strings.ToLower(v)] = v
	}
	return idx
}

// CanonicalSport returns the catalog spelling of s.
func CanonicalSport(s string) (string, bool) {
	v, ok := sportIndex[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

// CanonicalWorkoutGoal returns the catalog spelling of s.
func CanonicalWorkoutGoal(s string) (string, bool) {
	v, ok := goalIndex[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

// NormalizeSports validates every entry against the catalog and removes
// duplicates, keeping first-seen order.
func NormalizeSports(sports []string) ([]string, error) {
	out := make([]string, 0, len(sports))
	seen := make(map[string]struct{}, len(sports))
	for _, s := range sports {
		canonical, ok := CanonicalSport(s)
		if !ok {
			return nil, ErrInvalidSport
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out, nil
}
