package domain

import (
	"strings"
	"time"
)

// Survey bounds enforced at intake.
const (
	MinAge          = 18
	MaxAge          = 100
	MinWeightLbs    = 50
	MaxWeightLbs    = 500
	MinHeightFeet   = 3
	MaxHeightFeet   = 8
	MaxHeightInches = 11
)

// Profile is a user's profile document.
type Profile struct {
	UserID          string    `json:"userId"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email,omitempty"`
	PhoneNumber     string    `json:"phoneNumber,omitempty"`
	PhotoURL        *string   `json:"photoURL,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	Age             *int      `json:"age,omitempty"`
	WeightLbs       *int      `json:"weight,omitempty"`
	HeightFeet      *int      `json:"heightFeet,omitempty"`
	HeightInches    *int      `json:"heightInches,omitempty"`
	GymLevel        *GymLevel `json:"gymLevel,omitempty"`
	WorkoutGoal     *string   `json:"workoutGoal,omitempty"`
	Sports          []string  `json:"sports"`
	SurveyCompleted bool      `json:"surveyCompleted"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Redacted hides contact details when the profile is viewed by someone else.
func (p *Profile) Redacted() *Profile {
	c := *p
	c.Email = ""
	c.PhoneNumber = ""
	return &c
}

// Survey holds the answers written when onboarding completes.
type Survey struct {
	Age          int
	WeightLbs    int
	HeightFeet   int
	HeightInches int
	GymLevel     GymLevel
	WorkoutGoal  string
	Sports       []string
}

// Normalize validates the survey and rewrites enumerated answers to their
// catalog spelling.
func (s *Survey) Normalize() error {
	if s.Age < MinAge || s.Age > MaxAge {
		return ErrInvalidAge
	}
	if s.WeightLbs < MinWeightLbs || s.WeightLbs > MaxWeightLbs {
		return ErrInvalidWeight
	}
	if s.HeightFeet < MinHeightFeet || s.HeightFeet > MaxHeightFeet ||
		s.HeightInches < 0 || s.HeightInches > MaxHeightInches {
		return ErrInvalidHeight
	}
	level, err := ParseGymLevel(string(s.GymLevel))
	if err != nil {
		return err
	}
	s.GymLevel = level

	goal, ok := CanonicalWorkoutGoal(s.WorkoutGoal)
	if !ok {
		return ErrInvalidWorkoutGoal
	}
	s.WorkoutGoal = goal

	sports, err := NormalizeSports(s.Sports)
	if err != nil {
		return err
	}
	if len(sports) == 0 {
		return NewError(KindValidation, "select at least one sport")
	}
	s.Sports = sports
	return nil
}

// HasEmailDomain reports whether email ends in the institution suffix.
func HasEmailDomain(email, domain string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return true
	}
	if !strings.HasPrefix(domain, "@") {
		domain = "@" + domain
	}
	return len(email) > len(domain) && strings.HasSuffix(email, domain)
}
