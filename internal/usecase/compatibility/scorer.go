package compatibility

import (
	"math"
	"strings"

	"github.com/gdugdh24/recapp-backend/internal/domain"
)

// Factor weights, summing to 1.
const (
	WeightSports      = 0.40
	WeightGymLevel    = 0.30
	WeightWorkoutGoal = 0.20
	WeightAge         = 0.10

	neutral = 0.5
)

// Result is a score in [0,100] and the factors that produced it.
type Result struct {
	Score     int
	Breakdown domain.ScoreBreakdown
}

// Score computes the compatibility of two profiles. It is symmetric and never fails.
func Score(a, b *domain.Profile) Result {
	sports := SportsOverlap(a.Sports, b.Sports)
	gym := GymLevelMatch(a.GymLevel, b.GymLevel)
	goal := WorkoutGoalMatch(a.WorkoutGoal, b.WorkoutGoal)
	age := AgeCompatibility(a.Age, b.Age)

	sum := sports*WeightSports + gym*WeightGymLevel + goal*WeightWorkoutGoal + age*WeightAge

	return Result{
		Score: clamp(int(math.Round(sum*100)), 0, 100),
		Breakdown: domain.ScoreBreakdown{
			SportsOverlap:    round3(sports),
			GymLevelMatch:    round3(gym),
			WorkoutGoalMatch: round3(goal),
			AgeCompatibility: round3(age),
		},
	}
}

// SportsOverlap is the case-insensitive Jaccard index of two sport sets.
func SportsOverlap(a, b []string) float64 {
	setA := lowerSet(a)
	setB := lowerSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return neutral
	}

	common := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			common++
		}
	}
	union := len(setA) + len(setB) - common
	return float64(common) / float64(union)
}

// CommonSports returns the sports of a that b also plays, in a's order.
func CommonSports(a, b []string) []string {
	setB := lowerSet(b)
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, s := range a {
		key := strings.ToLower(strings.TrimSpace(s))
		if _, ok := setB[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// GymLevelMatch decays with ordinal distance between levels.
func GymLevelMatch(a, b *domain.GymLevel) float64 {
	if a == nil || b == nil {
		return neutral
	}
	oa, ob := a.Ordinal(), b.Ordinal()
	if oa < 0 || ob < 0 {
		return neutral
	}
	switch abs(oa - ob) {
	case 0:
		return 1.0
	case 1:
		return 0.7
	default:
		return 0.3
	}
}

// WorkoutGoalMatch is all-or-nothing.
func WorkoutGoalMatch(a, b *string) float64 {
	if a == nil || b == nil || *a == "" || *b == "" {
		return neutral
	}
	if strings.EqualFold(strings.TrimSpace(*a), strings.TrimSpace(*b)) {
		return 1.0
	}
	return 0.0
}

// AgeCompatibility buckets the absolute age gap.
func AgeCompatibility(a, b *int) float64 {
	if a == nil || b == nil {
		return neutral
	}
	diff := abs(*a - *b)
	switch {
	case diff <= 2:
		return 1.0
	case diff <= 5:
		return 0.8
	case diff <= 10:
		return 0.5
	default:
		return 0.2
	}
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
