package profile

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/recapp-backend/internal/domain"
	"github.com/gdugdh24/recapp-backend/internal/repository/memory"
)

type countingInvalidator struct {
	users []string
}

func (c *countingInvalidator) Invalidate(_ context.Context, userIDs ...string) error {
	c.users = append(c.users, userIDs...)
	return nil
}

func newUseCase() (*ProfileUseCase, *countingInvalidator) {
	inv := &countingInvalidator{}
	uc := NewProfileUseCase(memory.NewStore().Profiles(), inv, "@uic.edu", slog.New(slog.NewTextHandler(io.Discard, nil)))
	return uc, inv
}

func createAna(t *testing.T, uc *ProfileUseCase) *domain.Profile {
	t.Helper()
	p, err := uc.CreateProfile(context.Background(), "ana", "ana", &CreateProfileRequest{
		FullName:    " Ana Diaz ",
		Email:       "Ana@UIC.edu",
		PhoneNumber: "3125550100",
	})
	require.NoError(t, err)
	return p
}

func validSurvey() *SurveyRequest {
	inches := 0
	return &SurveyRequest{
		Age: 21, Weight: 150, HeightFeet: 5, HeightInches: &inches,
		GymLevel: "beginner", Sports: []string{"tennis", "Running"}, WorkoutGoal: "Getting fit",
	}
}

func TestCreateProfile(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	p := createAna(t, uc)
	assert.Equal(t, "Ana Diaz", p.FullName)
	assert.Equal(t, "ana@uic.edu", p.Email)
	assert.False(t, p.SurveyCompleted)
	assert.Empty(t, p.Sports)

	_, err := uc.CreateProfile(ctx, "ana", "ana", &CreateProfileRequest{FullName: "Ana", Email: "ana@uic.edu"})
	assert.ErrorIs(t, err, domain.ErrProfileAlreadyExists)

	_, err = uc.CreateProfile(ctx, "ben", "ben", &CreateProfileRequest{FullName: "Ben", Email: "ben@gmail.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmailDomain)

	_, err = uc.CreateProfile(ctx, "ana", "ben", &CreateProfileRequest{FullName: "Ben", Email: "ben@uic.edu"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetProfileRedactsForOthers(t *testing.T) {
	uc, _ := newUseCase()
	createAna(t, uc)
	ctx := context.Background()

	own, err := uc.GetProfile(ctx, "ana", "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana@uic.edu", own.Email)

	other, err := uc.GetProfile(ctx, "ben", "ana")
	require.NoError(t, err)
	assert.Empty(t, other.Email)
	assert.Empty(t, other.PhoneNumber)
	assert.Equal(t, "Ana Diaz", other.FullName)

	_, err = uc.GetProfile(ctx, "ana", "ghost")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestCompleteSurvey(t *testing.T) {
	uc, inv := newUseCase()
	createAna(t, uc)
	ctx := context.Background()

	p, err := uc.CompleteSurvey(ctx, "ana", "ana", validSurvey())
	require.NoError(t, err)
	assert.True(t, p.SurveyCompleted)
	require.NotNil(t, p.GymLevel)
	assert.Equal(t, domain.GymLevelBeginner, *p.GymLevel)
	assert.Equal(t, []string{"Tennis", "Running"}, p.Sports)
	require.NotNil(t, p.HeightInches)
	assert.Equal(t, 0, *p.HeightInches)
	assert.Equal(t, []string{"ana"}, inv.users)

	bad := validSurvey()
	bad.Sports = []string{"Quidditch"}
	_, err = uc.CompleteSurvey(ctx, "ana", "ana", bad)
	assert.ErrorIs(t, err, domain.ErrInvalidSport)

	_, err = uc.CompleteSurvey(ctx, "ghost", "ghost", validSurvey())
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestUpdateSportsRoundTrip(t *testing.T) {
	uc, _ := newUseCase()
	createAna(t, uc)
	ctx := context.Background()

	before, err := uc.CompleteSurvey(ctx, "ana", "ana", validSurvey())
	require.NoError(t, err)

	updated, err := uc.UpdateSports(ctx, "ana", "ana", &UpdateSportsRequest{Sports: &[]string{"Pickleball", "table tennis", "Pickleball"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pickleball", "Table Tennis"}, updated.Sports)

	after, err := uc.GetProfile(ctx, "ana", "ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pickleball", "Table Tennis"}, after.Sports)

	// everything except sports and the update timestamp is untouched
	after.Sports = before.Sports
	after.UpdatedAt = before.UpdatedAt
	assert.Equal(t, before, after)

	// a request without sports leaves the set alone
	_, err = uc.UpdateSports(ctx, "ana", "ana", &UpdateSportsRequest{})
	assert.ErrorIs(t, err, domain.ErrSportsRequired)
	kept, err := uc.GetProfile(ctx, "ana", "ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pickleball", "Table Tennis"}, kept.Sports)

	cleared, err := uc.UpdateSports(ctx, "ana", "ana", &UpdateSportsRequest{Sports: &[]string{}})
	require.NoError(t, err)
	assert.Empty(t, cleared.Sports)

	_, err = uc.UpdateSports(ctx, "ana", "ana", &UpdateSportsRequest{Sports: &[]string{"Chess"}})
	assert.ErrorIs(t, err, domain.ErrInvalidSport)

	_, err = uc.UpdateSports(ctx, "ben", "ana", &UpdateSportsRequest{Sports: &[]string{"Tennis"}})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.UpdateSports(ctx, "ghost", "ghost", &UpdateSportsRequest{Sports: &[]string{"Tennis"}})
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}
