package profile

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gdugdh24/recapp-backend/internal/domain"
	"github.com/gdugdh24/recapp-backend/internal/repository"
)

// MatchInvalidator drops cached match lists when a profile changes.
type MatchInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...string) error
}

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	invalidator MatchInvalidator
	emailDomain string
	logger      *slog.Logger
}

func NewProfileUseCase(
	profileRepo repository.ProfileRepository,
	invalidator MatchInvalidator,
	emailDomain string,
	logger *slog.Logger,
) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		invalidator: invalidator,
		emailDomain: emailDomain,
		logger:      logger,
	}
}

// CreateProfileRequest represents sign-up profile creation
type CreateProfileRequest struct {
	FullName    string  `json:"fullName" binding:"required,min=2,max=100"`
	Email       string  `json:"email" binding:"required,email"`
	PhoneNumber string  `json:"phoneNumber" binding:"omitempty,max=32"`
	PhotoURL    *string `json:"photoURL" binding:"omitempty,url"`
	Bio         *string `json:"bio" binding:"omitempty,max=500"`
}

// SurveyRequest represents the completed onboarding survey
type SurveyRequest struct {
	Age          int      `json:"age" binding:"required,min=18,max=100"`
	Weight       int      `json:"weight" binding:"required,min=50,max=500"`
	HeightFeet   int      `json:"heightFeet" binding:"required,min=3,max=8"`
	HeightInches *int     `json:"heightInches" binding:"required,min=0,max=11"`
	GymLevel     string   `json:"gymLevel" binding:"required,gym_level"`
	Sports       []string `json:"sports" binding:"required,min=1,dive,sport"`
	WorkoutGoal  string   `json:"workoutGoal" binding:"required,workout_goal"`
}

// UpdateSportsRequest represents a full replacement of the sport set.
// Sports must be present; an explicit empty list clears the set.
type UpdateSportsRequest struct {
	Sports *[]string `json:"sports" binding:"required,dive,sport"`
}

// CreateProfile creates the caller's profile at sign-up
func (uc *ProfileUseCase) CreateProfile(ctx context.Context, callerID, userID string, req *CreateProfileRequest) (*domain.Profile, error) {
	if callerID != userID {
		return nil, domain.ErrForbidden
	}
	if !domain.HasEmailDomain(req.Email, uc.emailDomain) {
		return nil, domain.ErrInvalidEmailDomain
	}

	profile := &domain.Profile{
		UserID:      userID,
		FullName:    strings.TrimSpace(req.FullName),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		PhotoURL:    req.PhotoURL,
		Bio:         req.Bio,
		Sports:      []string{},
	}
	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	uc.logger.Info("profile created", "user_id", userID)
	return profile, nil
}

// GetProfile returns a profile; contact details are hidden from other users
func (uc *ProfileUseCase) GetProfile(ctx context.Context, callerID, userID string) (*domain.Profile, error) {
	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if callerID != userID {
		return profile.Redacted(), nil
	}
	return profile, nil
}

// CompleteSurvey stores the survey answers and marks the profile matchable
func (uc *ProfileUseCase) CompleteSurvey(ctx context.Context, callerID, userID string, req *SurveyRequest) (*domain.Profile, error) {
	if callerID != userID {
		return nil, domain.ErrForbidden
	}

	survey := domain.Survey{
		Age:         req.Age,
		WeightLbs:   req.Weight,
		HeightFeet:  req.HeightFeet,
		GymLevel:    domain.GymLevel(req.GymLevel),
		WorkoutGoal: req.WorkoutGoal,
		Sports:      req.Sports,
	}
	if req.HeightInches != nil {
		survey.HeightInches = *req.HeightInches
	}
	if err := survey.Normalize(); err != nil {
		return nil, err
	}

	profile, err := uc.profileRepo.CompleteSurvey(ctx, userID, survey)
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, userID)
	uc.logger.Info("survey completed", "user_id", userID)
	return profile, nil
}

// UpdateSports replaces the user's sport set, leaving other fields untouched
func (uc *ProfileUseCase) UpdateSports(ctx context.Context, callerID, userID string, req *UpdateSportsRequest) (*domain.Profile, error) {
	if callerID != userID {
		return nil, domain.ErrForbidden
	}

	if req.Sports == nil {
		return nil, domain.ErrSportsRequired
	}

	sports, err := domain.NormalizeSports(*req.Sports)
	if err != nil {
		return nil, err
	}

	profile, err := uc.profileRepo.UpdateSports(ctx, userID, sports)
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, userID)
	return profile, nil
}

func (uc *ProfileUseCase) invalidate(ctx context.Context, userID string) {
	if err := uc.invalidator.Invalidate(ctx, userID); err != nil {
		uc.logger.Warn("failed to invalidate cached matches", "user_id", userID, "error", err)
	}
}
