package repository

import (
	"context"

	"github.com/gdugdh24/recapp-backend/internal/domain"
)

type ProfileRepository interface {
	// Create fails with domain.ErrProfileAlreadyExists if the user already has a profile.
	Create(ctx context.Context, profile *domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	// GetByUserIDs skips ids without a profile.
	GetByUserIDs(ctx context.Context, userIDs []string) ([]*domain.Profile, error)
	CompleteSurvey(ctx context.Context, userID string, survey domain.Survey) (*domain.Profile, error)
	UpdateSports(ctx context.Context, userID string, sports []string) (*domain.Profile, error)
	// ListMatchable returns up to limit survey-completed profiles not in exclude
	// whose user id sorts after afterUserID, ordered by user id. Callers page
	// through every candidate by passing the last id of the previous page.
	ListMatchable(ctx context.Context, afterUserID string, exclude []string, limit int) ([]*domain.Profile, error)
}
