package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gdugdh24/recapp-backend/internal/domain"
	"github.com/gdugdh24/recapp-backend/internal/repository"
)

const profileColumns = `
	user_id, full_name, email, phone_number, photo_url, bio,
	age, weight_lbs, height_feet, height_inches,
	gym_level, workout_goal, sports, survey_completed,
	created_at, updated_at`

type profileRow struct {
	UserID          string         `db:"user_id"`
	FullName        string         `db:"full_name"`
	Email           string         `db:"email"`
	PhoneNumber     string         `db:"phone_number"`
	PhotoURL        sql.NullString `db:"photo_url"`
	Bio             sql.NullString `db:"bio"`
	Age             sql.NullInt64  `db:"age"`
	WeightLbs       sql.NullInt64  `db:"weight_lbs"`
	HeightFeet      sql.NullInt64  `db:"height_feet"`
	HeightInches    sql.NullInt64  `db:"height_inches"`
	GymLevel        sql.NullString `db:"gym_level"`
	WorkoutGoal     sql.NullString `db:"workout_goal"`
	Sports          pq.StringArray `db:"sports"`
	SurveyCompleted bool           `db:"survey_completed"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (r *profileRow) toDomain() *domain.Profile {
	p := &domain.Profile{
		UserID:          r.UserID,
		FullName:        r.FullName,
		Email:           r.Email,
		PhoneNumber:     r.PhoneNumber,
		PhotoURL:        stringPtr(r.PhotoURL),
		Bio:             stringPtr(r.Bio),
		Age:             intPtr(r.Age),
		WeightLbs:       intPtr(r.WeightLbs),
		HeightFeet:      intPtr(r.HeightFeet),
		HeightInches:    intPtr(r.HeightInches),
		WorkoutGoal:     stringPtr(r.WorkoutGoal),
		Sports:          []string(r.Sports),
		SurveyCompleted: r.SurveyCompleted,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if p.Sports == nil {
		p.Sports = []string{}
	}
	if r.GymLevel.Valid {
		level := domain.GymLevel(r.GymLevel.String)
		p.GymLevel = &level
	}
	return p
}

type profileRepository struct {
	db   *sqlx.DB
	opts Options
}

func NewProfileRepository(db *sqlx.DB, opts Options) repository.ProfileRepository {
	return &profileRepository{db: db, opts: opts.withDefaults()}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()

	if profile.Sports == nil {
		profile.Sports = []string{}
	}
	query := `
		INSERT INTO profiles (user_id, full_name, email, phone_number, photo_url, bio, sports)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(
		ctx, query,
		profile.UserID, profile.FullName, profile.Email, profile.PhoneNumber,
		nullString(profile.PhotoURL), nullString(profile.Bio), pq.Array(profile.Sports),
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if hasCode(err, pqUniqueViolation) {
		return domain.ErrProfileAlreadyExists
	}
	return mapError("create profile", err)
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()

	var row profileRow
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, mapError("get profile", err)
	}
	return row.toDomain(), nil
}

func (r *profileRepository) GetByUserIDs(ctx context.Context, userIDs []string) ([]*domain.Profile, error) {
	if len(userIDs) == 0 {
		return []*domain.Profile{}, nil
	}
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()

	var rows []profileRow
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ANY($1) ORDER BY user_id`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(userIDs)); err != nil {
		return nil, mapError("get profiles", err)
	}
	return toProfiles(rows), nil
}

func (r *profileRepository) CompleteSurvey(ctx context.Context, userID string, survey domain.Survey) (*domain.Profile, error) {
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()

	var row profileRow
	query := `
		UPDATE profiles
		SET age = $1, weight_lbs = $2, height_feet = $3, height_inches = $4,
		    gym_level = $5, workout_goal = $6, sports = $7,
		    survey_completed = TRUE, updated_at = NOW()
		WHERE user_id = $8
		RETURNING ` + profileColumns
	err := r.db.GetContext(
		ctx, &row, query,
		survey.Age, survey.WeightLbs, survey.HeightFeet, survey.HeightInches,
		string(survey.GymLevel), survey.WorkoutGoal, pq.Array(survey.Sports),
		userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, mapError("complete survey", err)
	}
	return row.toDomain(), nil
}

func (r *profileRepository) UpdateSports(ctx context.Context, userID string, sports []string) (*domain.Profile, error) {
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()

	if sports == nil {
		sports = []string{}
	}
	var row profileRow
	query := `
		UPDATE profiles
		SET sports = $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING ` + profileColumns
	if err := r.db.GetContext(ctx, &row, query, pq.Array(sports), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, mapError("update sports", err)
	}
	return row.toDomain(), nil
}

func (r *profileRepository) ListMatchable(ctx context.Context, afterUserID string, exclude []string, limit int) ([]*domain.Profile, error) {
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()

	if exclude == nil {
		exclude = []string{}
	}
	var rows []profileRow
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE survey_completed AND user_id > $1 AND NOT (user_id = ANY($2))
		ORDER BY user_id
		LIMIT $3
	`
	if err := r.db.SelectContext(ctx, &rows, query, afterUserID, pq.Array(exclude), limit); err != nil {
		return nil, mapError("list matchable profiles", err)
	}
	return toProfiles(rows), nil
}

func toProfiles(rows []profileRow) []*domain.Profile {
	out := make([]*domain.Profile, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}
