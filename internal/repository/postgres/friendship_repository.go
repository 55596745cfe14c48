package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gdugdh24/recapp-backend/internal/domain"
	"github.com/gdugdh24/recapp-backend/internal/repository"
)

const friendRequestColumns = `id, from_user, to_user, status, created_at, responded_at`

type friendRequestRow struct {
	ID          string       `db:"id"`
	FromUser    string       `db:"from_user"`
	ToUser      string       `db:"to_user"`
	Status      string       `db:"status"`
	CreatedAt   time.Time    `db:"created_at"`
	RespondedAt sql.NullTime `db:"responded_at"`
}

func (r *friendRequestRow) toDomain() *domain.FriendRequest {
	req := &domain.FriendRequest{
		ID:         r.ID,
		FromUserID: r.FromUser,
		ToUserID:   r.ToUser,
		Status:     domain.FriendRequestStatus(r.Status),
		CreatedAt:  r.CreatedAt,
	}
	if r.RespondedAt.Valid {
		t := r.RespondedAt.Time
		req.RespondedAt = &t
	}
	return req
}

type friendRequestRepository struct {
	db   *sqlx.DB
	opts Options
}

func NewFriendRequestRepository(db *sqlx.DB, opts Options) repository.FriendRequestRepository {
	return &friendRequestRepository{db: db, opts: opts.withDefaults()}
}

func (r *friendRequestRepository) CreatePending(ctx context.Context, fromUserID, toUserID string) (*domain.FriendRequest, bool, error) {
	key := domain.PairKey(fromUserID, toUserID)
	low, high := domain.OrderPair(fromUserID, toUserID)

	var lastErr error
	for attempt := 0; attempt < r.opts.MaxRetries; attempt++ {
		req, created, err := r.tryCreatePending(ctx, fromUserID, toUserID, key, low, high)
		if err == nil && req != nil {
			return req, created, nil
		}
		if err != nil && !isRetryable(err) {
			if hasCode(err, pqForeignKeyViolation) {
				return nil, false, domain.ErrProfileNotFound
			}
			return nil, false, mapError("create friend request", err)
		}
		// Serialization failure, or the pending request we collided with
		// was resolved before our read.
		lastErr = err
	}
	if lastErr != nil {
		return nil, false, domain.Transient(domain.ErrStoreConflict.Detail, lastErr)
	}
	return nil, false, domain.ErrStoreConflict
}

// tryCreatePending returns (nil, false, nil) when the caller should retry.
// It holds the pair lock, so an accept of the same pair cannot commit a
// friendship between the insert and the friendship check.
func (r *friendRequestRepository) tryCreatePending(ctx context.Context, from, to, key, low, high string) (*domain.FriendRequest, bool, error) {
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockPair(ctx, tx, key); err != nil {
		return nil, false, err
	}

	var row friendRequestRow
	err = tx.GetContext(ctx, &row, `
		INSERT INTO friend_requests (id, from_user, to_user, pair_key)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (
			SELECT 1 FROM friendships WHERE user_low = $5 AND user_high = $6
		)
		ON CONFLICT (pair_key) WHERE status = 'pending' DO NOTHING
		RETURNING `+friendRequestColumns,
		uuid.NewString(), from, to, key, low, high,
	)
	if err == nil {
		if err := tx.Commit(); err != nil {
			return nil, false, err
		}
		return row.toDomain(), true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	err = tx.GetContext(ctx, &row, `
		SELECT `+friendRequestColumns+`
		FROM friend_requests
		WHERE pair_key = $1 AND status = 'pending'`,
		key,
	)
	if err == nil {
		return row.toDomain(), false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	var friends bool
	if err := tx.GetContext(ctx, &friends, `
		SELECT EXISTS (SELECT 1 FROM friendships WHERE user_low = $1 AND user_high = $2)`,
		low, high,
	); err != nil {
		return nil, false, err
	}
	if friends {
		return nil, false, domain.ErrAlreadyFriends
	}
	return nil, false, nil
}

// lockPair serializes request writes for one user pair until tx ends.
func lockPair(ctx context.Context, tx *sqlx.Tx, key string) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key)
	return err
}

func (r *friendRequestRepository) get(ctx context.Context, dest any, query string, args ...any) error {
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()
	return r.db.GetContext(ctx, dest, query, args...)
}

func (r *friendRequestRepository) GetByID(ctx context.Context, id string) (*domain.FriendRequest, error) {
	var row friendRequestRow
	err := r.get(ctx, &row, `SELECT `+friendRequestColumns+` FROM friend_requests WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFriendRequestNotFound
		}
		return nil, mapError("get friend request", err)
	}
	return row.toDomain(), nil
}

func (r *friendRequestRepository) Resolve(ctx context.Context, id, responderID string, status domain.FriendRequestStatus) (*domain.FriendRequest, error) {
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, mapError("begin resolve", err)
	}
	defer func() { _ = tx.Rollback() }()

	var key string
	err = tx.GetContext(ctx, &key, `SELECT pair_key FROM friend_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrFriendRequestNotFound
	}
	if err != nil {
		return nil, mapError("load friend request", err)
	}
	if err := lockPair(ctx, tx, key); err != nil {
		return nil, mapError("lock friend pair", err)
	}

	var row friendRequestRow
	err = tx.GetContext(ctx, &row, `
		UPDATE friend_requests
		SET status = $1, responded_at = NOW()
		WHERE id = $2 AND to_user = $3 AND status = 'pending'
		RETURNING `+friendRequestColumns,
		string(status), id, responderID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.classifyUnresolved(ctx, tx, id, responderID)
	}
	if err != nil {
		return nil, mapError("resolve friend request", err)
	}

	req := row.toDomain()
	if status == domain.FriendRequestAccepted {
		low, high := domain.OrderPair(req.FromUserID, req.ToUserID)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO friendships (user_low, user_high, request_id, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_low, user_high) DO NOTHING`,
			low, high, req.ID, row.RespondedAt.Time,
		); err != nil {
			return nil, mapError("insert friendship", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError("commit resolve", err)
	}
	return req, nil
}

// classifyUnresolved explains why the conditional update matched nothing.
func (r *friendRequestRepository) classifyUnresolved(ctx context.Context, tx *sqlx.Tx, id, responderID string) error {
	var current struct {
		ToUser string `db:"to_user"`
		Status string `db:"status"`
	}
	err := tx.GetContext(ctx, &current, `SELECT to_user, status FROM friend_requests WHERE id = $1`, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrFriendRequestNotFound
	case err != nil:
		return mapError("load friend request", err)
	case current.ToUser != responderID:
		return domain.ErrNotRequestRecipient
	case current.Status != string(domain.FriendRequestPending):
		return domain.ErrRequestNotPending
	}
	return mapError("resolve friend request", fmt.Errorf("request %s still pending after update", id))
}

func (r *friendRequestRepository) ListPendingForRecipient(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()

	var rows []friendRequestRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+friendRequestColumns+`
		FROM friend_requests
		WHERE to_user = $1 AND status = 'pending'
		ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, mapError("list pending friend requests", err)
	}
	out := make([]*domain.FriendRequest, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (r *friendRequestRepository) ListPendingCounterparts(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()

	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT CASE WHEN from_user = $1 THEN to_user ELSE from_user END AS other
		FROM friend_requests
		WHERE status = 'pending' AND (from_user = $1 OR to_user = $1)
		ORDER BY other`,
		userID,
	)
	if err != nil {
		return nil, mapError("list pending counterparts", err)
	}
	return ids, nil
}

type friendshipRepository struct {
	db   *sqlx.DB
	opts Options
}

func NewFriendshipRepository(db *sqlx.DB, opts Options) repository.FriendshipRepository {
	return &friendshipRepository{db: db, opts: opts.withDefaults()}
}

func (r *friendshipRepository) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()

	low, high := domain.OrderPair(userA, userB)
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM friendships WHERE user_low = $1 AND user_high = $2)`,
		low, high,
	)
	if err != nil {
		return false, mapError("check friendship", err)
	}
	return exists, nil
}

func (r *friendshipRepository) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()

	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT user_high FROM friendships WHERE user_low = $1
		UNION
		SELECT user_low FROM friendships WHERE user_high = $1
		ORDER BY 1`,
		userID,
	)
	if err != nil {
		return nil, mapError("list friends", err)
	}
	return ids, nil
}
