package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/recapp-backend/internal/domain"
)

var testOpts = Options{QueryTimeout: time.Second, MaxRetries: 2}

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

var profileCols = []string{
	"user_id", "full_name", "email", "phone_number", "photo_url", "bio",
	"age", "weight_lbs", "height_feet", "height_inches",
	"gym_level", "workout_goal", "sports", "survey_completed",
	"created_at", "updated_at",
}

var requestCols = []string{"id", "from_user", "to_user", "status", "created_at", "responded_at"}

func expectPairLock(mock sqlmock.Sqlmock, key string) {
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs(key).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestProfileGetByUserID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepository(db, testOpts)
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow(
			"u1", "Ana Diaz", "ana@uic.edu", "3125550100", nil, nil,
			21, 140, 5, 6,
			"Intermediate", "Getting fit", "{Tennis,Running}", true,
			now, now,
		))

	p, err := repo.GetByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Diaz", p.FullName)
	assert.Equal(t, []string{"Tennis", "Running"}, p.Sports)
	require.NotNil(t, p.GymLevel)
	assert.Equal(t, domain.GymLevelIntermediate, *p.GymLevel)
	require.NotNil(t, p.Age)
	assert.Equal(t, 21, *p.Age)
	assert.Nil(t, p.PhotoURL)
	assert.True(t, p.SurveyCompleted)

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE user_id = $1")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(profileCols))

	_, err = repo.GetByUserID(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileListMatchablePagesByUserID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepository(db, testOpts)
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE survey_completed AND user_id > $1 AND NOT (user_id = ANY($2))")).
		WithArgs("a0499", sqlmock.AnyArg(), 500).
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow(
			"z-best", "Zed", "zed@uic.edu", nil, nil, nil,
			22, 160, 5, 9,
			"Intermediate", "Getting fit", "{Tennis}", true,
			now, now,
		))

	page, err := repo.ListMatchable(context.Background(), "a0499", []string{"me"}, 500)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "z-best", page[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepository(db, testOpts)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO profiles")).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	err := repo.Create(context.Background(), &domain.Profile{UserID: "u1", FullName: "Ana", Email: "ana@uic.edu"})
	assert.ErrorIs(t, err, domain.ErrProfileAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileUpdateSportsMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepository(db, testOpts)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE profiles")).
		WithArgs(sqlmock.AnyArg(), "ghost").
		WillReturnRows(sqlmock.NewRows(profileCols))

	_, err := repo.UpdateSports(context.Background(), "ghost", []string{"Tennis"})
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePendingInserts(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFriendRequestRepository(db, testOpts)
	now := time.Now().UTC()

	mock.ExpectBegin()
	expectPairLock(mock, "a:b")
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO friend_requests")).
		WithArgs(sqlmock.AnyArg(), "b", "a", "a:b", "a", "b").
		WillReturnRows(sqlmock.NewRows(requestCols).AddRow("r1", "b", "a", "pending", now, nil))
	mock.ExpectCommit()

	req, created, err := repo.CreatePending(context.Background(), "b", "a")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "r1", req.ID)
	assert.Equal(t, domain.FriendRequestPending, req.Status)
	assert.Nil(t, req.RespondedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePendingReturnsExisting(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFriendRequestRepository(db, testOpts)
	now := time.Now().UTC()

	mock.ExpectBegin()
	expectPairLock(mock, "a:b")
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO friend_requests")).
		WillReturnRows(sqlmock.NewRows(requestCols))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE pair_key = $1 AND status = 'pending'")).
		WithArgs("a:b").
		WillReturnRows(sqlmock.NewRows(requestCols).AddRow("r0", "b", "a", "pending", now, nil))
	mock.ExpectRollback()

	req, created, err := repo.CreatePending(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "r0", req.ID)
	assert.Equal(t, "b", req.FromUserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePendingAlreadyFriends(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFriendRequestRepository(db, testOpts)

	// The friendship check runs under the same pair lock as the insert.
	mock.ExpectBegin()
	expectPairLock(mock, "a:b")
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO friend_requests")).
		WillReturnRows(sqlmock.NewRows(requestCols))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE pair_key = $1")).
		WillReturnRows(sqlmock.NewRows(requestCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("a", "b").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, _, err := repo.CreatePending(context.Background(), "a", "b")
	assert.ErrorIs(t, err, domain.ErrAlreadyFriends)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePendingExhaustsRetries(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFriendRequestRepository(db, testOpts)

	for i := 0; i < testOpts.MaxRetries; i++ {
		mock.ExpectBegin()
		expectPairLock(mock, "a:b")
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO friend_requests")).
			WillReturnError(&pq.Error{Code: pqSerialization})
		mock.ExpectRollback()
	}

	_, _, err := repo.CreatePending(context.Background(), "a", "b")
	assert.Equal(t, domain.KindTransient, domain.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAcceptInsertsFriendship(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFriendRequestRepository(db, testOpts)
	created := time.Date(2024, 9, 1, 11, 0, 0, 0, time.UTC)
	responded := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pair_key FROM friend_requests WHERE id = $1")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"pair_key"}).AddRow("b:c"))
	expectPairLock(mock, "b:c")
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE friend_requests")).
		WithArgs("accepted", "r1", "b").
		WillReturnRows(sqlmock.NewRows(requestCols).AddRow("r1", "c", "b", "accepted", created, responded))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO friendships")).
		WithArgs("b", "c", "r1", responded).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req, err := repo.Resolve(context.Background(), "r1", "b", domain.FriendRequestAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendRequestAccepted, req.Status)
	require.NotNil(t, req.RespondedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveClassifiesMisses(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
		want error
	}{
		{"not recipient", sqlmock.NewRows([]string{"to_user", "status"}).AddRow("someone", "pending"), domain.ErrNotRequestRecipient},
		{"already answered", sqlmock.NewRows([]string{"to_user", "status"}).AddRow("b", "rejected"), domain.ErrRequestNotPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewFriendRequestRepository(db, testOpts)

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("SELECT pair_key FROM friend_requests")).
				WithArgs("r1").
				WillReturnRows(sqlmock.NewRows([]string{"pair_key"}).AddRow("a:b"))
			expectPairLock(mock, "a:b")
			mock.ExpectQuery(regexp.QuoteMeta("UPDATE friend_requests")).
				WillReturnRows(sqlmock.NewRows(requestCols))
			mock.ExpectQuery(regexp.QuoteMeta("SELECT to_user, status FROM friend_requests")).
				WithArgs("r1").
				WillReturnRows(tt.rows)
			mock.ExpectRollback()

			_, err := repo.Resolve(context.Background(), "r1", "b", domain.FriendRequestRejected)
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestResolveUnknownRequest(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFriendRequestRepository(db, testOpts)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pair_key FROM friend_requests")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"pair_key"}))
	mock.ExpectRollback()

	_, err := repo.Resolve(context.Background(), "r1", "b", domain.FriendRequestAccepted)
	assert.ErrorIs(t, err, domain.ErrFriendRequestNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFriendIDs(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFriendshipRepository(db, testOpts)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_high FROM friendships WHERE user_low = $1")).
		WithArgs("b").
		WillReturnRows(sqlmock.NewRows([]string{"user_high"}).AddRow("a").AddRow("c"))

	ids, err := repo.ListFriendIDs(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError("op", nil))
	assert.Equal(t, domain.KindTransient, domain.KindOf(mapError("op", context.DeadlineExceeded)))
	assert.Equal(t, domain.KindTransient, domain.KindOf(mapError("op", driver.ErrBadConn)))
	assert.Equal(t, domain.KindTransient, domain.KindOf(mapError("op", &pq.Error{Code: "08006"})))
	assert.Equal(t, domain.KindNotFound, domain.KindOf(mapError("op", domain.ErrProfileNotFound)))

	plain := errors.New("syntax error")
	got := mapError("op", plain)
	assert.Equal(t, domain.KindInternal, domain.KindOf(got))
	assert.ErrorIs(t, got, plain)
}
