package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesAreOrdered(t *testing.T) {
	files, err := migrationFiles(migrationFS)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_profiles.sql", "0002_friend_requests.sql", "0003_friendships.sql"}, files)
}

func TestMigrateSkipsAppliedVersions(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "postgres")

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery("SELECT COUNT\\(1\\) FROM schema_migrations").
		WithArgs("0001_profiles").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	for _, version := range []string{"0002_friend_requests", "0003_friendships"} {
		mock.ExpectQuery("SELECT COUNT\\(1\\) FROM schema_migrations").
			WithArgs(version).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs(version).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	applied, err := Migrate(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_friend_requests", "0003_friendships"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
