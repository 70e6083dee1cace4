package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSnapshotRepositoryGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSnapshotRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM snapshots WHERE key = ?")).
		WithArgs("timetable_subjects").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`[{"id":"1"}]`))

	value, found, err := repo.Get(context.Background(), "timetable_subjects")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"1"}]`, value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSnapshotRepository(db)
	mock.ExpectQuery("SELECT value FROM snapshots").
		WithArgs("timetable_settings").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	value, found, err := repo.Get(context.Background(), "timetable_settings")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestSnapshotRepositoryPutUpserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSnapshotRepository(db)
	fixed := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)")+".*ON CONFLICT").
		WithArgs("timetable_subjects", "[]", fixed.Format(time.RFC3339Nano)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Put(context.Background(), "timetable_subjects", "[]"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepositoryPutFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSnapshotRepository(db)
	mock.ExpectExec("INSERT INTO snapshots").WillReturnError(errors.New("disk I/O error"))

	err := repo.Put(context.Background(), "timetable_subjects", "[]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put snapshot timetable_subjects")
}
