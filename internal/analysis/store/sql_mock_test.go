package store

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/csvinsight/internal/analysis/entity"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgdb"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgerror"
)

var uploadColumns = []string{"id", "file_name", "file_ref", "size", "created_at", "delete_at"}

func newMockStore(t *testing.T, backend pkgdb.Backend) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSQLStore(db, backend), mock
}

func TestSQLStore_PostgresUpdateLocksRow(t *testing.T) {
	s, mock := newMockStore(t, pkgdb.BackendPostgres)
	deleteAt := time.UnixMilli(61_000).UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, file_name, file_ref, size, created_at, delete_at FROM uploaded_files WHERE id = $1 FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(uploadColumns).AddRow(int64(7), "a.csv", "uploads/7/a.csv", int64(10), int64(1_000), nil))
	mock.ExpectExec("UPDATE uploaded_files SET file_name = $1, file_ref = $2, size = $3, created_at = $4, delete_at = $5 WHERE id = $6").
		WithArgs("a.csv", "uploads/7/a.csv", int64(10), int64(1_000), int64(61_000), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.UpdateUpload(context.Background(), 7, func(up *entity.UploadedFile) {
		up.DeleteAt = &deleteAt
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_UpdateRollsBackWhenMissing(t *testing.T) {
	s, mock := newMockStore(t, pkgdb.BackendMySQL)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, file_name, file_ref, size, created_at, delete_at FROM uploaded_files WHERE id = ? FOR UPDATE").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(uploadColumns))
	mock.ExpectRollback()

	called := false
	err := s.UpdateUpload(context.Background(), 9, func(*entity.UploadedFile) { called = true })
	assert.ErrorIs(t, err, pkgerror.ErrNotFound)
	assert.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_UpdateRollsBackOnWriteError(t *testing.T) {
	s, mock := newMockStore(t, pkgdb.BackendPostgres)
	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, file_name, file_ref, size, created_at, delete_at FROM uploaded_files WHERE id = $1 FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(uploadColumns).AddRow(int64(7), "a.csv", "uploads/7/a.csv", int64(10), int64(1_000), nil))
	mock.ExpectExec("UPDATE uploaded_files SET file_name = $1, file_ref = $2, size = $3, created_at = $4, delete_at = $5 WHERE id = $6").
		WillReturnError(boom)
	mock.ExpectRollback()

	err := s.UpdateUpload(context.Background(), 7, func(*entity.UploadedFile) {})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_MySQLListExpired(t *testing.T) {
	s, mock := newMockStore(t, pkgdb.BackendMySQL)
	now := time.UnixMilli(120_000).UTC()

	mock.ExpectQuery("SELECT id, file_name, file_ref, size, created_at, delete_at FROM uploaded_files WHERE delete_at IS NOT NULL AND delete_at <= ? ORDER BY delete_at, id LIMIT ?").
		WithArgs(int64(120_000), int64(10)).
		WillReturnRows(sqlmock.NewRows(uploadColumns).
			AddRow(int64(1), "a.csv", "uploads/1/a.csv", int64(3), int64(0), int64(60_000)).
			AddRow(int64(2), "b.csv", "uploads/2/b.csv", int64(4), int64(0), int64(120_000)))

	got, err := s.ListExpired(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	require.NotNil(t, got[1].DeleteAt)
	assert.True(t, got[1].DeleteAt.Equal(now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_PostgresDeleteMissing(t *testing.T) {
	s, mock := newMockStore(t, pkgdb.BackendPostgres)

	mock.ExpectExec("DELETE FROM uploaded_files WHERE id = $1").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteUpload(context.Background(), 5)
	assert.ErrorIs(t, err, pkgerror.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
