package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/csvinsight/internal/analysis/entity"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgdb"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgerror"
)

// Migrations holds one directory of golang-migrate files per backend.
//
//go:embed migrations
var Migrations embed.FS

// MigrationDir is the directory of Migrations for backend.
func MigrationDir(backend pkgdb.Backend) string {
	return "migrations/" + string(backend)
}

const selectColumns = "id, file_name, file_ref, size, created_at, delete_at"

// SQLStore keeps upload records in the uploaded_files table of a sqlite,
// postgres or mysql database. Timestamps are Unix milliseconds.
type SQLStore struct {
	db      *sql.DB
	backend pkgdb.Backend
}

func NewSQLStore(db *sql.DB, backend pkgdb.Backend) *SQLStore {
	return &SQLStore{db: db, backend: backend}
}

func (s *SQLStore) CreateUpload(ctx context.Context, up entity.UploadedFile) error {
	_, err := s.db.ExecContext(ctx, s.q(
		"INSERT INTO uploaded_files ("+selectColumns+") VALUES (?, ?, ?, ?, ?, ?)"),
		up.ID, up.FileName, up.FileRef, up.Size, up.CreatedAt.UnixMilli(), toMillis(up.DeleteAt),
	)
	if err != nil {
		return fmt.Errorf("insert upload %d: %w", up.ID, err)
	}
	return nil
}

func (s *SQLStore) GetUpload(ctx context.Context, id int64) (entity.UploadedFile, error) {
	row := s.db.QueryRowContext(ctx, s.q("SELECT "+selectColumns+" FROM uploaded_files WHERE id = ?"), id)
	return scanUpload(row)
}

// UpdateUpload reads, mutates and writes the record inside one transaction.
// Postgres and mysql lock the row for the duration.
func (s *SQLStore) UpdateUpload(ctx context.Context, id int64, fn func(up *entity.UploadedFile)) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update upload %d: %w", id, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := "SELECT " + selectColumns + " FROM uploaded_files WHERE id = ?"
	if s.backend != pkgdb.BackendSQLite {
		query += " FOR UPDATE"
	}

	up, err := scanUpload(tx.QueryRowContext(ctx, s.q(query), id))
	if err != nil {
		return err
	}

	fn(&up)

	_, err = tx.ExecContext(ctx, s.q(
		"UPDATE uploaded_files SET file_name = ?, file_ref = ?, size = ?, created_at = ?, delete_at = ? WHERE id = ?"),
		up.FileName, up.FileRef, up.Size, up.CreatedAt.UnixMilli(), toMillis(up.DeleteAt), id,
	)
	if err != nil {
		return fmt.Errorf("update upload %d: %w", id, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update upload %d: %w", id, err)
	}
	return nil
}

func (s *SQLStore) ListExpired(ctx context.Context, now time.Time, limit int) ([]entity.UploadedFile, error) {
	query := "SELECT " + selectColumns + " FROM uploaded_files" +
		" WHERE delete_at IS NOT NULL AND delete_at <= ? ORDER BY delete_at, id"
	args := []any{now.UnixMilli()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list expired uploads: %w", err)
	}
	defer rows.Close()

	out := make([]entity.UploadedFile, 0)
	for rows.Next() {
		up, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expired uploads: %w", err)
	}

	return out, nil
}

func (s *SQLStore) DeleteUpload(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q("DELETE FROM uploaded_files WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete upload %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete upload %d: %w", id, err)
	}
	if n == 0 {
		return pkgerror.ErrNotFound
	}

	return nil
}

func (s *SQLStore) q(query string) string {
	return pkgdb.Rebind(s.backend, query)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(row scanner) (entity.UploadedFile, error) {
	var (
		up        entity.UploadedFile
		createdAt int64
		deleteAt  sql.NullInt64
	)

	err := row.Scan(&up.ID, &up.FileName, &up.FileRef, &up.Size, &createdAt, &deleteAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.UploadedFile{}, pkgerror.ErrNotFound
	}
	if err != nil {
		return entity.UploadedFile{}, fmt.Errorf("scan upload: %w", err)
	}

	up.CreatedAt = time.UnixMilli(createdAt).UTC()
	if deleteAt.Valid {
		at := time.UnixMilli(deleteAt.Int64).UTC()
		up.DeleteAt = &at
	}

	return up, nil
}

func toMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
