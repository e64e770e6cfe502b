package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shandysiswandi/csvinsight/internal/analysis/entity"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgdb"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgerror"
)

type uploadStore interface {
	CreateUpload(ctx context.Context, up entity.UploadedFile) error
	GetUpload(ctx context.Context, id int64) (entity.UploadedFile, error)
	UpdateUpload(ctx context.Context, id int64, fn func(up *entity.UploadedFile)) error
	ListExpired(ctx context.Context, now time.Time, limit int) ([]entity.UploadedFile, error)
	DeleteUpload(ctx context.Context, id int64) error
}

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()

	ctx := context.Background()
	db, err := pkgdb.Open(ctx, pkgdb.BackendSQLite, filepath.Join(t.TempDir(), "csvinsight.db"))
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := pkgdb.Migrate(db, pkgdb.BackendSQLite, Migrations, MigrationDir(pkgdb.BackendSQLite), -1); err != nil {
		t.Fatalf("Migrate() err = %v", err)
	}

	return NewSQLStore(db, pkgdb.BackendSQLite)
}

func TestStores(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) uploadStore{
		"memory": func(*testing.T) uploadStore { return NewInMemoryStore() },
		"sqlite": func(t *testing.T) uploadStore { return newSQLiteStore(t) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			testStoreContract(t, newStore(t))
		})
	}
}

func testStoreContract(t *testing.T, s uploadStore) {
	t.Helper()

	ctx := context.Background()
	created := time.UnixMilli(1_700_000_000_000).UTC()
	up := entity.UploadedFile{
		ID:        1,
		FileName:  "data.csv",
		FileRef:   "uploads/1/data.csv",
		Size:      12,
		CreatedAt: created,
	}

	if err := s.CreateUpload(ctx, up); err != nil {
		t.Fatalf("CreateUpload() err = %v", err)
	}

	got, err := s.GetUpload(ctx, 1)
	if err != nil {
		t.Fatalf("GetUpload() err = %v", err)
	}
	if got.FileName != "data.csv" || got.FileRef != "uploads/1/data.csv" || got.Size != 12 {
		t.Fatalf("GetUpload() = %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if got.DeleteAt != nil {
		t.Fatalf("DeleteAt = %v, want nil", got.DeleteAt)
	}

	if _, err := s.GetUpload(ctx, 99); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("GetUpload(missing) err = %v, want ErrNotFound", err)
	}

	due := created.Add(10 * time.Minute)
	if err := s.UpdateUpload(ctx, 1, func(u *entity.UploadedFile) { u.DeleteAt = &due }); err != nil {
		t.Fatalf("UpdateUpload() err = %v", err)
	}
	if err := s.UpdateUpload(ctx, 99, func(*entity.UploadedFile) {}); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("UpdateUpload(missing) err = %v, want ErrNotFound", err)
	}

	got, err = s.GetUpload(ctx, 1)
	if err != nil {
		t.Fatalf("GetUpload() err = %v", err)
	}
	if got.DeleteAt == nil || !got.DeleteAt.Equal(due) {
		t.Fatalf("DeleteAt = %v, want %v", got.DeleteAt, due)
	}

	later := due.Add(time.Minute)
	if err := s.CreateUpload(ctx, entity.UploadedFile{ID: 2, FileName: "b.csv", FileRef: "uploads/2/b.csv", CreatedAt: created, DeleteAt: &later}); err != nil {
		t.Fatalf("CreateUpload(2) err = %v", err)
	}
	if err := s.CreateUpload(ctx, entity.UploadedFile{ID: 3, FileName: "c.csv", FileRef: "uploads/3/c.csv", CreatedAt: created}); err != nil {
		t.Fatalf("CreateUpload(3) err = %v", err)
	}

	expired, err := s.ListExpired(ctx, due, 10)
	if err != nil {
		t.Fatalf("ListExpired() err = %v", err)
	}
	if len(expired) != 1 || expired[0].ID != 1 {
		t.Fatalf("ListExpired(due) = %+v, want [1]", expired)
	}

	expired, err = s.ListExpired(ctx, later, 10)
	if err != nil {
		t.Fatalf("ListExpired() err = %v", err)
	}
	if len(expired) != 2 || expired[0].ID != 1 || expired[1].ID != 2 {
		t.Fatalf("ListExpired(later) = %+v, want [1 2]", expired)
	}

	expired, err = s.ListExpired(ctx, later, 1)
	if err != nil {
		t.Fatalf("ListExpired() err = %v", err)
	}
	if len(expired) != 1 {
		t.Fatalf("ListExpired(limit 1) len = %d", len(expired))
	}

	if err := s.DeleteUpload(ctx, 1); err != nil {
		t.Fatalf("DeleteUpload() err = %v", err)
	}
	if err := s.DeleteUpload(ctx, 1); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("DeleteUpload(again) err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetUpload(ctx, 1); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("GetUpload(deleted) err = %v, want ErrNotFound", err)
	}
}

func TestInMemoryStore_CreateUpload_Duplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewInMemoryStore()
	up := entity.UploadedFile{ID: 7, FileName: "a.csv"}

	if err := store.CreateUpload(ctx, up); err != nil {
		t.Fatalf("CreateUpload() err = %v", err)
	}

	err := store.CreateUpload(ctx, up)
	var perr *pkgerror.Error
	if !errors.As(err, &perr) {
		t.Fatalf("CreateUpload() expected pkgerror.Error, got %T", err)
	}
	if perr.Code() != pkgerror.CodeConflict {
		t.Fatalf("CreateUpload() error code = %v, want %v", perr.Code(), pkgerror.CodeConflict)
	}
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
}

func TestInMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewInMemoryStore()
	due := time.Unix(100, 0)
	if err := store.CreateUpload(ctx, entity.UploadedFile{ID: 1, DeleteAt: &due}); err != nil {
		t.Fatalf("CreateUpload() err = %v", err)
	}

	got, _ := store.GetUpload(ctx, 1)
	*got.DeleteAt = time.Unix(999, 0)

	again, _ := store.GetUpload(ctx, 1)
	if !again.DeleteAt.Equal(due) {
		t.Fatalf("stored DeleteAt changed through a returned copy: %v", again.DeleteAt)
	}
}

func TestMigrationDir(t *testing.T) {
	t.Parallel()

	for _, backend := range []pkgdb.Backend{pkgdb.BackendSQLite, pkgdb.BackendPostgres, pkgdb.BackendMySQL} {
		entries, err := Migrations.ReadDir(MigrationDir(backend))
		if err != nil {
			t.Fatalf("ReadDir(%s) err = %v", backend, err)
		}
		if len(entries) != 2 {
			t.Fatalf("%s has %d migration files, want 2", backend, len(entries))
		}
	}
}
