package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/shandysiswandi/csvinsight/internal/analysis/store"
	"github.com/shandysiswandi/csvinsight/internal/analysis/usecase"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgdb"
)

// Sweep runs one retention pass. The app must be headless.
func (a *App) Sweep(ctx context.Context) (usecase.SweepResult, error) {
	if a.analysis == nil {
		return usecase.SweepResult{}, errors.New("module analysis is disabled")
	}
	return a.analysis.Sweep(ctx)
}

// Migrate applies the schema migrations of the configured database.
// version < 0 migrates to the latest version.
func Migrate(ctx context.Context, configPath string, version int) error {
	cfg := loadConfig(configPath)
	defer func() { _ = cfg.Close() }()

	backend, err := pkgdb.ParseBackend(cfg.GetString("database.backend"))
	if err != nil {
		return err
	}
	if backend == pkgdb.BackendMemory {
		return fmt.Errorf("backend %s has no schema to migrate", backend)
	}

	db, err := openDatabase(ctx, cfg, backend)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return pkgdb.Migrate(db, backend, store.Migrations, store.MigrationDir(backend), version)
}
