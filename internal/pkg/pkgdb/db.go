package pkgdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers "mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"
)

// Backend names a supported database engine.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
	BackendMemory   Backend = "memory"
)

// ParseBackend validates a configured backend name.
func ParseBackend(raw string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(raw))); b {
	case BackendSQLite, BackendPostgres, BackendMySQL, BackendMemory:
		return b, nil
	case "postgresql", "pgx":
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database backend: %q", raw)
	}
}

// DriverName returns the database/sql driver registered for the backend.
func (b Backend) DriverName() string {
	switch b {
	case BackendSQLite:
		return "sqlite"
	case BackendPostgres:
		return "pgx"
	case BackendMySQL:
		return "mysql"
	default:
		return ""
	}
}

// Open connects to the backend and verifies the connection with a ping.
func Open(ctx context.Context, backend Backend, dsn string) (*sql.DB, error) {
	driver := backend.DriverName()
	if driver == "" {
		return nil, fmt.Errorf("backend %s has no sql driver", backend)
	}
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is required for %s", backend)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}

	switch backend {
	case BackendSQLite:
		// a single writer avoids "database is locked"
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}

	return db, nil
}

// Rebind rewrites '?' placeholders to the backend's bind style.
func Rebind(backend Backend, query string) string {
	if backend != BackendPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
