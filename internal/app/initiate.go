package app

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/cors"

	"github.com/shandysiswandi/csvinsight/internal/analysis/store"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgdb"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkglog"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgmedia"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkguid"
)

// ConfigPath is the config file used when none is given.
func ConfigPath() string {
	if os.Getenv("LOCAL") == "true" {
		return "./config/config.yaml"
	}
	return "/config/config.yaml"
}

func loadConfig(path string) pkgconfig.Config {
	if path == "" {
		path = ConfigPath()
	}

	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "path", path, "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("tz"))
	pkglog.InitLogging(cfg.GetString("log.level"))

	return cfg
}

func (a *App) initConfig() {
	a.config = loadConfig(a.opts.ConfigPath)
}

func (a *App) initLibraries() {
	a.goroutine = pkgroutine.NewManager(100)
	a.uuid = pkguid.NewUUID()

	node, err := pkguid.NewSnowflake()
	if err != nil {
		slog.Error("failed to init snowflake", "error", err)
		os.Exit(1)
	}
	a.snowflake = node
}

func (a *App) initResources() {
	backend, err := pkgdb.ParseBackend(a.config.GetString("database.backend"))
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	a.backend = backend

	if backend == pkgdb.BackendMemory {
		slog.Warn("using in-memory store, uploads do not survive a restart")
		a.store = store.NewInMemoryStore()
	} else {
		db, err := openDatabase(a.ctx, a.config, backend)
		if err != nil {
			slog.Error("failed to init database", "backend", backend, "error", err)
			os.Exit(1)
		}

		if a.config.GetBool("database.auto_migrate") {
			if err := pkgdb.Migrate(db, backend, store.Migrations, store.MigrationDir(backend), -1); err != nil {
				slog.Error("failed to migrate database", "backend", backend, "error", err)
				os.Exit(1)
			}
		}

		a.db = db
		a.store = store.NewSQLStore(db, backend)
	}

	switch a.config.GetString("media.backend") {
	case "minio":
		m, err := pkgmedia.NewMinIO(a.ctx, pkgmedia.MinIOConfig{
			Endpoint:  a.config.GetString("media.minio.endpoint"),
			AccessKey: a.config.GetString("media.minio.access_key"),
			SecretKey: a.config.GetString("media.minio.secret_key"),
			Bucket:    a.config.GetString("media.minio.bucket"),
			UseSSL:    a.config.GetBool("media.minio.use_ssl"),
			PublicURL: a.config.GetString("media.public_url"),
		})
		if err != nil {
			slog.Error("failed to init minio media storage", "error", err)
			os.Exit(1)
		}
		a.media = m
	default:
		local, err := pkgmedia.NewLocal(a.config.GetString("media.root"), a.config.GetString("media.url"))
		if err != nil {
			slog.Error("failed to init local media storage", "error", err)
			os.Exit(1)
		}
		a.media = local
		a.localMedia = local
	}
}

func openDatabase(ctx context.Context, cfg pkgconfig.Config, backend pkgdb.Backend) (*sql.DB, error) {
	dsn := cfg.GetString("database.dsn")
	if backend == pkgdb.BackendSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, err
		}
	}

	return pkgdb.Open(ctx, backend, dsn)
}

func (a *App) initHTTPServer() {
	a.router = pkgrouter.NewRouter(a.uuid)

	if a.localMedia != nil {
		a.router.ServeFiles(mediaPrefix(a.config.GetString("media.url")), a.localMedia.FileSystem())
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           corsHandler.Handler(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// mediaPrefix turns the public media URL into a router prefix ending in a
// slash, e.g. "/media" and "/media/" both give "/media/".
func mediaPrefix(url string) string {
	url = "/" + strings.Trim(url, "/")
	if url == "/" {
		return "/media/"
	}
	return url + "/"
}

//nolint:unparam // is always nil
func (a *App) initClosers() {
	if a.closerFn == nil {
		a.closerFn = map[string]func(context.Context) error{}
	}

	if a.httpServer != nil {
		a.closerFn["HTTP Server"] = func(ctx context.Context) error {
			return a.httpServer.Shutdown(ctx)
		}
	}
	if a.db != nil {
		a.closerFn["Database"] = func(context.Context) error {
			return a.db.Close()
		}
	}
	a.closerFn["Config"] = func(context.Context) error {
		return a.config.Close()
	}
}
