package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/shandysiswandi/csvinsight/internal/analysis"
	"github.com/shandysiswandi/csvinsight/internal/analysis/usecase"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgdb"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkglog"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgmedia"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkguid"
)

// Options select how the application is assembled.
type Options struct {
	// ConfigPath overrides the default config file location.
	ConfigPath string
	// Headless skips the HTTP server and background workers. CLI commands
	// that run a single operation use it.
	Headless bool
}

type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options

	// configuration
	config pkgconfig.Config

	// libraries
	uuid      pkguid.StringID
	snowflake pkguid.NumberID
	goroutine *pkgroutine.Manager

	// resources
	backend    pkgdb.Backend
	db         *sql.DB
	store      usecase.Store
	media      pkgmedia.Storage
	localMedia *pkgmedia.Local

	// server
	router     *pkgrouter.Router
	httpServer *http.Server

	// modules
	analysis *analysis.Module

	//
	closerFn map[string]func(context.Context) error
}

func New(opts Options) *App {
	pkglog.InitLogging("info")

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
		opts:   opts,
	}

	app.initConfig()
	app.initLibraries()
	app.initResources()
	if !opts.Headless {
		app.initHTTPServer()
	}
	app.initModules()
	app.initClosers()

	return app
}
