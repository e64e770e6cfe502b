package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/shandysiswandi/csvinsight/internal/analysis"
)

func (a *App) initModules() {
	if !a.config.GetBool("modules.analysis.enabled") {
		slog.Warn("module analysis disabled")
		return
	}

	dep := analysis.Dependency{
		Config:  a.config,
		Router:  a.router,
		Context: a.ctx,
		ID:      a.snowflake,
		EventID: a.uuid,
		Store:   a.store,
		Media:   a.media,
	}
	if !a.opts.Headless {
		dep.Goroutine = a.goroutine
	}

	mod, err := analysis.New(dep)
	if err != nil {
		slog.Error("failed to init module analysis", "error", err)
		os.Exit(1)
	}

	a.analysis = mod
	if a.closerFn == nil {
		a.closerFn = map[string]func(context.Context) error{}
	}
	a.closerFn["Analysis"] = mod.Close
}
