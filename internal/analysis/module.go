package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/shandysiswandi/csvinsight/internal/analysis/event"
	"github.com/shandysiswandi/csvinsight/internal/analysis/inbound"
	"github.com/shandysiswandi/csvinsight/internal/analysis/usecase"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgmedia"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkguid"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router // nil when running without an HTTP surface
	Context   context.Context
	ID        pkguid.NumberID
	EventID   pkguid.StringID
	Store     usecase.Store
	Media     pkgmedia.Storage
	Clock     usecase.Clock
}

// Module is the wired analysis feature.
type Module struct {
	uc       *usecase.Usecase
	consumer *event.PurgeConsumer
}

func New(dep Dependency) (*Module, error) {
	if dep.Config == nil || dep.Store == nil || dep.Media == nil || dep.ID == nil {
		return nil, errors.New("analysis: config, store, media and id are required")
	}
	if dep.EventID == nil {
		dep.EventID = pkguid.NewUUID()
	}
	if dep.Context == nil {
		dep.Context = context.Background()
	}

	cfg := dep.Config
	m := &Module{}

	// without a goroutine manager there is no background sweeper and Sweep
	// purges inline
	var (
		bus    *event.Bus
		events usecase.EventPublisher
	)
	sweeper := cfg.GetBool("modules.analysis.sweeper.enabled") && dep.Goroutine != nil
	if sweeper {
		bus = event.NewBus(int(cfg.GetInt("modules.analysis.sweeper.batch_size")))
		events = bus
	}

	m.uc = usecase.New(usecase.Dependency{
		Store:      dep.Store,
		Media:      dep.Media,
		Events:     events,
		Clock:      dep.Clock,
		ID:         dep.ID,
		EventID:    dep.EventID,
		Retention:  cfg.GetDuration("modules.analysis.retention"),
		SweepBatch: int(cfg.GetInt("modules.analysis.sweeper.batch_size")),
	})

	if dep.Router != nil {
		inbound.RegisterHTTPEndpoint(dep.Router, m.uc, cfg.GetInt("modules.analysis.max_upload_bytes"))
	}

	if sweeper {
		m.consumer = event.NewPurgeConsumer(bus, event.HandlerFunc(m.uc.Purge), event.ConsumerConfig{
			Workers:     int(cfg.GetInt("modules.analysis.sweeper.workers")),
			MaxRetries:  int(cfg.GetInt("modules.analysis.sweeper.max_retries")),
			BaseBackoff: cfg.GetDuration("modules.analysis.sweeper.base_backoff"),
		})
		m.consumer.Start()

		dep.Goroutine.Tick(dep.Context, "retention sweep", cfg.GetDuration("modules.analysis.sweeper.interval"),
			func(ctx context.Context) error {
				_, err := m.uc.Sweep(ctx)
				return err
			})
	}

	return m, nil
}

// Sweep runs one retention pass.
func (m *Module) Sweep(ctx context.Context) (usecase.SweepResult, error) {
	return m.uc.Sweep(ctx)
}

// Close stops the purge consumer, draining queued events.
func (m *Module) Close(ctx context.Context) error {
	if m.consumer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return m.consumer.Stop(ctx)
}
