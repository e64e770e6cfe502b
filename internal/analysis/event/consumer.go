package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/csvinsight/internal/analysis/entity"
)

type Handler interface {
	Handle(ctx context.Context, event entity.ExpiredUpload) error
}

// HandlerFunc adapts a function, such as Usecase.Purge, to Handler.
type HandlerFunc func(ctx context.Context, event entity.ExpiredUpload) error

func (f HandlerFunc) Handle(ctx context.Context, event entity.ExpiredUpload) error {
	return f(ctx, event)
}

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
}

// PurgeConsumer drains the bus with a fixed set of workers. A failing event
// is retried with exponential backoff; an upload already being purged by
// another worker is skipped.
type PurgeConsumer struct {
	bus         *Bus
	handler     Handler
	workers     int
	maxRetries  int
	baseBackoff time.Duration
	inFlight    sync.Map
	wg          sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

func NewPurgeConsumer(bus *Bus, handler Handler, cfg ConsumerConfig) *PurgeConsumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 2
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &PurgeConsumer{
		bus:         bus,
		handler:     handler,
		workers:     workers,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (c *PurgeConsumer) Start() {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

// Stop closes the bus and waits for queued events to drain. When ctx ends
// first, pending backoffs are abandoned.
func (c *PurgeConsumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.cancel()
		return nil
	case <-ctx.Done():
		c.cancel()
		return ctx.Err()
	}
}

func (c *PurgeConsumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.Subscribe() {
		c.processEvent(event)
	}
}

func (c *PurgeConsumer) processEvent(event entity.ExpiredUpload) {
	if c.handler == nil {
		return
	}

	if _, loaded := c.inFlight.LoadOrStore(event.UploadID, struct{}{}); loaded {
		slog.Info("skip duplicate expired upload event", "event_id", event.EventID, "upload_id", event.UploadID)
		return
	}
	defer c.inFlight.Delete(event.UploadID)

	backoff := c.baseBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.handler.Handle(c.ctx, event)
		if err == nil {
			return
		}

		if attempt == c.maxRetries {
			slog.Error("failed to purge expired upload after retries", "event_id", event.EventID, "upload_id", event.UploadID, "error", err)
			return
		}

		slog.Warn("purge attempt failed", "event_id", event.EventID, "upload_id", event.UploadID, "attempt", attempt+1, "error", err)
		if !c.sleepBackoff(backoff) {
			return
		}
		backoff *= 2
	}
}

func (c *PurgeConsumer) sleepBackoff(d time.Duration) bool {
	if d <= 0 {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-c.ctx.Done():
		return false
	}
}
