package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bookdesk/internal/metrics"
	"bookdesk/internal/models"
)

// DescriptionSource fetches the raw schedule text, normally the booking
// calendar's description field.
type DescriptionSource interface {
	CalendarDescription(ctx context.Context) (string, error)
}

// SnapshotStore persists the last successfully parsed config so a restarted
// instance can serve it even when the first calendar fetch fails.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context) (models.ScheduleConfig, error)
	SaveSnapshot(ctx context.Context, cfg models.ScheduleConfig) error
}

// Cache holds the current ScheduleConfig behind a lock. It starts with
// hardcoded defaults and serves the last-known-good value when a refresh
// fails; refresh failures never surface to request handlers.
type Cache struct {
	source DescriptionSource
	parser *Parser
	store  SnapshotStore // optional
	logger zerolog.Logger

	mu      sync.RWMutex
	current models.ScheduleConfig
	fetched bool
}

// NewCache creates a cache pre-populated with defaults. store may be nil.
func NewCache(source DescriptionSource, parser *Parser, store SnapshotStore, logger zerolog.Logger) *Cache {
	return &Cache{
		source:  source,
		parser:  parser,
		store:   store,
		logger:  logger.With().Str("component", "schedule_cache").Logger(),
		current: models.DefaultScheduleConfig(),
	}
}

// Current returns a copy of the cached config. It never fails and performs
// no I/O.
func (c *Cache) Current() models.ScheduleConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Clone()
}

// Refresh fetches and parses the calendar description, swapping the cached
// value on success. On failure the previous value is kept; if nothing was
// ever fetched, a persisted snapshot is tried before giving up.
func (c *Cache) Refresh(ctx context.Context) error {
	text, err := c.source.CalendarDescription(ctx)
	if err != nil {
		metrics.IncScheduleRefresh("failed")
		c.logger.Warn().Err(err).Msg("schedule fetch failed, keeping previous config")
		c.restoreSnapshot(ctx)
		return err
	}
	metrics.IncScheduleRefresh("ok")

	cfg := c.parser.Parse(text)

	c.mu.Lock()
	c.current = cfg
	c.fetched = true
	c.mu.Unlock()

	c.logger.Info().
		Int("duration_minutes", cfg.DurationMinutes).
		Int("days", len(cfg.Week)).
		Msg("schedule config refreshed")

	if c.store != nil {
		if err := c.store.SaveSnapshot(ctx, cfg); err != nil {
			c.logger.Warn().Err(err).Msg("failed to persist schedule snapshot")
		}
	}

	return nil
}

// Watch performs an initial blocking refresh and then keeps the cache fresh
// on the given interval until ctx is cancelled. The initial refresh error is
// returned so the caller can log it; the cache still serves defaults (or a
// snapshot) in that case.
func (c *Cache) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	err := c.Refresh(ctx)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = c.Refresh(ctx) // transient failures keep last-known-good
			}
		}
	}()

	return err
}

// restoreSnapshot loads a persisted config, only when no live fetch has
// succeeded yet. A live value always wins over a stale snapshot.
func (c *Cache) restoreSnapshot(ctx context.Context) {
	if c.store == nil {
		return
	}

	c.mu.RLock()
	fetched := c.fetched
	c.mu.RUnlock()
	if fetched {
		return
	}

	cfg, err := c.store.LoadSnapshot(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("no schedule snapshot available")
		return
	}

	c.mu.Lock()
	if !c.fetched {
		c.current = cfg
	}
	c.mu.Unlock()

	c.logger.Info().Msg("serving schedule config from snapshot")
}
