package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"itscare/internal/domain"
	"itscare/internal/summary"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the failover waits before probing the
// primary again after a failure.
const recoveryInterval = time.Minute

// FailoverSummaryCache serves from the primary cache (Redis) and falls
// back to the in-memory cache while the primary is down, probing for
// recovery periodically.
type FailoverSummaryCache struct {
	primary  domain.SummaryCache
	fallback domain.SummaryCache
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverSummaryCache(primary, fallback domain.SummaryCache, logger *zerolog.Logger) *FailoverSummaryCache {
	return &FailoverSummaryCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverSummaryCache) markDown(err error) {
	c.logger.Error().Err(err).Msg("primary summary cache failed, falling back to memory")
	c.isDown.Store(true)
	c.mu.Lock()
	c.lastCheck = time.Now()
	c.mu.Unlock()
}

func (c *FailoverSummaryCache) shouldProbe() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastCheck) < recoveryInterval {
		return false
	}
	c.lastCheck = time.Now()
	return true
}

func (c *FailoverSummaryCache) Get(ctx context.Context, month string) (*summary.Monthly, error) {
	if !c.isDown.Load() {
		s, err := c.primary.Get(ctx, month)
		if err == nil {
			return s, nil
		}
		c.markDown(err)
	} else if c.shouldProbe() {
		s, err := c.primary.Get(ctx, month)
		if err == nil {
			c.isDown.Store(false)
			return s, nil
		}
	}

	return c.fallback.Get(ctx, month)
}

func (c *FailoverSummaryCache) Set(ctx context.Context, s *summary.Monthly) error {
	if !c.isDown.Load() {
		err := c.primary.Set(ctx, s)
		if err == nil {
			return nil
		}
		c.markDown(err)
	}
	return c.fallback.Set(ctx, s)
}

func (c *FailoverSummaryCache) Invalidate(ctx context.Context) error {
	// Both sides get invalidated: a stale fallback would serve wrong
	// sums the moment the primary goes down.
	var primaryErr error
	if !c.isDown.Load() {
		if primaryErr = c.primary.Invalidate(ctx); primaryErr != nil {
			c.markDown(primaryErr)
		}
	}
	return c.fallback.Invalidate(ctx)
}
