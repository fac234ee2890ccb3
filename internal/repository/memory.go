package repository

import (
	"context"
	"sync"
	"time"

	"itscare/internal/summary"
)

type memoryEntry struct {
	value     summary.Monthly
	expiresAt time.Time
}

// MemorySummaryCache keeps monthly summaries in-process. Used directly
// in single-binary deployments and as the fallback behind Redis.
type MemorySummaryCache struct {
	entries sync.Map
	ttl     time.Duration
}

func NewMemorySummaryCache(ttl time.Duration) *MemorySummaryCache {
	return &MemorySummaryCache{ttl: ttl}
}

func (c *MemorySummaryCache) Get(ctx context.Context, month string) (*summary.Monthly, error) {
	val, ok := c.entries.Load(month)
	if !ok {
		return nil, nil
	}
	entry := val.(memoryEntry)
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		c.entries.Delete(month)
		return nil, nil
	}
	value := entry.value
	return &value, nil
}

func (c *MemorySummaryCache) Set(ctx context.Context, s *summary.Monthly) error {
	if s == nil {
		return nil
	}
	c.entries.Store(s.Month, memoryEntry{value: *s, expiresAt: time.Now().Add(c.ttl)})
	return nil
}

// Invalidate drops every cached month; any mutation of the ledger can
// move bookings between months, so partial invalidation is not worth
// the bookkeeping.
func (c *MemorySummaryCache) Invalidate(ctx context.Context) error {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
	return nil
}
