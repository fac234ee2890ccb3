package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"itscare/internal/summary"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyCache struct {
	inner  *MemorySummaryCache
	broken bool
}

func (f *flakyCache) Get(ctx context.Context, month string) (*summary.Monthly, error) {
	if f.broken {
		return nil, errors.New("connection refused")
	}
	return f.inner.Get(ctx, month)
}

func (f *flakyCache) Set(ctx context.Context, s *summary.Monthly) error {
	if f.broken {
		return errors.New("connection refused")
	}
	return f.inner.Set(ctx, s)
}

func (f *flakyCache) Invalidate(ctx context.Context) error {
	if f.broken {
		return errors.New("connection refused")
	}
	return f.inner.Invalidate(ctx)
}

func TestFailoverSummaryCache(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("UsesPrimaryWhenHealthy", func(t *testing.T) {
		primary := &flakyCache{inner: NewMemorySummaryCache(time.Hour)}
		fallback := NewMemorySummaryCache(time.Hour)
		cache := NewFailoverSummaryCache(primary, fallback, &logger)

		require.NoError(t, cache.Set(ctx, juneSummary()))

		got, err := cache.Get(ctx, "2024-06")
		require.NoError(t, err)
		require.NotNil(t, got)

		// the fallback never saw the write
		inFallback, err := fallback.Get(ctx, "2024-06")
		require.NoError(t, err)
		assert.Nil(t, inFallback)
	})

	t.Run("FallsBackWhenPrimaryFails", func(t *testing.T) {
		primary := &flakyCache{inner: NewMemorySummaryCache(time.Hour), broken: true}
		fallback := NewMemorySummaryCache(time.Hour)
		cache := NewFailoverSummaryCache(primary, fallback, &logger)

		require.NoError(t, cache.Set(ctx, juneSummary()))

		got, err := cache.Get(ctx, "2024-06")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "2024-06", got.Month)
	})

	t.Run("InvalidateClearsFallbackEvenWhenPrimaryDown", func(t *testing.T) {
		primary := &flakyCache{inner: NewMemorySummaryCache(time.Hour), broken: true}
		fallback := NewMemorySummaryCache(time.Hour)
		cache := NewFailoverSummaryCache(primary, fallback, &logger)

		require.NoError(t, cache.Set(ctx, juneSummary()))
		require.NoError(t, cache.Invalidate(ctx))

		got, err := cache.Get(ctx, "2024-06")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("StaysOnFallbackUntilRecoveryWindow", func(t *testing.T) {
		primary := &flakyCache{inner: NewMemorySummaryCache(time.Hour), broken: true}
		fallback := NewMemorySummaryCache(time.Hour)
		cache := NewFailoverSummaryCache(primary, fallback, &logger)

		_, err := cache.Get(ctx, "2024-06")
		require.NoError(t, err)

		// primary recovers, but the probe window has not elapsed
		primary.broken = false
		require.NoError(t, primary.inner.Set(ctx, juneSummary()))

		got, err := cache.Get(ctx, "2024-06")
		require.NoError(t, err)
		assert.Nil(t, got, "still served from fallback")
	})
}
