package worker

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"itscare/internal/csvio"
	"itscare/internal/domain"
	"itscare/internal/finance"

	"github.com/rs/zerolog"
)

const snapshotPrefix = "bookings_"

// RetryPolicy defines exponential backoff parameters for snapshot
// writes.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay returns the backoff delay for a 1-based attempt, clamped
// to MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	initial := r.InitialDelay
	if initial <= 0 {
		initial = time.Second
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	d := time.Duration(float64(initial) * math.Pow(factor, float64(attempt-1)))
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}

// SnapshotWorker writes debounced CSV snapshots of the booking
// collection after mutations, replacing ad-hoc manual exports as the
// backup mechanism. Old snapshots past the retention window are
// pruned after each successful write.
type SnapshotWorker struct {
	repo      domain.Repository
	policy    finance.CommissionPolicy
	dir       string
	debounce  time.Duration
	retention time.Duration
	retry     RetryPolicy
	signal    chan struct{}
	logger    *zerolog.Logger
}

func NewSnapshotWorker(repo domain.Repository, policy finance.CommissionPolicy, dir string, debounce, retention time.Duration, retry RetryPolicy, logger *zerolog.Logger) *SnapshotWorker {
	if policy == nil {
		policy = finance.DefaultPolicy()
	}
	if debounce <= 0 {
		debounce = 30 * time.Second
	}
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}

	return &SnapshotWorker{
		repo:      repo,
		policy:    policy,
		dir:       dir,
		debounce:  debounce,
		retention: retention,
		retry:     retry,
		signal:    make(chan struct{}, 1),
		logger:    logger,
	}
}

// EnqueueSnapshot requests a snapshot. Requests arriving while one is
// already pending coalesce into it, so the call never blocks.
func (w *SnapshotWorker) EnqueueSnapshot(ctx context.Context) error {
	select {
	case w.signal <- struct{}{}:
	default:
	}
	return nil
}

// Start runs the worker loop until ctx is done. Each burst of enqueue
// requests collapses into a single snapshot written one debounce
// interval after the burst quiets down.
func (w *SnapshotWorker) Start(ctx context.Context) {
	w.logger.Info().Str("dir", w.dir).Msg("snapshot worker started")
	defer w.logger.Info().Msg("snapshot worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.signal:
		}

		timer := time.NewTimer(w.debounce)
	debounce:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-w.signal:
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(w.debounce)
			case <-timer.C:
				break debounce
			}
		}

		w.runSnapshot(ctx)
	}
}

func (w *SnapshotWorker) runSnapshot(ctx context.Context) {
	var lastErr error
	for attempt := 1; attempt <= w.retry.MaxRetries; attempt++ {
		path, err := w.WriteSnapshot(ctx)
		if err == nil {
			if path != "" {
				w.logger.Info().Str("path", path).Msg("snapshot written")
			}
			w.prune()
			return
		}

		lastErr = err
		w.logger.Warn().Err(err).Int("attempt", attempt).Msg("snapshot write failed")
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retry.NextDelay(attempt)):
		}
	}
	w.logger.Error().Err(lastErr).Msg("snapshot abandoned after retries")
}

// WriteSnapshot writes one timestamped CSV snapshot and returns its
// path. An empty collection produces no file and no error.
func (w *SnapshotWorker) WriteSnapshot(ctx context.Context) (string, error) {
	bookings, err := w.repo.ListBookings(ctx)
	if err != nil {
		return "", fmt.Errorf("list bookings: %w", err)
	}
	if len(bookings) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := snapshotPrefix + time.Now().Format("20060102_150405") + ".csv"
	path := filepath.Join(w.dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot file: %w", err)
	}
	if err := csvio.ExportBookings(file, bookings, w.policy); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	return path, nil
}

func (w *SnapshotWorker) prune() {
	if w.retention <= 0 {
		return
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn().Err(err).Msg("snapshot prune: read dir")
		return
	}

	cutoff := time.Now().Add(-w.retention)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(w.dir, name)); err != nil {
			w.logger.Warn().Err(err).Str("file", name).Msg("snapshot prune: remove")
		}
	}
}
