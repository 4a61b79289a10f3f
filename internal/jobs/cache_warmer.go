package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/bonds-service/internal/bonds"
)

// OptionsComputer recomputes the filter-options snapshot, refreshing its
// Redis cache entry as a side effect.
type OptionsComputer interface {
	GetFilterOptions(ctx context.Context, companyName string) (*bonds.FilterOptions, error)
}

// CacheWarmer keeps the unscoped filter-options cache entry warm. The
// computation is cache-first, so each tick recomputes only when the TTL has
// lapsed; run it at the cache TTL so user requests rarely pay the
// aggregation cost.
type CacheWarmer struct {
	logger   *zap.Logger
	svc      OptionsComputer
	interval time.Duration
	stopCh   chan struct{}
}

func NewCacheWarmer(logger *zap.Logger, svc OptionsComputer, interval time.Duration) *CacheWarmer {
	// A non-positive interval would panic time.NewTicker in Start, so fall
	// back to the same default the service applies to its cache TTL.
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CacheWarmer{
		logger:   logger,
		svc:      svc,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the warming loop until the context is cancelled or Stop is
// called. The first warm happens immediately.
func (w *CacheWarmer) Start(ctx context.Context) {
	w.warm(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.warm(ctx)
		case <-ctx.Done():
			w.logger.Info("jobs.cache_warmer_stopped", zap.String("reason", "context cancelled"))
			return
		case <-w.stopCh:
			w.logger.Info("jobs.cache_warmer_stopped", zap.String("reason", "stop requested"))
			return
		}
	}
}

func (w *CacheWarmer) warm(ctx context.Context) {
	warmCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := w.svc.GetFilterOptions(warmCtx, ""); err != nil {
		w.logger.Warn("jobs.cache_warm_failed", zap.Error(err))
		return
	}
	w.logger.Debug("jobs.cache_warmed")
}

// Stop terminates the warming loop. Safe to call once.
func (w *CacheWarmer) Stop() {
	close(w.stopCh)
}
