package bonds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Checker-Finance/bonds-service/internal/grip"
	"github.com/Checker-Finance/bonds-service/internal/metrics"
	"github.com/Checker-Finance/bonds-service/internal/store"
	"github.com/Checker-Finance/bonds-service/pkg/model"
)

// FeedProvider fetches the complete bond snapshot from the upstream feed.
// Records come back raw so a malformed record cannot fail the whole batch.
type FeedProvider interface {
	FetchAllBonds(ctx context.Context, accountRef string) ([]json.RawMessage, error)
}

// Syncer reconciles the upstream feed into the local catalog: every fetched
// record is upserted and forced active, then bonds absent from the feed are
// marked inactive. Records are never deleted.
type Syncer struct {
	logger     *zap.Logger
	store      store.Store
	feed       FeedProvider
	accountRef string

	syncAt time.Duration // wall-clock offset into the day
	loc    *time.Location

	mu     sync.Mutex
	stopCh chan struct{}
}

func NewSyncer(logger *zap.Logger, st store.Store, feed FeedProvider, accountRef string, syncAt time.Duration, loc *time.Location) *Syncer {
	if loc == nil {
		loc = time.UTC
	}
	return &Syncer{
		logger:     logger,
		store:      st,
		feed:       feed,
		accountRef: accountRef,
		syncAt:     syncAt,
		loc:        loc,
		stopCh:     make(chan struct{}),
	}
}

// ReconcileOnce runs a single full reconciliation. Only one run may be in
// flight at a time; a second caller gets ErrSyncInProgress immediately.
func (s *Syncer) ReconcileOnce(ctx context.Context) (*model.SyncSummary, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	summary := &model.SyncSummary{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
	}
	log := s.logger.With(zap.String("run_id", summary.RunID.String()))
	log.Info("sync.run_started")

	raw, err := s.feed.FetchAllBonds(ctx, s.accountRef)
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues("upstream_error").Inc()
		log.Error("sync.fetch_failed", zap.Error(err))
		return nil, &UpstreamError{Op: "fetch bonds", Err: err}
	}
	summary.TotalReceived = len(raw)

	// An empty snapshot is treated as a feed fault, not an empty catalog:
	// inactivating everything on a bad pull would wipe the listings.
	if len(raw) == 0 {
		summary.Duration = time.Since(summary.StartedAt)
		metrics.SyncRunsTotal.WithLabelValues("empty_feed").Inc()
		log.Warn("sync.empty_feed_skipped")
		return summary, nil
	}

	seen := make([]int64, 0, len(raw))
	for _, rec := range raw {
		b, err := grip.ParseRecord(rec)
		if err != nil {
			summary.Errors++
			log.Warn("sync.record_parse_failed", zap.Error(err))
			continue
		}
		inserted, err := s.store.UpsertBond(ctx, b, true)
		if err != nil {
			summary.Errors++
			log.Warn("sync.record_upsert_failed",
				zap.Int64("bond_id", b.ID),
				zap.Error(err))
			continue
		}
		if inserted {
			summary.Stored++
		} else {
			summary.Updated++
		}
		seen = append(seen, b.ID)
	}

	metrics.AddSyncRecords("stored", summary.Stored)
	metrics.AddSyncRecords("updated", summary.Updated)
	metrics.AddSyncRecords("failed", summary.Errors)

	// Inactivation only runs against a snapshot that produced at least one
	// good record, otherwise a wholly corrupt feed would empty the catalog.
	// A failure here is non-fatal: the upserts already committed, so the run
	// still reports its summary and the next run retries the inactivation.
	inactivateFailed := false
	if len(seen) > 0 {
		n, err := s.store.BulkInactivate(ctx, seen)
		if err != nil {
			inactivateFailed = true
			log.Error("sync.inactivate_failed", zap.Error(err))
		} else {
			summary.Inactivated = int(n)
		}
	}

	summary.Duration = time.Since(summary.StartedAt)
	metrics.SyncDuration.Observe(summary.Duration.Seconds())
	if summary.Errors > 0 || inactivateFailed {
		metrics.SyncRunsTotal.WithLabelValues("partial").Inc()
	} else {
		metrics.SyncRunsTotal.WithLabelValues("success").Inc()
	}

	log.Info("sync.run_complete",
		zap.Int("received", summary.TotalReceived),
		zap.Int("stored", summary.Stored),
		zap.Int("updated", summary.Updated),
		zap.Int("inactivated", summary.Inactivated),
		zap.Int("errors", summary.Errors),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

// nextRun returns the next occurrence of the configured wall-clock time in
// the syncer's timezone, strictly after now.
func (s *Syncer) nextRun(now time.Time) time.Time {
	local := now.In(s.loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	next := midnight.Add(s.syncAt)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// Start runs one reconciliation immediately, then one per day at the
// configured time, until the context is cancelled or Stop is called.
func (s *Syncer) Start(ctx context.Context) {
	if _, err := s.ReconcileOnce(ctx); err != nil {
		s.logger.Error("sync.initial_run_failed", zap.Error(err))
	}

	for {
		next := s.nextRun(time.Now())
		s.logger.Info("sync.next_run_scheduled", zap.Time("at", next))
		timer := time.NewTimer(time.Until(next))

		select {
		case <-timer.C:
			if _, err := s.ReconcileOnce(ctx); err != nil {
				s.logger.Error("sync.scheduled_run_failed", zap.Error(err))
			}
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("sync.stopped", zap.String("reason", "context cancelled"))
			return
		case <-s.stopCh:
			timer.Stop()
			s.logger.Info("sync.stopped", zap.String("reason", "stop requested"))
			return
		}
	}
}

// Stop terminates the scheduling loop. Safe to call once.
func (s *Syncer) Stop() {
	close(s.stopCh)
}
