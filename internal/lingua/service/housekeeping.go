package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/store"
)

// DefaultRetention is how long sync records and card tombstones are kept.
const DefaultRetention = 30 * 24 * time.Hour

// HousekeepingService periodically removes expired banners, old sync
// records and card tombstones.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func NewHousekeepingService(s store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &HousekeepingService{
		Store:     s,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
	}
}

// Run cleans up immediately and then every Interval until ctx is done.
func (s *HousekeepingService) Run(ctx context.Context) error {
	s.Logger.Info("housekeeping started", "interval", s.Interval, "retention", s.Retention)
	defer s.Logger.Info("housekeeping stopped")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(ctx)
	for {
		select {
		case <-ticker.C:
			s.Cleanup(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// Cleanup runs one pass. A failing step is logged and does not stop the
// others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	cutoff := now.Add(-s.Retention)

	steps := []struct {
		name string
		run  func() (int64, error)
	}{
		{"expired banners", func() (int64, error) { return s.Store.Banners().DeleteExpired(ctx, now) }},
		{"sync records", func() (int64, error) { return s.Store.SyncOps().DeleteBefore(ctx, cutoff) }},
		{"card tombstones", func() (int64, error) { return s.Store.Cards().PurgeDeleted(ctx, cutoff) }},
	}

	var total int64
	for _, step := range steps {
		n, err := step.run()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.Logger.Error("housekeeping step failed", "step", step.name, "error", err)
			continue
		}
		total += n
		s.Logger.Debug("housekeeping step done", "step", step.name, "deleted", n)
	}
	s.Logger.Info("housekeeping pass completed", "deleted", total)
}
