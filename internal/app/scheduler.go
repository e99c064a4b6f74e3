package app

import (
	"context"
	"errors"
	"time"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// snapshotScheduler records one snapshot per portfolio per UTC day, once the
// configured hour has passed. A day is marked done only when every portfolio
// succeeded or was already recorded, so failures retry on the next tick.
type snapshotScheduler struct {
	valuation interfaces.ValuationService
	storage   interfaces.StorageManager
	logger    *common.Logger
	interval  time.Duration
	hour      int
	now       func() time.Time

	lastDay string
}

func (s *snapshotScheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().
		Dur("interval", s.interval).
		Int("hour", s.hour).
		Msg("Snapshot scheduler: started")

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Snapshot scheduler: stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick records today's snapshots if due. Returns true when a run happened.
func (s *snapshotScheduler) tick(ctx context.Context) bool {
	now := s.now().UTC()
	day := common.DateKey(now)
	if day == s.lastDay || now.Hour() < s.hour {
		return false
	}

	_, _, failed := recordSnapshots(ctx, s.valuation, s.storage, s.logger)
	if failed == 0 {
		s.lastDay = day
	}
	return true
}

// recordSnapshots appends today's snapshot for every stored portfolio.
func recordSnapshots(ctx context.Context, valuation interfaces.ValuationService, storage interfaces.StorageManager, logger *common.Logger) (recorded, skipped, failed int) {
	start := time.Now()

	ids, err := storage.PortfolioStore().ListPortfolios(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Snapshot run: failed to list portfolios")
		return 0, 0, 1
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			failed += len(ids) - recorded - skipped - failed
			break
		}
		snap, err := valuation.RecordSnapshot(ctx, id)
		switch {
		case err == nil:
			recorded++
			logger.Debug().
				Str("portfolio", id).
				Str("value", snap.TotalValue.StringFixed(2)).
				Msg("Snapshot run: recorded")
		case errors.Is(err, models.ErrSnapshotExists):
			skipped++
		default:
			failed++
			logger.Warn().Err(err).Str("portfolio", id).Msg("Snapshot run: failed")
		}
	}

	logger.Info().
		Int("portfolios", len(ids)).
		Int("recorded", recorded).
		Int("skipped", skipped).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Snapshot run: complete")
	return recorded, skipped, failed
}
