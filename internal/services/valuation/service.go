// Package valuation reconstructs portfolio value over time from holdings,
// snapshots and market prices
package valuation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/metrics"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// Options tunes chart reconstruction
type Options struct {
	BenchmarkTicker   string
	Currency          string
	MaxPointsIntraday int
	MaxPoints         int
	Lookback          time.Duration
	LookbackWeek      time.Duration
	FetchTimeout      time.Duration
	MaxConcurrency    int
}

// OptionsFromConfig maps the valuation config section onto Options.
func OptionsFromConfig(cfg common.ValuationConfig) Options {
	return Options{
		BenchmarkTicker:   cfg.BenchmarkTicker,
		Currency:          cfg.Currency,
		MaxPointsIntraday: cfg.MaxPointsIntraday,
		MaxPoints:         cfg.MaxPoints,
		Lookback:          time.Duration(cfg.LookbackDays) * 24 * time.Hour,
		LookbackWeek:      time.Duration(cfg.LookbackDaysWeek) * 24 * time.Hour,
		FetchTimeout:      cfg.GetFetchTimeout(),
		MaxConcurrency:    cfg.MaxConcurrency,
	}
}

// DefaultOptions matches the default configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(common.NewDefaultConfig().Valuation)
}

func (o Options) withDefaults() Options {
	d := Options{
		Currency:          "USD",
		MaxPointsIntraday: 40,
		MaxPoints:         60,
		Lookback:          30 * 24 * time.Hour,
		LookbackWeek:      7 * 24 * time.Hour,
		FetchTimeout:      20 * time.Second,
		MaxConcurrency:    8,
	}
	if o.Currency == "" {
		o.Currency = d.Currency
	}
	if o.MaxPointsIntraday < 2 {
		o.MaxPointsIntraday = d.MaxPointsIntraday
	}
	if o.MaxPoints < 2 {
		o.MaxPoints = d.MaxPoints
	}
	if o.Lookback <= 0 {
		o.Lookback = d.Lookback
	}
	if o.LookbackWeek <= 0 {
		o.LookbackWeek = d.LookbackWeek
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = d.FetchTimeout
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = d.MaxConcurrency
	}
	return o
}

// Service implements ValuationService
type Service struct {
	storage    interfaces.StorageManager
	stocks     pricer
	crypto     pricer
	benchmarks interfaces.BenchmarkProvider
	tracker    *QueryTracker
	opts       Options
	logger     *common.Logger
	now        func() time.Time // injectable clock for testing
}

// NewService creates a new valuation service.
// benchmarks may be nil; charts are then drawn without a comparison line.
func NewService(
	storage interfaces.StorageManager,
	history interfaces.HistoricalPriceProvider,
	candles interfaces.CryptoCandleProvider,
	quotes interfaces.QuoteService,
	benchmarks interfaces.BenchmarkProvider,
	logger *common.Logger,
	opts Options,
) *Service {
	opts = opts.withDefaults()
	s := &Service{
		storage:    storage,
		benchmarks: benchmarks,
		tracker:    NewQueryTracker(),
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
	s.stocks = &quotePricer{history: history, quotes: quotes, concurrency: opts.MaxConcurrency, logger: logger}
	s.crypto = &candlePricer{candles: candles, logger: logger, now: func() time.Time { return s.now() }}
	return s
}

// Tracker exposes the query tracker.
func (s *Service) Tracker() *QueryTracker {
	return s.tracker
}

func (s *Service) pricerFor(p *models.Portfolio) pricer {
	if p.IsCrypto() {
		return s.crypto
	}
	return s.stocks
}

// loadState reads the portfolio, holdings and snapshots concurrently. Any
// failure fails the whole query.
func (s *Service) loadState(ctx context.Context, portfolioID string) (*models.PortfolioState, error) {
	state := &models.PortfolioState{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.storage.PortfolioStore().GetPortfolio(gctx, portfolioID)
		if err != nil {
			return fmt.Errorf("load portfolio: %w", err)
		}
		state.Portfolio = p
		return nil
	})
	g.Go(func() error {
		h, err := s.storage.HoldingStore().GetHoldings(gctx, portfolioID)
		if err != nil {
			return fmt.Errorf("load holdings: %w", err)
		}
		state.Holdings = h
		return nil
	})
	g.Go(func() error {
		snaps, err := s.storage.SnapshotStore().GetSnapshots(gctx, portfolioID)
		if err != nil {
			return fmt.Errorf("load snapshots: %w", err)
		}
		state.Snapshots = snaps
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return state, nil
}

// GetChart reconstructs the value series for a range. A query overtaken by a
// newer one for the same view returns ErrSuperseded. Requests that name no
// view are never superseded.
func (s *Service) GetChart(ctx context.Context, portfolioID string, rng models.TimeRange, opts interfaces.ChartOptions) (*models.ChartSeries, error) {
	started := time.Now()
	view, tracked := common.ViewKey(ctx)
	qctx, tag := ctx, ""
	if tracked {
		qctx, tag = s.tracker.Begin(ctx, view)
	}

	series, err := s.buildChart(qctx, portfolioID, rng, opts)

	if tracked && !s.tracker.Commit(view, tag) {
		metrics.ChartQueriesTotal.WithLabelValues(string(rng), "superseded").Inc()
		s.logger.Debug().Str("portfolio", portfolioID).Str("view", view).Str("range", string(rng)).Msg("Discarding superseded chart query")
		return nil, ErrSuperseded
	}
	if err != nil {
		metrics.ChartQueriesTotal.WithLabelValues(string(rng), "error").Inc()
		return nil, err
	}

	elapsed := time.Since(started)
	metrics.ChartQueriesTotal.WithLabelValues(string(rng), "ok").Inc()
	metrics.ChartQueryDuration.WithLabelValues(string(rng)).Observe(elapsed.Seconds())
	s.logger.Info().
		Str("portfolio", portfolioID).
		Str("range", string(rng)).
		Int("points", len(series.Points)).
		Int("fallback_points", series.Summary.FallbackPoints).
		Dur("elapsed", elapsed).
		Msg("Chart built")
	return series, nil
}

func (s *Service) buildChart(ctx context.Context, portfolioID string, rng models.TimeRange, opts interfaces.ChartOptions) (*models.ChartSeries, error) {
	state, err := s.loadState(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rr, err := ResolveRange(rng, state.EarliestKnown(), now, s.opts)
	if err != nil {
		return nil, err
	}
	instants := SampleInstants(rr.Start, rr.End, rr.MaxPoints)
	intraday := rng == models.Range1D && len(state.Holdings) > 0

	var (
		book       *PriceBook
		normalized map[string]float64
	)
	fctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()
	g, gctx := errgroup.WithContext(fctx)
	g.Go(func() error {
		b, err := s.pricerFor(state.Portfolio).Load(gctx, state, rr, LoadOptions{History: !intraday})
		if err != nil {
			return fmt.Errorf("load prices: %w", err)
		}
		book = b
		return nil
	})
	if opts.Benchmark && s.benchmarks != nil && s.opts.BenchmarkTicker != "" {
		g.Go(func() error {
			normalized = s.loadBenchmark(gctx, state, instants, rr.Lookback)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var points []models.ChartPoint
	if intraday {
		live := valueAt(state, book, now, true)
		points = interpolate(instants, rng, intradayBaseline(state).InexactFloat64(), live)
	} else {
		points = reconstruct(state, book, instants, rng)
	}
	points = padSingle(points, rng, rr.Lookback)
	if normalized != nil {
		attachBenchmark(points, normalized)
	}
	if rng != models.Range1D {
		points = compact(points)
	}

	series := &models.ChartSeries{
		PortfolioID: portfolioID,
		Range:       rng,
		Start:       rr.Start,
		End:         rr.End,
		Points:      points,
		Summary:     Summarize(points, state.Portfolio, s.opts.Currency, s.opts.BenchmarkTicker),
	}
	if opts.HoverIndex != nil {
		series.Hover = Inspect(points, *opts.HoverIndex)
	}
	return series, nil
}

// loadBenchmark fetches and normalizes the benchmark. Failures leave the
// comparison line empty.
func (s *Service) loadBenchmark(ctx context.Context, state *models.PortfolioState, instants []time.Time, lookback time.Duration) map[string]float64 {
	var anchor time.Time
	if len(state.Snapshots) > 0 {
		anchor = state.Snapshots[0].Date
	}
	raw, err := s.benchmarks.GetBenchmarkPrices(ctx, s.opts.BenchmarkTicker, benchmarkDates(instants, anchor, lookback))
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", s.opts.BenchmarkTicker).Msg("Benchmark unavailable")
		return nil
	}
	return NormalizeBenchmark(raw, anchor, state.Portfolio.StartingCapital.InexactFloat64())
}

// liveValuation prices the portfolio at now from live quotes or candles.
func (s *Service) liveValuation(ctx context.Context, portfolioID string) (valuation, error) {
	state, err := s.loadState(ctx, portfolioID)
	if err != nil {
		return valuation{}, err
	}
	now := s.now()
	rr := ResolvedRange{Start: now, End: now, Granularity: models.GranularityFiveMinutes}
	fctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()
	book, err := s.pricerFor(state.Portfolio).Load(fctx, state, rr, LoadOptions{})
	if err != nil {
		return valuation{}, fmt.Errorf("load prices: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return valuation{}, err
	}

	v := valueAt(state, book, now, true)
	for _, sym := range v.fallbackSymbols {
		metrics.PricedHoldingsTotal.WithLabelValues("cost_basis").Inc()
		s.logger.Debug().Str("portfolio", portfolioID).Str("symbol", sym).Msg("Priced at cost basis")
	}
	if n := len(book.Live); n > 0 {
		metrics.PricedHoldingsTotal.WithLabelValues("live").Add(float64(n))
	}
	return v, nil
}

// GetCurrentValue prices the portfolio now from live quotes or candles.
func (s *Service) GetCurrentValue(ctx context.Context, portfolioID string) (*models.Valuation, error) {
	v, err := s.liveValuation(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	return &models.Valuation{
		PortfolioID:     portfolioID,
		Time:            v.at,
		Value:           v.valueFloat(),
		Cash:            v.cash.InexactFloat64(),
		HoldingsValue:   v.holdings.InexactFloat64(),
		Provenance:      v.provenance,
		FallbackSymbols: v.fallbackSymbols,
	}, nil
}

// RecordSnapshot appends today's snapshot at the live value. A day that is
// already recorded returns models.ErrSnapshotExists. A value that needed the
// cost basis for any holding is not recorded and returns
// models.ErrPricesUnavailable so the next run can retry.
func (s *Service) RecordSnapshot(ctx context.Context, portfolioID string) (*models.Snapshot, error) {
	date := common.StartOfDay(s.now())
	exists, err := s.storage.SnapshotStore().HasSnapshot(ctx, portfolioID, date)
	if err != nil {
		metrics.SnapshotsRecordedTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("check snapshot: %w", err)
	}
	if exists {
		metrics.SnapshotsRecordedTotal.WithLabelValues("exists").Inc()
		return nil, fmt.Errorf("%s on %s: %w", portfolioID, common.DateKey(date), models.ErrSnapshotExists)
	}

	v, err := s.liveValuation(ctx, portfolioID)
	if err != nil {
		metrics.SnapshotsRecordedTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if v.provenance == models.ProvenanceCostBasis {
		metrics.SnapshotsRecordedTotal.WithLabelValues("unpriced").Inc()
		s.logger.Warn().
			Str("portfolio", portfolioID).
			Strs("symbols", v.fallbackSymbols).
			Msg("Snapshot skipped, live prices unavailable")
		return nil, fmt.Errorf("%s on %s: %w", portfolioID, common.DateKey(date), models.ErrPricesUnavailable)
	}

	snap := &models.Snapshot{
		PortfolioID: portfolioID,
		Date:        date,
		TotalValue:  v.value().Round(2),
		CreatedAt:   s.now(),
	}
	if err := s.storage.SnapshotStore().AppendSnapshot(ctx, snap); err != nil {
		if errors.Is(err, models.ErrSnapshotExists) {
			metrics.SnapshotsRecordedTotal.WithLabelValues("exists").Inc()
		} else {
			metrics.SnapshotsRecordedTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	metrics.SnapshotsRecordedTotal.WithLabelValues("ok").Inc()
	s.logger.Info().
		Str("portfolio", portfolioID).
		Str("date", common.DateKey(date)).
		Str("value", snap.TotalValue.StringFixed(2)).
		Str("provenance", string(v.provenance)).
		Msg("Snapshot recorded")
	return snap, nil
}

// Ensure Service implements ValuationService
var _ interfaces.ValuationService = (*Service)(nil)
