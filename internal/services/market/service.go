// Package market adapts the price clients to the valuation provider contracts
package market

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

const (
	// dailyPad reaches back over weekends and holidays so a close at or
	// before the window start is available to the step lookup.
	dailyPad = 7 * 24 * time.Hour
	// intradayPad covers a weekend gap for hourly and 5-minute bars.
	intradayPad = 3 * 24 * time.Hour

	defaultConcurrency = 8
)

// Service implements HistoricalPriceProvider, CryptoCandleProvider and BenchmarkProvider
type Service struct {
	eodhd       interfaces.EODHDClient
	candles     interfaces.CandleClient
	logger      *common.Logger
	concurrency int
}

// NewService creates a new market data service.
// candles may be nil when no crypto portfolios are served.
func NewService(eodhd interfaces.EODHDClient, candles interfaces.CandleClient, logger *common.Logger) *Service {
	return &Service{
		eodhd:       eodhd,
		candles:     candles,
		logger:      logger,
		concurrency: defaultConcurrency,
	}
}

// SetConcurrency bounds the number of in-flight provider calls per fan-out.
func (s *Service) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// GetHistoricalPrices returns a best-effort series for a stock instrument.
// Intraday windows that come back empty (market closed, plan limits) degrade to
// daily closes over the same window.
func (s *Service) GetHistoricalPrices(ctx context.Context, instrument string, start, end time.Time, granularity models.Granularity) (models.PriceSeries, error) {
	ticker := models.EODHDTicker(instrument)

	if granularity.IsIntraday() {
		interval := "1h"
		if granularity.Duration() < time.Hour {
			interval = "5m"
		}
		points, err := s.eodhd.GetIntraday(ctx, ticker, interval, start.Add(-intradayPad), end)
		if err != nil {
			s.logger.Debug().Err(err).Str("ticker", ticker).Str("interval", interval).Msg("Intraday fetch failed, trying daily closes")
		} else if series := models.NewPriceSeries(points); len(series) > 0 {
			return series, nil
		}
	}

	return s.dailyCloses(ctx, ticker, start.Add(-dailyPad), end)
}

func (s *Service) dailyCloses(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	resp, err := s.eodhd.GetEOD(ctx, ticker, interfaces.WithDateRange(from, to), interfaces.WithOrder("a"))
	if err != nil {
		return nil, err
	}
	points := make([]models.PricePoint, 0, len(resp.Data))
	for _, bar := range resp.Data {
		points = append(points, models.PricePoint{Time: bar.Date, Price: bar.Close})
	}
	return models.NewPriceSeries(points), nil
}

// GetCryptoCandles fetches candles for each instrument concurrently. An
// instrument whose fetch fails is logged and left out of the result.
func (s *Service) GetCryptoCandles(ctx context.Context, instruments []string, start, end time.Time, granularity models.Granularity) (map[string][]models.Candle, error) {
	result := make(map[string][]models.Candle, len(instruments))
	if s.candles == nil || len(instruments) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, inst := range instruments {
		symbol := strings.ToUpper(inst)
		product := s.candles.ProductID(symbol)
		g.Go(func() error {
			candles, err := s.candles.GetCandles(gctx, product, start.Add(-granularity.Duration()), end, granularity.Duration())
			if err != nil {
				s.logger.Warn().Err(err).Str("product", product).Msg("Candle fetch failed")
				return nil
			}
			mu.Lock()
			result[symbol] = candles
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetBenchmarkPrices returns the benchmark close for each requested date, using
// the latest close on or before that date. Dates earlier than the first close
// in the fetched window are absent.
func (s *Service) GetBenchmarkPrices(ctx context.Context, ticker string, dates []time.Time) (map[string]float64, error) {
	result := make(map[string]float64, len(dates))
	if len(dates) == 0 {
		return result, nil
	}

	from, to := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(from) {
			from = d
		}
		if d.After(to) {
			to = d
		}
	}

	resp, err := s.eodhd.GetEOD(ctx, ticker,
		interfaces.WithDateRange(common.StartOfDay(from).Add(-dailyPad), common.StartOfDay(to)),
		interfaces.WithOrder("a"))
	if err != nil {
		return nil, err
	}

	bars := make([]models.EODBar, 0, len(resp.Data))
	for _, bar := range resp.Data {
		if bar.Close > 0 {
			bars = append(bars, bar)
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	for _, d := range dates {
		day := common.StartOfDay(d)
		// first bar dated after this day
		idx := sort.Search(len(bars), func(i int) bool { return common.StartOfDay(bars[i].Date).After(day) })
		if idx == 0 {
			continue
		}
		result[common.DateKey(day)] = bars[idx-1].Close
	}
	return result, nil
}

var (
	_ interfaces.HistoricalPriceProvider = (*Service)(nil)
	_ interfaces.CryptoCandleProvider    = (*Service)(nil)
	_ interfaces.BenchmarkProvider       = (*Service)(nil)
)
