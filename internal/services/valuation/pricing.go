package valuation

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

// liveCandleWindow is how far back the latest candle is searched for a crypto live price.
const liveCandleWindow = time.Hour

// PriceBook is everything known about instrument prices for one query.
type PriceBook struct {
	History map[string]models.PriceSeries // by upper-case symbol, may be empty
	Live    map[string]float64            // latest usable price by symbol
}

func newPriceBook() *PriceBook {
	return &PriceBook{
		History: make(map[string]models.PriceSeries),
		Live:    make(map[string]float64),
	}
}

// LoadOptions selects which price sources a query needs.
type LoadOptions struct {
	History bool // fetch price history across the range
}

// pricer gathers prices for a portfolio's held instruments. One
// implementation exists per asset class; the engine is shared.
type pricer interface {
	Load(ctx context.Context, state *models.PortfolioState, rr ResolvedRange, opts LoadOptions) (*PriceBook, error)
}

// quotePricer prices stocks from historical closes and live quotes.
type quotePricer struct {
	history     interfaces.HistoricalPriceProvider
	quotes      interfaces.QuoteService
	concurrency int
	logger      *common.Logger
}

func (p *quotePricer) Load(ctx context.Context, state *models.PortfolioState, rr ResolvedRange, opts LoadOptions) (*PriceBook, error) {
	book := newPriceBook()
	symbols := state.HeldSymbols()
	if len(symbols) == 0 {
		return book, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency + 1)

	g.Go(func() error {
		quotes, err := p.quotes.GetQuotes(gctx, state.Portfolio.ID, symbols)
		if err != nil {
			p.logger.Warn().Err(err).Str("portfolio", state.Portfolio.ID).Msg("Live quotes unavailable")
			return nil
		}
		mu.Lock()
		for sym, price := range quotes {
			if price > 0 {
				book.Live[sym] = price
			}
		}
		mu.Unlock()
		return nil
	})

	if opts.History {
		for _, sym := range symbols {
			g.Go(func() error {
				series, err := p.history.GetHistoricalPrices(gctx, sym, rr.Start, rr.End, rr.Granularity)
				if err != nil {
					p.logger.Warn().Err(err).Str("symbol", sym).Msg("Price history unavailable")
					return nil
				}
				mu.Lock()
				book.History[sym] = series
				mu.Unlock()
				return nil
			})
		}
	}

	_ = g.Wait()
	if err := abandoned(ctx); err != nil {
		return nil, err
	}
	return book, nil
}

// candlePricer prices crypto from OHLC candle closes. The live price is the
// close of the most recent one-minute candle.
type candlePricer struct {
	candles interfaces.CryptoCandleProvider
	logger  *common.Logger
	now     func() time.Time
}

func (p *candlePricer) Load(ctx context.Context, state *models.PortfolioState, rr ResolvedRange, opts LoadOptions) (*PriceBook, error) {
	book := newPriceBook()
	symbols := state.HeldSymbols()
	if len(symbols) == 0 {
		return book, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		now := p.now()
		latest, err := p.candles.GetCryptoCandles(gctx, symbols, now.Add(-liveCandleWindow), now, models.Granularity(time.Minute))
		if err != nil {
			p.logger.Warn().Err(err).Str("portfolio", state.Portfolio.ID).Msg("Live candles unavailable")
			return nil
		}
		mu.Lock()
		for sym, candles := range latest {
			series := models.CandlesToSeries(candles)
			if n := len(series); n > 0 {
				book.Live[sym] = series[n-1].Price
			}
		}
		mu.Unlock()
		return nil
	})

	if opts.History {
		g.Go(func() error {
			history, err := p.candles.GetCryptoCandles(gctx, symbols, rr.Start, rr.End, rr.Granularity)
			if err != nil {
				p.logger.Warn().Err(err).Str("portfolio", state.Portfolio.ID).Msg("Candle history unavailable")
				return nil
			}
			mu.Lock()
			for sym, candles := range history {
				book.History[sym] = models.CandlesToSeries(candles)
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	if err := abandoned(ctx); err != nil {
		return nil, err
	}
	return book, nil
}

// abandoned reports a cancelled fetch. An expired deadline is not an error:
// whatever arrived in time is priced and the rest falls back.
func abandoned(ctx context.Context) error {
	err := ctx.Err()
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
