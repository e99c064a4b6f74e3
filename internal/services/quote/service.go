// Package quote provides live quotes with a short per-portfolio cache
package quote

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/metrics"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

const (
	DefaultTTL         = 5 * time.Minute
	DefaultCacheSize   = 256
	defaultConcurrency = 8
)

// Service implements QuoteService over EODHD real-time quotes.
// Cached quote sets expire by TTL only; nothing invalidates them early.
type Service struct {
	eodhd       interfaces.EODHDClient
	cache       *expirable.LRU[string, map[string]float64]
	logger      *common.Logger
	concurrency int
}

// Option configures the service
type Option func(*options)

type options struct {
	ttl         time.Duration
	size        int
	concurrency int
}

// WithTTL sets how long a portfolio's quote set is reused
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithCacheSize bounds the number of portfolios cached
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.size = n
		}
	}
}

// WithConcurrency bounds in-flight quote requests per refresh
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// NewService creates a new quote service.
func NewService(eodhd interfaces.EODHDClient, logger *common.Logger, opts ...Option) *Service {
	o := options{ttl: DefaultTTL, size: DefaultCacheSize, concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		eodhd:       eodhd,
		cache:       expirable.NewLRU[string, map[string]float64](o.size, nil, o.ttl),
		logger:      logger,
		concurrency: o.concurrency,
	}
}

// GetQuotes returns live prices for the portfolio's symbols. A cached set is
// used only when it covers every requested symbol; otherwise all symbols are
// refetched concurrently and the set replaced. Symbols with no quote are
// remembered as misses until the set expires.
func (s *Service) GetQuotes(ctx context.Context, portfolioID string, symbols []string) (map[string]float64, error) {
	wanted := normalizeSymbols(symbols)
	if len(wanted) == 0 {
		return map[string]float64{}, nil
	}

	if cached, ok := s.cache.Get(portfolioID); ok && covers(cached, wanted) {
		metrics.QuoteCacheTotal.WithLabelValues("hit").Inc()
		return subset(cached, wanted), nil
	}
	metrics.QuoteCacheTotal.WithLabelValues("miss").Inc()

	start := time.Now()
	fetched := make(map[string]float64, len(wanted))
	for _, sym := range wanted {
		fetched[sym] = 0
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, sym := range wanted {
		g.Go(func() error {
			price, ok := s.GetCurrentQuote(gctx, sym)
			if !ok {
				return nil
			}
			mu.Lock()
			fetched[sym] = price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("portfolio", portfolioID).
		Int("requested", len(wanted)).
		Int("quoted", quoted(fetched)).
		Dur("elapsed", time.Since(start)).
		Msg("Quote refresh")

	s.cache.Add(portfolioID, fetched)
	return subset(fetched, wanted), nil
}

// GetCurrentQuote fetches one uncached live price. Missing or non-positive
// quotes report false.
func (s *Service) GetCurrentQuote(ctx context.Context, instrument string) (float64, bool) {
	ticker := models.EODHDTicker(instrument)
	q, err := s.eodhd.GetRealTimeQuote(ctx, ticker)
	if err != nil {
		s.logger.Debug().Err(err).Str("ticker", ticker).Msg("Live quote unavailable")
		return 0, false
	}
	if q == nil || q.Close <= 0 {
		return 0, false
	}
	return q.Close, true
}

func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func covers(cached map[string]float64, wanted []string) bool {
	for _, sym := range wanted {
		if _, ok := cached[sym]; !ok {
			return false
		}
	}
	return true
}

func subset(src map[string]float64, wanted []string) map[string]float64 {
	out := make(map[string]float64, len(wanted))
	for _, sym := range wanted {
		if v, ok := src[sym]; ok && v > 0 {
			out[sym] = v
		}
	}
	return out
}

func quoted(prices map[string]float64) int {
	n := 0
	for _, v := range prices {
		if v > 0 {
			n++
		}
	}
	return n
}

// Ensure Service implements QuoteService
var _ interfaces.QuoteService = (*Service)(nil)
