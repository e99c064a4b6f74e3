// Package coinbase provides a market data client for the Coinbase Exchange candles API
package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/metrics"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

const (
	DefaultBaseURL   = "https://api.exchange.coinbase.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 8 // public endpoints allow ~10 rps

	// MaxCandlesPerRequest is the exchange's per-request cap.
	MaxCandlesPerRequest = 300
)

// supportedGranularities are the only bucket widths the exchange accepts.
var supportedGranularities = []time.Duration{
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	time.Hour,
	6 * time.Hour,
	24 * time.Hour,
}

// Client implements the CandleClient interface
type Client struct {
	baseURL       string
	quoteCurrency string
	httpClient    *http.Client
	logger        *common.Logger
	limiter       *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithQuoteCurrency sets the currency products are quoted in (default USD)
func WithQuoteCurrency(currency string) ClientOption {
	return func(c *Client) {
		if currency != "" {
			c.quoteCurrency = strings.ToUpper(currency)
		}
	}
}

// NewClient creates a new Coinbase market data client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		quoteCurrency: "USD",
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Coinbase API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// ProductID maps "BTC" to "BTC-USD". Symbols that already name a product pass through.
func (c *Client) ProductID(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.Contains(s, "-") {
		return s
	}
	return s + "-" + c.quoteCurrency
}

// SupportedGranularity returns the smallest accepted bucket width >= want.
func SupportedGranularity(want time.Duration) time.Duration {
	for _, g := range supportedGranularities {
		if g >= want {
			return g
		}
	}
	return supportedGranularities[len(supportedGranularities)-1]
}

// GetCandles retrieves candles ascending by time, paging through windows of at
// most MaxCandlesPerRequest buckets.
func (c *Client) GetCandles(ctx context.Context, product string, start, end time.Time, granularity time.Duration) ([]models.Candle, error) {
	if !end.After(start) {
		return nil, nil
	}
	g := SupportedGranularity(granularity)
	window := g * MaxCandlesPerRequest

	var candles []models.Candle
	for from := start; from.Before(end); from = from.Add(window) {
		to := from.Add(window)
		if to.After(end) {
			to = end
		}
		page, err := c.getCandlePage(ctx, product, from, to, g)
		if err != nil {
			return nil, err
		}
		candles = append(candles, page...)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	return candles, nil
}

// getCandlePage fetches one window. The API returns rows of
// [time, low, high, open, close, volume], newest first.
func (c *Client) getCandlePage(ctx context.Context, product string, start, end time.Time, g time.Duration) ([]models.Candle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	path := fmt.Sprintf("/products/%s/candles", url.PathEscape(product))
	params := url.Values{}
	params.Set("granularity", strconv.Itoa(int(g.Seconds())))
	params.Set("start", start.UTC().Format(time.RFC3339))
	params.Set("end", end.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("product", product).Str("start", params.Get("start")).Str("end", params.Get("end")).Msg("Coinbase candles request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("coinbase", "error").Inc()
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	metrics.ProviderRequestsTotal.WithLabelValues("coinbase", strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}

	var rows [][]float64
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		candles = append(candles, models.Candle{
			Time:   time.Unix(int64(row[0]), 0).UTC(),
			Low:    row[1],
			High:   row[2],
			Open:   row[3],
			Close:  row[4],
			Volume: row[5],
		})
	}
	return candles, nil
}

// Ensure Client implements CandleClient
var _ interfaces.CandleClient = (*Client)(nil)
