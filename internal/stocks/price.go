package stocks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/answerd/internal/common"
)

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Series is an ordered run of closing prices for one symbol.
type Series struct {
	Symbol   string
	Points   []PricePoint
	CacheAge time.Duration
}

// First returns the earliest point of the series.
func (s *Series) First() PricePoint {
	return s.Points[0]
}

// Last returns the most recent point of the series.
func (s *Series) Last() PricePoint {
	return s.Points[len(s.Points)-1]
}

// PctChange returns the percentage change from the first to the last
// close. A series with fewer than two points has no change.
func (s *Series) PctChange() float64 {
	if len(s.Points) < 2 {
		return 0
	}
	first := s.First().Close
	if first == 0 {
		return 0
	}
	return (s.Last().Close - first) / first * 100
}

// SeriesCache persists fetched price series between requests.
type SeriesCache interface {
	Get(key string) ([]PricePoint, time.Time, bool)
	Put(key string, points []PricePoint) error
}

// Provider fetches historical closes from an upstream quote source.
type Provider interface {
	History(ctx context.Context, symbol string, window Window) ([]PricePoint, error)
}

const defaultProviderURL = "https://query1.finance.yahoo.com"

// YahooProvider reads daily closes from the Yahoo Finance chart API.
type YahooProvider struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewYahooProvider builds a provider against the given base URL, or the
// public endpoint when empty.
func NewYahooProvider(baseURL string, client *http.Client) *YahooProvider {
	if baseURL == "" {
		baseURL = defaultProviderURL
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &YahooProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		userAgent:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
	}
}

// providerRanges maps window periods to chart API range values.
var providerRanges = map[string]string{
	"1d":  "1d",
	"1w":  "5d",
	"1mo": "1mo",
	"6mo": "6mo",
	"1y":  "1y",
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History fetches daily closes for the window. Null closes in the
// upstream payload are skipped.
func (p *YahooProvider) History(ctx context.Context, symbol string, window Window) ([]PricePoint, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	if window.IsRange() {
		params.Set("period1", fmt.Sprintf("%d", window.Start.Unix()))
		params.Set("period2", fmt.Sprintf("%d", window.End.Unix()))
	} else {
		r, ok := providerRanges[window.Period]
		if !ok {
			r = "1mo"
		}
		params.Set("range", r)
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.baseURL, url.PathEscape(symbol), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("stocks: build chart request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stocks: fetch chart for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stocks: chart request for %s returned status %d", symbol, resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("stocks: decode chart response: %w", err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("stocks: chart API error: %s", payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := payload.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	points := make([]PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, PricePoint{Date: time.Unix(ts, 0).UTC(), Close: *closes[i]})
	}
	return points, nil
}

// newProviderLimiter throttles upstream quote requests: a single slot
// refilled every 2.5 seconds, so at most two requests land in any five
// second window.
func newProviderLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(2500*time.Millisecond), 1)
}

// providerLimiter is shared by every fetcher in the process.
var providerLimiter = newProviderLimiter()

// Fetcher serves price series from the cache when fresh and from the
// provider otherwise, throttled by the shared limiter.
type Fetcher struct {
	provider Provider
	cache    SeriesCache
	limiter  *rate.Limiter
	ttl      time.Duration
	logger   *common.Logger
}

// NewFetcher builds a fetcher over the provider and cache. A zero ttl
// uses the default price freshness.
func NewFetcher(provider Provider, cache SeriesCache, ttl time.Duration, logger *common.Logger) *Fetcher {
	if ttl <= 0 {
		ttl = common.FreshnessPriceSeries
	}
	return &Fetcher{
		provider: provider,
		cache:    cache,
		limiter:  providerLimiter,
		ttl:      ttl,
		logger:   logger,
	}
}

// Fetch returns the series for the symbol over the window, preferring
// a fresh cached copy. An empty upstream result is ErrNoPriceData.
func (f *Fetcher) Fetch(ctx context.Context, symbol string, window Window) (*Series, error) {
	symbol = strings.ReplaceAll(symbol, " ", "-")
	key := symbol + "|" + window.CacheKey()

	if f.cache != nil {
		if points, fetchedAt, ok := f.cache.Get(key); ok && common.IsFresh(fetchedAt, f.ttl) && len(points) > 0 {
			f.logger.Debug().Str("symbol", symbol).Msg("Price series served from cache")
			return &Series{Symbol: symbol, Points: points, CacheAge: time.Since(fetchedAt)}, nil
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("stocks: rate limit wait: %w", err)
	}

	points, err := f.provider.History(ctx, symbol, window)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPriceData, symbol)
	}

	if f.cache != nil {
		if err := f.cache.Put(key, points); err != nil {
			f.logger.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache price series")
		}
	}
	return &Series{Symbol: symbol, Points: points}, nil
}
