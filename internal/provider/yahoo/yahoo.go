// Package yahoo implements marketdata.Provider against the Yahoo
// Finance web endpoints: quote-summary for extended quotes and chart
// for daily history. Requests are rate limited per host, circuit
// broken per endpoint class, and retried with linear backoff.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/bxxd/mcp-yfinance-ux/internal/marketdata"
	"github.com/bxxd/mcp-yfinance-ux/internal/net/ratelimit"
)

// Config holds provider transport settings.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	MaxRetries     int
	RetryBackoff   time.Duration
	UserAgent      string
	Breaker        BreakerConfig
}

// DefaultConfig returns the standard transport settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "https://query1.finance.yahoo.com",
		RequestTimeout: 10 * time.Second,
		RateLimitRPS:   5.0,
		RateLimitBurst: 10,
		MaxRetries:     3,
		RetryBackoff:   time.Second,
		UserAgent:      "marketd/1.0 (+https://github.com/bxxd/mcp-yfinance-ux)",
		Breaker:        DefaultBreakerConfig(),
	}
}

// Metrics observes provider failures. A nil Metrics disables
// reporting.
type Metrics interface {
	RecordProviderError(op string)
}

// Provider fetches quotes and history from Yahoo Finance.
type Provider struct {
	config  Config
	client  *http.Client
	limiter *ratelimit.Limiter
	host    string
	metrics Metrics

	quoteBreaker *gobreaker.CircuitBreaker
	chartBreaker *gobreaker.CircuitBreaker
}

// Option customizes a Provider.
type Option func(*Provider)

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// New creates a Provider from config, filling zero values with
// defaults.
func New(config Config, opts ...Option) (*Provider, error) {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = defaults.RequestTimeout
	}
	if config.RateLimitRPS == 0 {
		config.RateLimitRPS = defaults.RateLimitRPS
	}
	if config.RateLimitBurst == 0 {
		config.RateLimitBurst = defaults.RateLimitBurst
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = defaults.RetryBackoff
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.Breaker == (BreakerConfig{}) {
		config.Breaker = defaults.Breaker
	}

	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider base URL %q: %w", config.BaseURL, err)
	}

	return &Provider{
		config: config,
		client: &http.Client{
			Timeout: config.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		limiter:      ratelimit.NewLimiter(config.RateLimitRPS, config.RateLimitBurst),
		host:         parsed.Host,
		quoteBreaker: newBreaker("yahoo_quote", config.Breaker),
		chartBreaker: newBreaker("yahoo_chart", config.Breaker),
	}, nil
}

// ExtendedQuote returns the full quote document for symbol with
// provider fields mapped to payload keys.
func (p *Provider) ExtendedQuote(ctx context.Context, symbol string) (marketdata.Payload, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,summaryDetail,defaultKeyStatistics",
		p.config.BaseURL, url.PathEscape(symbol))

	var doc quoteSummaryResponse
	if err := p.fetchJSON(ctx, p.quoteBreaker, "quote", endpoint, &doc); err != nil {
		return nil, fmt.Errorf("extended quote for %s: %w", symbol, err)
	}

	if doc.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("extended quote for %s: %s", symbol, doc.QuoteSummary.Error.Description)
	}
	if len(doc.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("extended quote for %s: empty result", symbol)
	}

	return doc.QuoteSummary.Result[0].toPayload(symbol), nil
}

// History returns the daily OHLCV series for symbol over period,
// oldest bar first.
func (p *Provider) History(ctx context.Context, symbol string, period string) (marketdata.HistorySeries, error) {
	if !marketdata.ValidPeriod(period) {
		return nil, fmt.Errorf("history for %s: %w: %q", symbol, marketdata.ErrInvalidPeriod, period)
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		p.config.BaseURL, url.PathEscape(symbol), url.QueryEscape(period))

	var doc chartResponse
	if err := p.fetchJSON(ctx, p.chartBreaker, "chart", endpoint, &doc); err != nil {
		return nil, fmt.Errorf("history for %s: %w", symbol, err)
	}

	if doc.Chart.Error != nil {
		return nil, fmt.Errorf("history for %s: %s", symbol, doc.Chart.Error.Description)
	}
	if len(doc.Chart.Result) == 0 {
		return nil, fmt.Errorf("history for %s: empty result", symbol)
	}

	return doc.Chart.Result[0].toSeries(), nil
}

// fetchJSON runs one rate-limited, circuit-broken, retried GET and
// decodes the body into out.
func (p *Provider) fetchJSON(ctx context.Context, breaker *gobreaker.CircuitBreaker, op, endpoint string, out any) error {
	if err := p.limiter.Wait(ctx, p.host); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	_, err := breaker.Execute(func() (any, error) {
		return nil, p.getWithRetries(ctx, op, endpoint, out)
	})
	if err != nil {
		p.recordError(op)
	}
	return err
}

func (p *Provider) getWithRetries(ctx context.Context, op, endpoint string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * p.config.RetryBackoff
			log.Debug().
				Str("op", op).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("retrying provider request")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		retryable, err := p.getOnce(ctx, endpoint, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return fmt.Errorf("after %d attempts: %w", p.config.MaxRetries+1, lastErr)
}

// getOnce performs a single GET. The first return reports whether the
// failure is worth retrying: transport faults, 429, and 5xx are;
// decode failures and other statuses are not.
func (p *Provider) getOnce(ctx context.Context, endpoint string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", p.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return true, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	default:
		return false, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}

func (p *Provider) recordError(op string) {
	if p.metrics != nil {
		p.metrics.RecordProviderError(op)
	}
}
