// Package app exposes the market-board and ticker-screen services.
// Both resolve symbols through a shared session-aware cache and
// enrich raw provider documents with derived analytics before they
// are stored.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bxxd/mcp-yfinance-ux/internal/analytics"
	"github.com/bxxd/mcp-yfinance-ux/internal/cache"
	"github.com/bxxd/mcp-yfinance-ux/internal/fetch"
	"github.com/bxxd/mcp-yfinance-ux/internal/market"
	"github.com/bxxd/mcp-yfinance-ux/internal/marketdata"
)

// BenchmarkSymbol is the index the volatility decomposition regresses
// against.
const BenchmarkSymbol = "^GSPC"

// ErrNoSymbols is returned when a request resolves to an empty symbol
// set.
var ErrNoSymbols = errors.New("no symbols requested")

// Service answers board and ticker requests. The two request shapes
// run through separate orchestrators that share one cache, so a board
// scan can satisfy a later ticker probe for the same symbol within
// the TTL window.
type Service struct {
	provider   marketdata.Provider
	clock      *market.Clock
	classifier *market.Classifier
	board      Board
	now        func() time.Time
	metrics    fetch.Metrics

	boardOrch  *fetch.Orchestrator
	tickerOrch *fetch.Orchestrator
}

// Option customizes a Service.
type Option func(*Service)

// WithBoard replaces the built-in board layout.
func WithBoard(board Board) Option {
	return func(s *Service) { s.board = board }
}

// WithNow substitutes the time source for simulated-clock tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithFetchMetrics attaches a fan-out metrics sink to both
// orchestrators.
func WithFetchMetrics(m fetch.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New wires a Service over the shared cache and the upstream provider.
// workers bounds concurrent provider fan-out per batch; values below 1
// take the fetch default.
func New(c *cache.Service, provider marketdata.Provider, clock *market.Clock, classifier *market.Classifier, workers int, opts ...Option) *Service {
	s := &Service{
		provider:   provider,
		clock:      clock,
		classifier: classifier,
		board:      DefaultBoard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.boardOrch = fetch.New(c, s.enrichBoard,
		fetch.WithScope("markets"), fetch.WithWorkers(workers), fetch.WithMetrics(s.metrics))
	s.tickerOrch = fetch.New(c, s.enrichTicker,
		fetch.WithScope("ticker"), fetch.WithWorkers(workers), fetch.WithMetrics(s.metrics))
	return s
}

// Ticker returns the full screen payload for one symbol.
func (s *Service) Ticker(ctx context.Context, symbol string) (marketdata.Payload, error) {
	symbols := NormalizeSymbols([]string{symbol})
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}
	return s.tickerOrch.FetchOne(ctx, symbols[0]), nil
}

// Tickers returns screen payloads for a batch of symbols, one entry
// per distinct normalized symbol.
func (s *Service) Tickers(ctx context.Context, symbols []string) (map[string]marketdata.Payload, fetch.Stats, error) {
	normalized := NormalizeSymbols(symbols)
	if len(normalized) == 0 {
		return nil, fetch.Stats{}, ErrNoSymbols
	}
	out, stats := s.tickerOrch.FetchBatch(ctx, normalized)
	return out, stats, nil
}

// History passes a validated history request straight through to the
// provider; history is never cached.
func (s *Service) History(ctx context.Context, symbol, period string) (marketdata.HistorySeries, error) {
	symbols := NormalizeSymbols([]string{symbol})
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}
	if !marketdata.ValidPeriod(period) {
		return nil, fmt.Errorf("%w: %q", marketdata.ErrInvalidPeriod, period)
	}
	return s.provider.History(ctx, symbols[0], period)
}

// GreeksRequest carries caller-supplied option contract terms.
type GreeksRequest struct {
	Spot          float64              `json:"spot"`
	Strike        float64              `json:"strike"`
	TimeToExpiry  float64              `json:"time_to_expiry"`
	Volatility    float64              `json:"volatility"`
	RiskFreeRate  float64              `json:"risk_free_rate"`
	DividendYield float64              `json:"dividend_yield"`
	OptionType    analytics.OptionType `json:"option_type"`
}

// OptionGreeks computes Black-Scholes greeks for req.
func (s *Service) OptionGreeks(req GreeksRequest) (analytics.GreeksResult, error) {
	return analytics.Greeks(req.Spot, req.Strike, req.TimeToExpiry,
		req.Volatility, req.RiskFreeRate, req.DividendYield, req.OptionType)
}

// NormalizeSymbols uppercases and trims the input, splits comma-joined
// entries, and drops empties, preserving first-seen order.
func NormalizeSymbols(symbols []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range symbols {
		for _, part := range strings.Split(raw, ",") {
			symbol := strings.ToUpper(strings.TrimSpace(part))
			if symbol == "" {
				continue
			}
			if _, dup := seen[symbol]; dup {
				continue
			}
			seen[symbol] = struct{}{}
			out = append(out, symbol)
		}
	}
	return out
}
