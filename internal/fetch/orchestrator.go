// Package fetch reconciles cached quote payloads with bounded
// concurrent provider fan-out. One orchestration call probes the cache
// per symbol, resolves the misses through a worker pool, and merges
// everything back into a single keyed result set.
package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bxxd/mcp-yfinance-ux/internal/cache"
	"github.com/bxxd/mcp-yfinance-ux/internal/marketdata"
)

// DefaultWorkers bounds concurrent provider calls per batch.
const DefaultWorkers = 10

// FetchFunc resolves one symbol against the upstream provider,
// including any enrichment. Implementations must be safe for
// concurrent use.
type FetchFunc func(ctx context.Context, symbol string) (marketdata.Payload, error)

// Metrics observes fan-out activity. A nil Metrics disables reporting.
type Metrics interface {
	FetchStarted()
	FetchFinished(outcome string, elapsed time.Duration)
}

// Stats counts cache outcomes for a single orchestration call.
type Stats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

// Total returns the number of distinct symbols the call accounted for.
func (s Stats) Total() int { return s.Hits + s.Misses }

// HitRate returns the hit fraction in [0,1], 0 for an empty call.
func (s Stats) HitRate() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Total())
}

type result struct {
	symbol  string
	payload marketdata.Payload
	err     error
}

// Orchestrator coordinates one shared cache with a provider-backed
// fetch function. Construct one per enrichment shape; instances may
// share a cache.
type Orchestrator struct {
	cache   *cache.Service
	fetch   FetchFunc
	workers int
	scope   string
	metrics Metrics
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers overrides the pool bound. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n >= 1 {
			o.workers = n
		}
	}
}

// WithScope labels this orchestrator's log lines.
func WithScope(scope string) Option {
	return func(o *Orchestrator) { o.scope = scope }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an Orchestrator over cache and fetch.
func New(c *cache.Service, fetch FetchFunc, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cache:   c,
		fetch:   fetch,
		workers: DefaultWorkers,
		scope:   "fetch",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FetchBatch resolves symbols into payloads, serving from cache where
// possible and fanning the misses out to the provider. The returned
// map has exactly one entry per distinct requested symbol; a provider
// failure surfaces as an error payload for that symbol alone and is
// never cached. An all-hit batch makes zero provider calls.
func (o *Orchestrator) FetchBatch(ctx context.Context, symbols []string) (map[string]marketdata.Payload, Stats) {
	out := make(map[string]marketdata.Payload, len(symbols))
	var stats Stats

	seen := make(map[string]struct{}, len(symbols))
	var misses []string
	for _, symbol := range symbols {
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}

		if payload, ok := o.cache.Get(symbol); ok {
			out[symbol] = payload
			stats.Hits++
			continue
		}
		stats.Misses++
		misses = append(misses, symbol)
	}

	if len(misses) > 0 {
		for _, r := range o.fanOut(ctx, misses) {
			if r.err != nil {
				out[r.symbol] = marketdata.ErrorPayload(r.symbol, r.err)
				continue
			}
			out[r.symbol] = r.payload
			if !r.payload.IsError() {
				o.cache.Set(r.symbol, r.payload)
			}
		}
	}

	if stats.Total() > 0 {
		log.Info().
			Str("scope", o.scope).
			Int("hits", stats.Hits).
			Int("misses", stats.Misses).
			Float64("hit_rate", stats.HitRate()).
			Int("provider_calls", stats.Misses).
			Msg("batch cache stats")
	}
	return out, stats
}

// FetchOne resolves a single symbol through the same path as
// FetchBatch.
func (o *Orchestrator) FetchOne(ctx context.Context, symbol string) marketdata.Payload {
	out, _ := o.FetchBatch(ctx, []string{symbol})
	return out[symbol]
}

// fanOut resolves symbols through at most o.workers concurrent fetch
// calls and returns one result per symbol in completion order.
func (o *Orchestrator) fanOut(ctx context.Context, symbols []string) []result {
	workers := o.workers
	if workers > len(symbols) {
		workers = len(symbols)
	}

	jobs := make(chan string)
	results := make(chan result, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				results <- o.resolve(ctx, symbol)
			}
		}()
	}

	for _, symbol := range symbols {
		jobs <- symbol
	}
	close(jobs)

	wg.Wait()
	close(results)

	collected := make([]result, 0, len(symbols))
	for r := range results {
		collected = append(collected, r)
	}
	return collected
}

func (o *Orchestrator) resolve(ctx context.Context, symbol string) result {
	if err := ctx.Err(); err != nil {
		return result{symbol: symbol, err: err}
	}

	o.fetchStarted()
	start := time.Now()

	payload, err := o.fetch(ctx, symbol)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		log.Warn().
			Str("scope", o.scope).
			Str("symbol", symbol).
			Err(err).
			Msg("provider fetch failed")
	}
	o.fetchFinished(outcome, time.Since(start))

	return result{symbol: symbol, payload: payload, err: err}
}

func (o *Orchestrator) fetchStarted() {
	if o.metrics != nil {
		o.metrics.FetchStarted()
	}
}

func (o *Orchestrator) fetchFinished(outcome string, elapsed time.Duration) {
	if o.metrics != nil {
		o.metrics.FetchFinished(outcome, elapsed)
	}
}
