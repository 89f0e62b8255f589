// Package cache holds enriched quote payloads in memory with
// market-aware expiry. Entries expire lazily on read; there is no
// background sweeper.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bxxd/mcp-yfinance-ux/internal/marketdata"
)

// Metrics receives cache events. Implementations must be safe for
// concurrent use. A nil Metrics disables reporting.
type Metrics interface {
	RecordCacheHit(class string)
	RecordCacheMiss(class string)
	SetCacheEntries(n int)
}

type entry struct {
	payload   marketdata.Payload
	cachedAt  time.Time
	expiresAt time.Time
}

// Service is the per-symbol payload store. It is constructed once at
// startup and shared by reference; a single mutex covers every
// read/modify/write sequence, including eviction-on-read.
type Service struct {
	mu      sync.Mutex
	entries map[string]entry

	policy  *Policy
	now     func() time.Time
	metrics Metrics
}

// Option customizes a Service.
type Option func(*Service)

// WithNow substitutes the time source, for tests that simulate the
// passage of time.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates an empty cache governed by policy.
func New(policy *Policy, opts ...Option) *Service {
	s := &Service{
		entries: make(map[string]entry),
		policy:  policy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the payload for key if present and unexpired. An entry
// whose expiry has passed is evicted and reported as a miss.
func (s *Service) Get(key string) (marketdata.Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	class := s.policy.Class(key).String()

	e, ok := s.entries[key]
	if !ok {
		log.Debug().Str("symbol", key).Msg("cache MISS")
		s.recordMiss(class)
		return nil, false
	}

	now := s.now()
	if !now.Before(e.expiresAt) {
		delete(s.entries, key)
		log.Debug().
			Str("symbol", key).
			Dur("expired_ago", now.Sub(e.expiresAt)).
			Msg("cache MISS (expired)")
		s.recordMiss(class)
		return nil, false
	}

	log.Info().
		Str("symbol", key).
		Str("class", class).
		Dur("ttl_remaining", e.expiresAt.Sub(now)).
		Msg("cache HIT")
	s.recordHit(class)
	return e.payload, true
}

// Set stores payload under key with an expiry computed by the policy
// at call time, overwriting any previous entry.
func (s *Service) Set(key string, payload marketdata.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expiresAt, class := s.policy.ExpiresAt(key, now)

	s.entries[key] = entry{
		payload:   payload,
		cachedAt:  now,
		expiresAt: expiresAt,
	}

	log.Info().
		Str("symbol", key).
		Str("class", class.String()).
		Dur("ttl", expiresAt.Sub(now)).
		Msg("cache SET")
	if s.metrics != nil {
		s.metrics.SetCacheEntries(len(s.entries))
	}
}

// Clear removes all entries.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]entry)
	log.Info().Msg("cache cleared")
	if s.metrics != nil {
		s.metrics.SetCacheEntries(0)
	}
}

// Len returns the number of stored entries, expired or not.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// EntryStats describes one live cache entry for diagnostics.
type EntryStats struct {
	Symbol              string  `json:"symbol"`
	CachedAt            string  `json:"cached_at"`
	ExpiresAt           string  `json:"expires_at"`
	TTLRemainingSeconds float64 `json:"ttl_remaining_seconds"`
}

// Snapshot is the diagnostic view of the whole cache.
type Snapshot struct {
	TotalEntries int          `json:"total_entries"`
	Entries      []EntryStats `json:"entries"`
}

// Stats returns a point-in-time listing of every entry. It never
// mutates the store and never evaluates expiry: an entry past its
// expiry still appears, with a non-positive remaining TTL, until a Get
// evicts it.
func (s *Service) Stats() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	snap := Snapshot{
		TotalEntries: len(s.entries),
		Entries:      make([]EntryStats, 0, len(s.entries)),
	}

	for symbol, e := range s.entries {
		snap.Entries = append(snap.Entries, EntryStats{
			Symbol:              symbol,
			CachedAt:            e.cachedAt.Format(time.RFC3339),
			ExpiresAt:           e.expiresAt.Format(time.RFC3339),
			TTLRemainingSeconds: e.expiresAt.Sub(now).Seconds(),
		})
	}

	sort.Slice(snap.Entries, func(i, j int) bool {
		return snap.Entries[i].Symbol < snap.Entries[j].Symbol
	})

	return snap
}

func (s *Service) recordHit(class string) {
	if s.metrics != nil {
		s.metrics.RecordCacheHit(class)
	}
}

func (s *Service) recordMiss(class string) {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(class)
	}
}
