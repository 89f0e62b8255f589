package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bxxd/mcp-yfinance-ux/internal/market"
	"github.com/bxxd/mcp-yfinance-ux/internal/marketdata"
)

// fakeClock drives the cache's time source from the test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func nyLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(market.DefaultTimezone)
	require.NoError(t, err)
	return loc
}

func newTestCache(t *testing.T, start time.Time) (*Service, *fakeClock) {
	t.Helper()
	clock, err := market.NewClock(market.DefaultTimezone)
	require.NoError(t, err)

	policy := NewPolicy(clock, market.DefaultClassifier(), DefaultTTL())
	fc := newFakeClock(start)
	return New(policy, WithNow(fc.Now)), fc
}

func TestCache_FuturesTTL(t *testing.T) {
	loc := nyLoc(t)
	// Wednesday midday; class drives the TTL, not the session state.
	start := time.Date(2025, 3, 12, 12, 0, 0, 0, loc)
	svc, fc := newTestCache(t, start)

	payload := marketdata.Payload{"symbol": "ES=F", "price": 5250.25}
	svc.Set("ES=F", payload)

	fc.Advance(29 * time.Second)
	got, ok := svc.Get("ES=F")
	require.True(t, ok)
	assert.Equal(t, 5250.25, got["price"])

	fc.Advance(2 * time.Second) // 31s after set
	_, ok = svc.Get("ES=F")
	assert.False(t, ok)
	assert.Equal(t, 0, svc.Len(), "expired entry should be evicted on read")
}

func TestCache_CryptoTTL(t *testing.T) {
	loc := nyLoc(t)
	start := time.Date(2025, 3, 15, 3, 0, 0, 0, loc) // Saturday: crypto does not care
	svc, fc := newTestCache(t, start)

	svc.Set("BTC-USD", marketdata.Payload{"symbol": "BTC-USD", "price": 97000.0})

	fc.Advance(119 * time.Second)
	_, ok := svc.Get("BTC-USD")
	assert.True(t, ok)

	fc.Advance(2 * time.Second)
	_, ok = svc.Get("BTC-USD")
	assert.False(t, ok)
}

func TestCache_SessionOpenTTL(t *testing.T) {
	loc := nyLoc(t)
	start := time.Date(2025, 3, 12, 11, 0, 0, 0, loc) // open session
	svc, fc := newTestCache(t, start)

	svc.Set("AAPL", marketdata.Payload{"symbol": "AAPL", "price": 228.5})

	fc.Advance(119 * time.Second)
	_, ok := svc.Get("AAPL")
	assert.True(t, ok)

	fc.Advance(2 * time.Second)
	_, ok = svc.Get("AAPL")
	assert.False(t, ok)
}

func TestCache_SessionClosedHoldsUntilNextOpen(t *testing.T) {
	loc := nyLoc(t)
	start := time.Date(2025, 3, 12, 20, 0, 0, 0, loc) // Wednesday evening
	svc, fc := newTestCache(t, start)

	svc.Set("AAPL", marketdata.Payload{"symbol": "AAPL", "price": 228.5})

	// Hours later, still before Thursday 09:30: served from cache.
	fc.Advance(10 * time.Hour) // Thursday 06:00
	_, ok := svc.Get("AAPL")
	assert.True(t, ok)

	// Past Thursday 09:30: stale.
	fc.Advance(4 * time.Hour) // Thursday 10:00
	_, ok = svc.Get("AAPL")
	assert.False(t, ok)
}

func TestCache_WeekendEntryExpiresMondayOpen(t *testing.T) {
	loc := nyLoc(t)
	start := time.Date(2025, 3, 15, 12, 0, 0, 0, loc) // Saturday noon
	svc, fc := newTestCache(t, start)

	svc.Set("SPY", marketdata.Payload{"symbol": "SPY", "price": 560.0})

	snap := svc.Stats()
	require.Len(t, snap.Entries, 1)
	monday := time.Date(2025, 3, 17, 9, 30, 0, 0, loc)
	assert.Equal(t, monday.Format(time.RFC3339), snap.Entries[0].ExpiresAt)

	// Sunday: still fresh.
	fc.Advance(24 * time.Hour)
	_, ok := svc.Get("SPY")
	assert.True(t, ok)

	// Monday 12:00: past the open, stale.
	fc.Advance(24 * time.Hour)
	_, ok = svc.Get("SPY")
	assert.False(t, ok)
}

func TestCache_GetIdempotent(t *testing.T) {
	loc := nyLoc(t)
	svc, _ := newTestCache(t, time.Date(2025, 3, 12, 12, 0, 0, 0, loc))

	payload := marketdata.Payload{"symbol": "MSFT", "price": 415.0, "rsi": 61.2}
	svc.Set("MSFT", payload)

	first, ok := svc.Get("MSFT")
	require.True(t, ok)
	second, ok := svc.Get("MSFT")
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestCache_SetOverwrites(t *testing.T) {
	loc := nyLoc(t)
	svc, _ := newTestCache(t, time.Date(2025, 3, 12, 12, 0, 0, 0, loc))

	svc.Set("NVDA", marketdata.Payload{"symbol": "NVDA", "price": 120.0})
	svc.Set("NVDA", marketdata.Payload{"symbol": "NVDA", "price": 121.5})

	got, ok := svc.Get("NVDA")
	require.True(t, ok)
	assert.Equal(t, 121.5, got["price"])
	assert.Equal(t, 1, svc.Len())
}

func TestCache_Clear(t *testing.T) {
	loc := nyLoc(t)
	svc, _ := newTestCache(t, time.Date(2025, 3, 12, 12, 0, 0, 0, loc))

	svc.Set("AAPL", marketdata.Payload{"symbol": "AAPL"})
	svc.Set("BTC-USD", marketdata.Payload{"symbol": "BTC-USD"})
	require.Equal(t, 2, svc.Len())

	svc.Clear()
	assert.Equal(t, 0, svc.Len())
	_, ok := svc.Get("AAPL")
	assert.False(t, ok)
}

func TestCache_StatsDoesNotEvict(t *testing.T) {
	loc := nyLoc(t)
	start := time.Date(2025, 3, 12, 12, 0, 0, 0, loc)
	svc, fc := newTestCache(t, start)

	svc.Set("ES=F", marketdata.Payload{"symbol": "ES=F", "price": 5250.25})

	// Let the futures entry lapse, then look at stats only.
	fc.Advance(5 * time.Minute)

	snap := svc.Stats()
	require.Equal(t, 1, snap.TotalEntries)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "ES=F", snap.Entries[0].Symbol)
	assert.Negative(t, snap.Entries[0].TTLRemainingSeconds)

	// The entry is still physically present until a read touches it.
	assert.Equal(t, 1, svc.Len())
	_, ok := svc.Get("ES=F")
	assert.False(t, ok)
	assert.Equal(t, 0, svc.Len())
}

func TestCache_StatsShape(t *testing.T) {
	loc := nyLoc(t)
	start := time.Date(2025, 3, 12, 12, 0, 0, 0, loc)
	svc, _ := newTestCache(t, start)

	svc.Set("BTC-USD", marketdata.Payload{"symbol": "BTC-USD", "price": 97000.0})

	snap := svc.Stats()
	require.Len(t, snap.Entries, 1)
	e := snap.Entries[0]

	assert.Equal(t, "BTC-USD", e.Symbol)
	assert.Equal(t, start.Format(time.RFC3339), e.CachedAt)
	assert.Equal(t, start.Add(2*time.Minute).Format(time.RFC3339), e.ExpiresAt)
	assert.InDelta(t, 120.0, e.TTLRemainingSeconds, 0.001)
}

func TestCache_StatsSortedBySymbol(t *testing.T) {
	loc := nyLoc(t)
	svc, _ := newTestCache(t, time.Date(2025, 3, 12, 12, 0, 0, 0, loc))

	for _, s := range []string{"NVDA", "AAPL", "MSFT"} {
		svc.Set(s, marketdata.Payload{"symbol": s})
	}

	snap := svc.Stats()
	require.Len(t, snap.Entries, 3)
	assert.Equal(t, "AAPL", snap.Entries[0].Symbol)
	assert.Equal(t, "MSFT", snap.Entries[1].Symbol)
	assert.Equal(t, "NVDA", snap.Entries[2].Symbol)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	loc := nyLoc(t)
	svc, _ := newTestCache(t, time.Date(2025, 3, 12, 12, 0, 0, 0, loc))

	symbols := []string{"AAPL", "MSFT", "NVDA", "BTC-USD", "ES=F", "SPY", "QQQ", "GC=F"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sym := symbols[(n+j)%len(symbols)]
				svc.Set(sym, marketdata.Payload{"symbol": sym, "n": n})
				svc.Get(sym)
				svc.Stats()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(symbols), svc.Len())
}

func TestPolicy_ExpiresAt(t *testing.T) {
	loc := nyLoc(t)
	clock := market.MustClock(market.DefaultTimezone)
	policy := NewPolicy(clock, market.DefaultClassifier(), DefaultTTL())

	openNow := time.Date(2025, 3, 12, 11, 0, 0, 0, loc)
	closedNow := time.Date(2025, 3, 12, 20, 0, 0, 0, loc)

	tests := []struct {
		name      string
		symbol    string
		now       time.Time
		want      time.Time
		wantClass market.SymbolClass
	}{
		{"futures", "ES=F", openNow, openNow.Add(30 * time.Second), market.Futures},
		{"crypto", "ETH-USD", closedNow, closedNow.Add(2 * time.Minute), market.Crypto},
		{"session open", "AAPL", openNow, openNow.Add(2 * time.Minute), market.SessionBound},
		{
			"session closed",
			"AAPL",
			closedNow,
			time.Date(2025, 3, 13, 9, 30, 0, 0, loc),
			market.SessionBound,
		},
		{
			"session saturday",
			"AAPL",
			time.Date(2025, 3, 15, 10, 0, 0, 0, loc),
			time.Date(2025, 3, 17, 9, 30, 0, 0, loc),
			market.SessionBound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, class := policy.ExpiresAt(tt.symbol, tt.now)
			assert.True(t, tt.want.Equal(got), "ExpiresAt = %v, want %v", got, tt.want)
			assert.Equal(t, tt.wantClass, class)
		})
	}
}

func TestPolicy_SessionTTLMatchesNextOpenDistance(t *testing.T) {
	loc := nyLoc(t)
	clock := market.MustClock(market.DefaultTimezone)
	policy := NewPolicy(clock, market.DefaultClassifier(), DefaultTTL())

	now := time.Date(2025, 3, 14, 22, 17, 5, 0, loc) // Friday night
	expires, _ := policy.ExpiresAt("XLK", now)

	assert.Equal(t, clock.NextOpen(now).Sub(now), expires.Sub(now))
}
