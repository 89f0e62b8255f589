package cache

import (
	"time"

	"github.com/bxxd/mcp-yfinance-ux/internal/market"
)

// Default TTLs per symbol class.
const (
	FuturesTTL = 30 * time.Second
	CryptoTTL  = 2 * time.Minute
	SessionTTL = 2 * time.Minute
)

// TTLConfig carries the per-class TTLs applied while the relevant
// market is live. Session-bound symbols use Session only while the
// session is open; closed sessions cache until the next open.
type TTLConfig struct {
	Futures time.Duration
	Crypto  time.Duration
	Session time.Duration
}

// DefaultTTL returns the standard TTL set.
func DefaultTTL() TTLConfig {
	return TTLConfig{
		Futures: FuturesTTL,
		Crypto:  CryptoTTL,
		Session: SessionTTL,
	}
}

// Policy computes entry expiry instants from a symbol's class and the
// session calendar. It is a pure function of its inputs and the
// supplied now; nothing here is memoized.
type Policy struct {
	clock      *market.Clock
	classifier *market.Classifier
	ttl        TTLConfig
}

// NewPolicy builds a TTL policy over the given session clock and
// symbol classifier.
func NewPolicy(clock *market.Clock, classifier *market.Classifier, ttl TTLConfig) *Policy {
	return &Policy{clock: clock, classifier: classifier, ttl: ttl}
}

// ExpiresAt returns when an entry for symbol stored at now goes stale,
// along with the class that drove the decision.
//
// Futures quotes move constantly and settle daily, so they get the
// shortest TTL. Crypto trades around the clock at a gentler cadence.
// Session-bound symbols stay fresh briefly while the session is open;
// once it closes their prices cannot change, so the entry holds until
// the next session open.
func (p *Policy) ExpiresAt(symbol string, now time.Time) (time.Time, market.SymbolClass) {
	class := p.classifier.Classify(symbol)

	switch class {
	case market.Futures:
		return now.Add(p.ttl.Futures), class
	case market.Crypto:
		return now.Add(p.ttl.Crypto), class
	}

	if p.clock.IsOpen(now) {
		return now.Add(p.ttl.Session), class
	}
	return p.clock.NextOpen(now), class
}

// Class exposes the classifier decision for symbol.
func (p *Policy) Class(symbol string) market.SymbolClass {
	return p.classifier.Classify(symbol)
}
