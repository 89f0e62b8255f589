package market

// SymbolClass buckets a ticker by how its market trades, which drives
// how long a cached quote stays fresh.
type SymbolClass int

const (
	// SessionBound instruments trade only during regular exchange hours
	// (equities, ETFs, cash indices).
	SessionBound SymbolClass = iota
	// Futures trade nearly 24h with a daily settlement cycle.
	Futures
	// Crypto trades continuously with no settlement cycle.
	Crypto
)

// String returns the diagnostic label used in logs and metrics.
func (s SymbolClass) String() string {
	switch s {
	case Futures:
		return "futures"
	case Crypto:
		return "crypto"
	default:
		return "session"
	}
}

// Default symbol tables. Everything not listed is session-bound.
var (
	defaultFutures = []string{
		"ES=F", "NQ=F", "YM=F",
		"GC=F", "SI=F", "PL=F", "HG=F", "CL=F", "NG=F",
	}
	defaultCrypto = []string{
		"BTC-USD", "ETH-USD", "SOL-USD",
	}
)

// Classifier maps symbols to their class via static lookup tables.
// It holds no other state and is safe for concurrent use.
type Classifier struct {
	futures map[string]struct{}
	crypto  map[string]struct{}
}

// NewClassifier builds a classifier from explicit futures and crypto
// symbol lists. Symbols absent from both lists classify as SessionBound.
func NewClassifier(futures, crypto []string) *Classifier {
	c := &Classifier{
		futures: make(map[string]struct{}, len(futures)),
		crypto:  make(map[string]struct{}, len(crypto)),
	}
	for _, s := range futures {
		c.futures[s] = struct{}{}
	}
	for _, s := range crypto {
		c.crypto[s] = struct{}{}
	}
	return c
}

// DefaultClassifier returns a classifier loaded with the built-in
// futures and crypto tables.
func DefaultClassifier() *Classifier {
	return NewClassifier(defaultFutures, defaultCrypto)
}

// Classify returns the class for symbol.
func (c *Classifier) Classify(symbol string) SymbolClass {
	if _, ok := c.futures[symbol]; ok {
		return Futures
	}
	if _, ok := c.crypto[symbol]; ok {
		return Crypto
	}
	return SessionBound
}

// Continuous reports whether symbol trades around the clock.
func (c *Classifier) Continuous(symbol string) bool {
	return c.Classify(symbol) != SessionBound
}
