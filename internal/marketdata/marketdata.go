// Package marketdata defines the payload shapes and the upstream
// provider contract shared by the fetch pipeline and its services.
package marketdata

import (
	"context"
	"errors"
	"time"
)

// Payload is an enriched quote document keyed by snake_case field
// names. The pipeline treats its shape as opaque apart from the
// numeric fields the analytics read; a failed fetch is represented as
// a payload carrying only "symbol" and "error".
type Payload map[string]any

// ErrorPayload builds the per-symbol error document returned in batch
// results when the upstream fetch fails.
func ErrorPayload(symbol string, err error) Payload {
	return Payload{"symbol": symbol, "error": err.Error()}
}

// IsError reports whether p carries an error marker. Error payloads
// are returned to callers but never written to the cache.
func (p Payload) IsError() bool {
	_, ok := p["error"]
	return ok
}

// Symbol returns the payload's symbol field, if present.
func (p Payload) Symbol() string {
	s, _ := p["symbol"].(string)
	return s
}

// Float reads a numeric payload field. The second return is false when
// the field is absent, nil, or not a number.
func (p Payload) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Bar is one OHLCV observation of a daily history series.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// HistorySeries is an ordered (oldest first) daily OHLCV series.
type HistorySeries []Bar

// Closes returns the close column of the series.
func (h HistorySeries) Closes() []float64 {
	closes := make([]float64, len(h))
	for i, bar := range h {
		closes[i] = bar.Close
	}
	return closes
}

// Volumes returns the volume column of the series.
func (h HistorySeries) Volumes() []float64 {
	volumes := make([]float64, len(h))
	for i, bar := range h {
		volumes[i] = bar.Volume
	}
	return volumes
}

// Valid history periods accepted by History.
var validPeriods = map[string]struct{}{
	"1d": {}, "5d": {}, "1mo": {}, "3mo": {}, "6mo": {},
	"1y": {}, "2y": {}, "5y": {}, "max": {},
}

// ErrInvalidPeriod is returned for a history period outside the
// accepted set.
var ErrInvalidPeriod = errors.New("invalid history period")

// ValidPeriod reports whether period is an accepted history range.
func ValidPeriod(period string) bool {
	_, ok := validPeriods[period]
	return ok
}

// Provider is the upstream market-data source. Implementations own
// their transport concerns (timeouts, rate limits, retries); the fetch
// pipeline calls each method at most once per cache-miss symbol per
// batch and converts any error into a per-symbol error payload.
type Provider interface {
	// ExtendedQuote returns the full quote document for symbol with
	// provider-sourced fields already mapped to payload keys.
	ExtendedQuote(ctx context.Context, symbol string) (Payload, error)

	// History returns the daily OHLCV series for symbol over period,
	// oldest bar first.
	History(ctx context.Context, symbol string, period string) (HistorySeries, error)
}
