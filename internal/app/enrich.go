package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/bxxd/mcp-yfinance-ux/internal/analytics"
	"github.com/bxxd/mcp-yfinance-ux/internal/market"
	"github.com/bxxd/mcp-yfinance-ux/internal/marketdata"
)

// historyPeriod covers the longest momentum horizon (one year).
const historyPeriod = "1y"

// enrichBoard resolves the slim board payload: quote fields plus
// relative volume and the month/year momentum pair. History is best
// effort; a quote without momentum still ships.
func (s *Service) enrichBoard(ctx context.Context, symbol string) (marketdata.Payload, error) {
	payload, err := s.provider.ExtendedQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	s.attachRelVolume(payload, symbol)

	history, err := s.provider.History(ctx, symbol, historyPeriod)
	if err != nil {
		log.Debug().Str("symbol", symbol).Err(err).Msg("board history unavailable")
		return payload, nil
	}

	closes := history.Closes()
	if v, ok := analytics.Momentum(closes, analytics.HorizonMonth); ok {
		payload["momentum_1m"] = v
	}
	if v, ok := analytics.Momentum(closes, analytics.HorizonYear); ok {
		payload["momentum_1y"] = v
	}

	return payload, nil
}

// enrichTicker resolves the full screen payload: everything the board
// carries plus the week horizon, RSI, volume momentum, and the
// volatility decomposition against the benchmark index.
func (s *Service) enrichTicker(ctx context.Context, symbol string) (marketdata.Payload, error) {
	payload, err := s.provider.ExtendedQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	s.attachRelVolume(payload, symbol)

	history, err := s.provider.History(ctx, symbol, historyPeriod)
	if err != nil {
		log.Debug().Str("symbol", symbol).Err(err).Msg("ticker history unavailable")
		return payload, nil
	}

	closes := history.Closes()
	if v, ok := analytics.Momentum(closes, analytics.HorizonWeek); ok {
		payload["momentum_1w"] = v
	}
	if v, ok := analytics.Momentum(closes, analytics.HorizonMonth); ok {
		payload["momentum_1m"] = v
	}
	if v, ok := analytics.Momentum(closes, analytics.HorizonYear); ok {
		payload["momentum_1y"] = v
	}
	if v, ok := analytics.RSI(closes, analytics.DefaultRSIPeriod); ok {
		payload["rsi"] = v
	}
	// Volume momentum is the week-horizon percentage change applied to
	// the volume column: positive when trading activity is picking up
	// against last week, regardless of the longer rel_volume baseline.
	if v, ok := analytics.Momentum(history.Volumes(), analytics.HorizonWeek); ok {
		payload["vol_momentum_1w"] = v
	}

	s.attachVolatility(ctx, payload, symbol, closes)

	return payload, nil
}

// attachRelVolume adds rel_volume when the payload carries both the
// partial volume and an average baseline. Futures extrapolate from the
// daily settlement cycle, session symbols from the elapsed session
// fraction, and crypto uses the raw ratio (no session to pace by).
func (s *Service) attachRelVolume(payload marketdata.Payload, symbol string) {
	volume, okV := payload.Float("volume")
	avgVolume, okA := payload.Float("avg_volume")
	if !okV || !okA {
		return
	}

	now := s.now()
	switch s.classifier.Classify(symbol) {
	case market.Futures:
		if rv, ok := analytics.RelativeVolumeContinuous(volume, avgVolume, now, s.clock.Location()); ok {
			payload["rel_volume"] = rv
		}
	case market.Crypto:
		if avgVolume > 0 && volume >= 0 {
			payload["rel_volume"] = volume / avgVolume
		}
	default:
		local := now.In(s.clock.Location())
		open, close := s.clock.SessionBounds(local)
		if rv, ok := analytics.RelativeVolumeSession(volume, avgVolume, local, open, close, s.clock.IsOpen(now)); ok {
			payload["rel_volume"] = rv
		}
	}
}

// attachVolatility decomposes the symbol's return volatility against
// the benchmark index. The benchmark series comes through the provider
// uncached; when it is the symbol itself, total vol doubles as the
// decomposition.
func (s *Service) attachVolatility(ctx context.Context, payload marketdata.Payload, symbol string, closes []float64) {
	returns := analytics.Returns(closes)

	benchmark := returns
	if symbol != BenchmarkSymbol {
		benchHistory, err := s.provider.History(ctx, BenchmarkSymbol, historyPeriod)
		if err != nil {
			log.Debug().Str("symbol", symbol).Err(err).Msg("benchmark history unavailable")
			return
		}
		benchmark = analytics.Returns(benchHistory.Closes())
	}

	if vol, ok := analytics.IdioVol(returns, benchmark); ok {
		payload["idio_vol"] = vol.IdioVol
		payload["total_vol"] = vol.TotalVol
	}
}
