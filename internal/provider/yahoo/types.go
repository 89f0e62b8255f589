package yahoo

import (
	"time"

	"github.com/bxxd/mcp-yfinance-ux/internal/marketdata"
)

// wrapped is Yahoo's {"raw": 1.23, "fmt": "1.23"} number envelope.
// Raw stays nil when the field is absent or null upstream.
type wrapped struct {
	Raw *float64 `json:"raw"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *apiError            `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price struct {
		LongName                   string  `json:"longName"`
		ShortName                  string  `json:"shortName"`
		RegularMarketPrice         wrapped `json:"regularMarketPrice"`
		RegularMarketChange        wrapped `json:"regularMarketChange"`
		RegularMarketChangePercent wrapped `json:"regularMarketChangePercent"`
		RegularMarketPreviousClose wrapped `json:"regularMarketPreviousClose"`
		RegularMarketVolume        wrapped `json:"regularMarketVolume"`
		MarketCap                  wrapped `json:"marketCap"`
	} `json:"price"`
	SummaryDetail struct {
		AverageVolume        wrapped `json:"averageVolume"`
		Beta                 wrapped `json:"beta"`
		TrailingPE           wrapped `json:"trailingPE"`
		ForwardPE            wrapped `json:"forwardPE"`
		DividendYield        wrapped `json:"dividendYield"`
		FiftyDayAverage      wrapped `json:"fiftyDayAverage"`
		TwoHundredDayAverage wrapped `json:"twoHundredDayAverage"`
		FiftyTwoWeekHigh     wrapped `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow      wrapped `json:"fiftyTwoWeekLow"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		ShortPercentOfFloat wrapped `json:"shortPercentOfFloat"`
		ShortRatio          wrapped `json:"shortRatio"`
	} `json:"defaultKeyStatistics"`
}

// toPayload maps the quote-summary modules onto payload keys. Absent
// upstream fields simply do not appear in the payload.
func (r quoteSummaryResult) toPayload(symbol string) marketdata.Payload {
	payload := marketdata.Payload{"symbol": symbol}

	name := r.Price.LongName
	if name == "" {
		name = r.Price.ShortName
	}
	if name == "" {
		name = symbol
	}
	payload["name"] = name

	putFloat(payload, "price", r.Price.RegularMarketPrice)
	putFloat(payload, "change", r.Price.RegularMarketChange)
	putFloat(payload, "volume", r.Price.RegularMarketVolume)
	putFloat(payload, "market_cap", r.Price.MarketCap)
	putFloat(payload, "avg_volume", r.SummaryDetail.AverageVolume)
	putFloat(payload, "beta_spx", r.SummaryDetail.Beta)
	putFloat(payload, "trailing_pe", r.SummaryDetail.TrailingPE)
	putFloat(payload, "forward_pe", r.SummaryDetail.ForwardPE)
	putFloat(payload, "dividend_yield", r.SummaryDetail.DividendYield)
	putFloat(payload, "fifty_day_avg", r.SummaryDetail.FiftyDayAverage)
	putFloat(payload, "two_hundred_day_avg", r.SummaryDetail.TwoHundredDayAverage)
	putFloat(payload, "fifty_two_week_high", r.SummaryDetail.FiftyTwoWeekHigh)
	putFloat(payload, "fifty_two_week_low", r.SummaryDetail.FiftyTwoWeekLow)
	putFloat(payload, "short_pct_float", r.DefaultKeyStatistics.ShortPercentOfFloat)
	putFloat(payload, "short_ratio", r.DefaultKeyStatistics.ShortRatio)

	// Futures settle against the 18:00 reference, where the quote
	// block's change percent is the trustworthy figure. For session
	// symbols the quote block may lag, so fall back to the
	// previous-close delta when the percent is missing.
	if r.Price.RegularMarketChangePercent.Raw != nil {
		payload["change_percent"] = *r.Price.RegularMarketChangePercent.Raw
	} else if price, prev := r.Price.RegularMarketPrice.Raw, r.Price.RegularMarketPreviousClose.Raw; price != nil && prev != nil && *prev != 0 {
		payload["change_percent"] = (*price - *prev) / *prev * 100
	}

	return payload
}

func putFloat(payload marketdata.Payload, key string, w wrapped) {
	if w.Raw != nil {
		payload[key] = *w.Raw
	}
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// toSeries converts the chart columns into bars, skipping rows with a
// null close (untraded days on some venues).
func (r chartResult) toSeries() marketdata.HistorySeries {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	quote := r.Indicators.Quote[0]

	series := make(marketdata.HistorySeries, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		bar := marketdata.Bar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			bar.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			bar.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			bar.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		series = append(series, bar)
	}
	return series
}
