package analytics

import (
	"fmt"
	"math"
)

// OptionType selects the contract side for a greeks calculation.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// GreeksResult holds Black-Scholes sensitivities. Vega is per
// one-point change in vol, theta is per calendar day, rho per
// one-point change in rates.
type GreeksResult struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// Greeks computes European Black-Scholes greeks.
//
// Expired contracts (timeToExpiry <= 0) reduce to their exercise
// state: delta is +-1 in the money and 0 otherwise, and the remaining
// greeks are zero. Live contracts require positive spot, strike, and
// volatility; rates and dividend yield are annualized decimals.
func Greeks(spot, strike, timeToExpiry, volatility, riskFreeRate, dividendYield float64, optionType OptionType) (GreeksResult, error) {
	if optionType != Call && optionType != Put {
		return GreeksResult{}, fmt.Errorf("unknown option type %q", optionType)
	}
	for name, v := range map[string]float64{
		"spot": spot, "strike": strike, "time_to_expiry": timeToExpiry,
		"volatility": volatility, "risk_free_rate": riskFreeRate, "dividend_yield": dividendYield,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return GreeksResult{}, fmt.Errorf("%s must be finite", name)
		}
	}

	if timeToExpiry <= 0 {
		var delta float64
		if optionType == Call && spot > strike {
			delta = 1.0
		} else if optionType == Put && spot < strike {
			delta = -1.0
		}
		return GreeksResult{Delta: delta}, nil
	}

	if spot <= 0 || strike <= 0 {
		return GreeksResult{}, fmt.Errorf("spot and strike must be positive, got %g and %g", spot, strike)
	}
	if volatility <= 0 {
		return GreeksResult{}, fmt.Errorf("volatility must be positive, got %g", volatility)
	}

	sqrtT := math.Sqrt(timeToExpiry)
	d1 := (math.Log(spot/strike) + (riskFreeRate-dividendYield+0.5*volatility*volatility)*timeToExpiry) /
		(volatility * sqrtT)
	d2 := d1 - volatility*sqrtT

	divDiscount := math.Exp(-dividendYield * timeToExpiry)
	rateDiscount := math.Exp(-riskFreeRate * timeToExpiry)

	var delta, theta, rho float64
	if optionType == Call {
		delta = divDiscount * normCDF(d1)
		rho = strike * timeToExpiry * rateDiscount * normCDF(d2) / 100
		theta = (-spot*normPDF(d1)*volatility*divDiscount/(2*sqrtT) -
			riskFreeRate*strike*rateDiscount*normCDF(d2) +
			dividendYield*spot*divDiscount*normCDF(d1)) / 365
	} else {
		delta = -divDiscount * normCDF(-d1)
		rho = -strike * timeToExpiry * rateDiscount * normCDF(-d2) / 100
		theta = (-spot*normPDF(d1)*volatility*divDiscount/(2*sqrtT) +
			riskFreeRate*strike*rateDiscount*normCDF(-d2) -
			dividendYield*spot*divDiscount*normCDF(-d1)) / 365
	}

	gamma := divDiscount * normPDF(d1) / (spot * volatility * sqrtT)
	vega := spot * divDiscount * normPDF(d1) * sqrtT / 100

	return GreeksResult{
		Delta: delta,
		Gamma: gamma,
		Vega:  vega,
		Theta: theta,
		Rho:   rho,
	}, nil
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
