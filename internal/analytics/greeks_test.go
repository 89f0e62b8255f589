package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreeks_ATMCall(t *testing.T) {
	g, err := Greeks(100, 100, 0.25, 0.25, 0.045, 0, Call)
	require.NoError(t, err)

	assert.Greater(t, g.Delta, 0.45, "ATM call delta should sit near 0.5")
	assert.Less(t, g.Delta, 0.65)
	assert.InDelta(t, 0.5606, g.Delta, 0.005)
	assert.Positive(t, g.Gamma)
	assert.Positive(t, g.Vega)
	assert.Negative(t, g.Theta, "time decay")
	assert.Positive(t, g.Rho)
}

func TestGreeks_ATMPut(t *testing.T) {
	g, err := Greeks(100, 100, 0.25, 0.25, 0.045, 0, Put)
	require.NoError(t, err)

	assert.Greater(t, g.Delta, -0.65)
	assert.Less(t, g.Delta, -0.35)
	assert.Positive(t, g.Gamma)
	assert.Positive(t, g.Vega)
	assert.Negative(t, g.Theta)
	assert.Negative(t, g.Rho)
}

func TestGreeks_Moneyness(t *testing.T) {
	itm, err := Greeks(110, 100, 0.25, 0.25, 0.045, 0, Call)
	require.NoError(t, err)
	assert.Greater(t, itm.Delta, 0.5, "ITM call delta above 0.5")

	otm, err := Greeks(90, 100, 0.25, 0.25, 0.045, 0, Call)
	require.NoError(t, err)
	assert.Less(t, otm.Delta, 0.5, "OTM call delta below 0.5")
}

func TestGreeks_Expired(t *testing.T) {
	tests := []struct {
		name      string
		spot      float64
		strike    float64
		typ       OptionType
		wantDelta float64
	}{
		{"ITM call", 110, 100, Call, 1.0},
		{"OTM call", 90, 100, Call, 0.0},
		{"ATM call", 100, 100, Call, 0.0},
		{"ITM put", 90, 100, Put, -1.0},
		{"OTM put", 110, 100, Put, 0.0},
		{"ATM put", 100, 100, Put, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Greeks(tt.spot, tt.strike, 0, 0.25, 0.045, 0, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDelta, g.Delta)
			assert.Zero(t, g.Gamma)
			assert.Zero(t, g.Vega)
			assert.Zero(t, g.Theta)
			assert.Zero(t, g.Rho)
		})
	}
}

func TestGreeks_ExpiredNegativeTime(t *testing.T) {
	g, err := Greeks(110, 100, -0.1, 0.25, 0.045, 0, Call)
	require.NoError(t, err)
	assert.Equal(t, 1.0, g.Delta)
	assert.Zero(t, g.Vega)
}

func TestGreeks_PutCallParity(t *testing.T) {
	call, err := Greeks(100, 100, 0.25, 0.25, 0.045, 0, Call)
	require.NoError(t, err)
	put, err := Greeks(100, 100, 0.25, 0.25, 0.045, 0, Put)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, call.Delta-put.Delta, 0.01, "delta parity")
	assert.InDelta(t, call.Gamma, put.Gamma, 0.001, "gamma identical across sides")
	assert.InDelta(t, call.Vega, put.Vega, 0.001, "vega identical across sides")
}

func TestGreeks_DividendYieldLowersCallDelta(t *testing.T) {
	plain, err := Greeks(100, 100, 0.25, 0.25, 0.045, 0, Call)
	require.NoError(t, err)
	withDiv, err := Greeks(100, 100, 0.25, 0.25, 0.045, 0.03, Call)
	require.NoError(t, err)

	assert.Less(t, withDiv.Delta, plain.Delta)
}

func TestGreeks_OutputsFinite(t *testing.T) {
	g, err := Greeks(4500, 4600, 0.04, 0.18, 0.05, 0.015, Put)
	require.NoError(t, err)

	for _, v := range []float64{g.Delta, g.Gamma, g.Vega, g.Theta, g.Rho} {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
}

func TestGreeks_InvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		call func() (GreeksResult, error)
	}{
		{"unknown type", func() (GreeksResult, error) {
			return Greeks(100, 100, 0.25, 0.25, 0.045, 0, OptionType("straddle"))
		}},
		{"nan spot", func() (GreeksResult, error) {
			return Greeks(math.NaN(), 100, 0.25, 0.25, 0.045, 0, Call)
		}},
		{"infinite strike", func() (GreeksResult, error) {
			return Greeks(100, math.Inf(1), 0.25, 0.25, 0.045, 0, Call)
		}},
		{"zero vol live contract", func() (GreeksResult, error) {
			return Greeks(100, 100, 0.25, 0, 0.045, 0, Call)
		}},
		{"negative spot live contract", func() (GreeksResult, error) {
			return Greeks(-100, 100, 0.25, 0.25, 0.045, 0, Put)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.call()
			require.Error(t, err)
		})
	}
}
