package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSI_WilderSmoothing(t *testing.T) {
	// Seed averages over the first three changes (+1, +1, -1), then one
	// smoothed step on the final +1: avgGain 0.7778, avgLoss 0.2222.
	closes := []float64{10, 11, 12, 11, 12}

	got, ok := RSI(closes, 3)
	require.True(t, ok)
	assert.InDelta(t, 77.7778, got, 0.001)
}

func TestRSI_NoLossesReadsHundred(t *testing.T) {
	up := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25}
	got, ok := RSI(up, DefaultRSIPeriod)
	require.True(t, ok)
	assert.Equal(t, 100.0, got)

	flat := make([]float64, 16)
	for i := range flat {
		flat[i] = 50
	}
	got, ok = RSI(flat, DefaultRSIPeriod)
	require.True(t, ok)
	assert.Equal(t, 100.0, got)
}

func TestRSI_AllLosses(t *testing.T) {
	down := []float64{25, 24, 23, 22, 21, 20, 19, 18, 17, 16, 15, 14, 13, 12, 11, 10}

	got, ok := RSI(down, DefaultRSIPeriod)
	require.True(t, ok)
	assert.InDelta(t, 0.0, got, 1e-9)
}

func TestRSI_Bounds(t *testing.T) {
	closes := []float64{44, 44.5, 43.8, 44.2, 45.1, 44.9, 45.6, 46.0, 45.2, 45.8,
		46.3, 46.1, 46.8, 47.2, 46.9, 47.5, 47.1, 47.8, 48.0, 47.6}

	got, ok := RSI(closes, DefaultRSIPeriod)
	require.True(t, ok)
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 100.0)
	assert.Greater(t, got, 50.0, "uptrend should read above the midline")
}

func TestRSI_InsufficientHistory(t *testing.T) {
	closes := []float64{10, 11, 12, 13, 14}

	_, ok := RSI(closes, DefaultRSIPeriod)
	assert.False(t, ok, "needs period+1 closes")

	_, ok = RSI(nil, DefaultRSIPeriod)
	assert.False(t, ok)
}

func TestRSI_BadPeriod(t *testing.T) {
	closes := []float64{10, 11, 12}

	_, ok := RSI(closes, 0)
	assert.False(t, ok)

	_, ok = RSI(closes, -1)
	assert.False(t, ok)
}
