package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMomentum(t *testing.T) {
	closes := []float64{100, 102, 101, 103, 104, 110}

	got, ok := Momentum(closes, HorizonWeek)
	require.True(t, ok)
	assert.InDelta(t, 10.0, got, 1e-9, "110 vs 100 five observations back")
}

func TestMomentum_Negative(t *testing.T) {
	closes := []float64{200, 198, 195, 190, 185, 180}

	got, ok := Momentum(closes, HorizonWeek)
	require.True(t, ok)
	assert.InDelta(t, -10.0, got, 1e-9)
}

func TestMomentum_InsufficientHistory(t *testing.T) {
	closes := []float64{100, 102, 101, 103, 104}

	_, ok := Momentum(closes, HorizonWeek)
	assert.False(t, ok, "needs horizon+1 observations")

	_, ok = Momentum(nil, HorizonMonth)
	assert.False(t, ok)
}

func TestMomentum_ZeroBase(t *testing.T) {
	closes := []float64{0, 1, 2, 3, 4, 5}

	_, ok := Momentum(closes, HorizonWeek)
	assert.False(t, ok)
}

func TestMomentum_BadHorizon(t *testing.T) {
	closes := []float64{100, 101, 102}

	_, ok := Momentum(closes, 0)
	assert.False(t, ok)

	_, ok = Momentum(closes, -5)
	assert.False(t, ok)
}

func TestMomentum_YearHorizon(t *testing.T) {
	closes := make([]float64, HorizonYear+1)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.1
	}

	got, ok := Momentum(closes, HorizonYear)
	require.True(t, ok)
	assert.InDelta(t, 25.2, got, 1e-9)
}
