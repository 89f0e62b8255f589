package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)
	return loc
}

func TestClock_IsOpen(t *testing.T) {
	clock, err := NewClock(DefaultTimezone)
	require.NoError(t, err)
	loc := mustLoc(t)

	tests := []struct {
		name string
		now  time.Time
		open bool
	}{
		{
			name: "midday weekday",
			now:  time.Date(2025, 3, 12, 12, 0, 0, 0, loc), // Wednesday
			open: true,
		},
		{
			name: "exactly at open",
			now:  time.Date(2025, 3, 12, 9, 30, 0, 0, loc),
			open: true,
		},
		{
			name: "minute before open",
			now:  time.Date(2025, 3, 12, 9, 29, 0, 0, loc),
			open: false,
		},
		{
			name: "exactly at close",
			now:  time.Date(2025, 3, 12, 16, 0, 0, 0, loc),
			open: false,
		},
		{
			name: "saturday midday",
			now:  time.Date(2025, 3, 15, 12, 0, 0, 0, loc),
			open: false,
		},
		{
			name: "sunday midday",
			now:  time.Date(2025, 3, 16, 12, 0, 0, 0, loc),
			open: false,
		},
		{
			name: "weekday evening",
			now:  time.Date(2025, 3, 12, 19, 45, 0, 0, loc),
			open: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.open, clock.IsOpen(tt.now))
		})
	}
}

func TestClock_IsOpen_ConvertsZone(t *testing.T) {
	clock := MustClock(DefaultTimezone)

	// 17:00 UTC on a Wednesday is 13:00 in New York (EDT): open.
	now := time.Date(2025, 3, 12, 17, 0, 0, 0, time.UTC)
	assert.True(t, clock.IsOpen(now))
}

func TestClock_NextOpen(t *testing.T) {
	clock := MustClock(DefaultTimezone)
	loc := mustLoc(t)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before open same day",
			now:  time.Date(2025, 3, 12, 8, 0, 0, 0, loc), // Wednesday
			want: time.Date(2025, 3, 12, 9, 30, 0, 0, loc),
		},
		{
			name: "at open rolls to next day",
			now:  time.Date(2025, 3, 12, 9, 30, 0, 0, loc),
			want: time.Date(2025, 3, 13, 9, 30, 0, 0, loc),
		},
		{
			name: "after close rolls to next day",
			now:  time.Date(2025, 3, 12, 17, 0, 0, 0, loc),
			want: time.Date(2025, 3, 13, 9, 30, 0, 0, loc),
		},
		{
			name: "friday evening rolls to monday",
			now:  time.Date(2025, 3, 14, 18, 0, 0, 0, loc),
			want: time.Date(2025, 3, 17, 9, 30, 0, 0, loc),
		},
		{
			name: "saturday morning rolls to monday",
			now:  time.Date(2025, 3, 15, 6, 0, 0, 0, loc),
			want: time.Date(2025, 3, 17, 9, 30, 0, 0, loc),
		},
		{
			name: "saturday night rolls to monday",
			now:  time.Date(2025, 3, 15, 23, 59, 0, 0, loc),
			want: time.Date(2025, 3, 17, 9, 30, 0, 0, loc),
		},
		{
			name: "sunday rolls to monday",
			now:  time.Date(2025, 3, 16, 12, 0, 0, 0, loc),
			want: time.Date(2025, 3, 17, 9, 30, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clock.NextOpen(tt.now)
			assert.True(t, tt.want.Equal(got), "NextOpen = %v, want %v", got, tt.want)
		})
	}
}

func TestClock_SessionBounds(t *testing.T) {
	clock := MustClock(DefaultTimezone)
	loc := mustLoc(t)

	now := time.Date(2025, 3, 12, 11, 15, 0, 0, loc)
	open, close := clock.SessionBounds(now)

	assert.Equal(t, time.Date(2025, 3, 12, 9, 30, 0, 0, loc), open)
	assert.Equal(t, time.Date(2025, 3, 12, 16, 0, 0, 0, loc), close)
}

func TestNewClock_UnknownZone(t *testing.T) {
	_, err := NewClock("Not/AZone")
	require.Error(t, err)
}
