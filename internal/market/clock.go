package market

import (
	"fmt"
	"time"
)

// Regular session bounds in the exchange's local time zone.
const (
	SessionOpenHour    = 9
	SessionOpenMinute  = 30
	SessionCloseHour   = 16
	SessionCloseMinute = 0
)

// DefaultTimezone is the exchange time zone for US equities.
const DefaultTimezone = "America/New_York"

// Clock answers session-calendar questions for a single exchange:
// whether the regular session is open at an instant, when the next
// session opens, and today's session bounds.
type Clock struct {
	loc *time.Location
}

// NewClock creates a clock for the named IANA time zone.
func NewClock(timezone string) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load market timezone %q: %w", timezone, err)
	}
	return &Clock{loc: loc}, nil
}

// MustClock is NewClock for compiled-in zone names.
func MustClock(timezone string) *Clock {
	clock, err := NewClock(timezone)
	if err != nil {
		panic(err)
	}
	return clock
}

// Location returns the exchange time zone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// IsOpen reports whether the regular session is open at now.
// Regular hours are 09:30-16:00 local on weekdays; holidays are not modeled.
func (c *Clock) IsOpen(now time.Time) bool {
	local := now.In(c.loc)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	open, close := c.SessionBounds(local)
	return !local.Before(open) && local.Before(close)
}

// SessionBounds returns the open and close instants of the session on
// now's calendar day, regardless of whether that day is a trading day.
func (c *Clock) SessionBounds(now time.Time) (open, close time.Time) {
	local := now.In(c.loc)
	open = time.Date(local.Year(), local.Month(), local.Day(),
		SessionOpenHour, SessionOpenMinute, 0, 0, c.loc)
	close = time.Date(local.Year(), local.Month(), local.Day(),
		SessionCloseHour, SessionCloseMinute, 0, 0, c.loc)
	return open, close
}

// NextOpen returns the next session-open instant strictly after now's
// 09:30 candidate. The candidate starts at today's 09:30 local; if now
// is at or past it, the candidate advances a day, then skips weekend
// days. Recomputed on every call since now keeps moving.
func (c *Clock) NextOpen(now time.Time) time.Time {
	local := now.In(c.loc)

	next := time.Date(local.Year(), local.Month(), local.Day(),
		SessionOpenHour, SessionOpenMinute, 0, 0, c.loc)

	if !local.Before(next) {
		next = next.AddDate(0, 0, 1)
	}

	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}

	return next
}
