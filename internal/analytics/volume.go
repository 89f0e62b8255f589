package analytics

import "time"

// Extrapolation floors: below these session fractions the partial
// volume is too small to project a full-day figure from.
const (
	sessionExtrapolationFloor    = 0.10
	continuousExtrapolationFloor = 0.05
)

// SettlementHour is the daily settlement time for futures in the
// exchange's local zone.
const SettlementHour = 18

// RelativeVolumeSession computes relative volume for a session-bound
// symbol. While the session is open, today's partial volume is
// projected to a full-day figure once enough of the session has
// elapsed to make the projection safe; earlier than that, and after
// hours, the raw ratio is used. Reports false when volume is negative
// or the average baseline is missing.
func RelativeVolumeSession(volume, avgVolume float64, now, open, close time.Time, sessionOpen bool) (float64, bool) {
	if volume < 0 || avgVolume <= 0 {
		return 0, false
	}

	if !sessionOpen || !now.After(open) || !close.After(open) {
		return volume / avgVolume, true
	}

	f := clamp(now.Sub(open).Seconds()/close.Sub(open).Seconds(), 0, 1)
	if f > sessionExtrapolationFloor {
		return (volume / f) / avgVolume, true
	}
	return volume / avgVolume, true
}

// RelativeVolumeContinuous computes relative volume for a futures
// symbol, whose volume accumulates from the daily 18:00 settlement.
// The elapsed fraction of the 24h cycle since the last settlement
// drives the same extrapolation, with a lower floor since the cycle
// never pauses.
func RelativeVolumeContinuous(volume, avgVolume float64, now time.Time, loc *time.Location) (float64, bool) {
	if volume < 0 || avgVolume <= 0 {
		return 0, false
	}

	local := now.In(loc)
	settlement := time.Date(local.Year(), local.Month(), local.Day(),
		SettlementHour, 0, 0, 0, loc)
	if local.Before(settlement) {
		settlement = settlement.AddDate(0, 0, -1)
	}

	f := clamp(local.Sub(settlement).Hours()/24, 0, 1)
	if f > continuousExtrapolationFloor {
		return (volume / f) / avgVolume, true
	}
	return volume / avgVolume, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
