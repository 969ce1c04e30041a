package reminder

import "time"

const minutesPerDay = 24 * 60

// MinuteOfDay returns t's wall-clock position as minutes from midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// InQuietHours reports whether nowM falls inside the do-not-disturb window.
// Both bounds absent or a zero-width window mean no suppression. A window
// with startM > endM wraps past midnight.
func InQuietHours(startM, endM *int, nowM int) bool {
	if startM == nil || endM == nil {
		return false
	}
	s, e := *startM, *endM
	if s <= e {
		return nowM >= s && nowM < e
	}
	return nowM >= s || nowM < e
}

// MinutesUntilQuietEnd returns how many minutes remain until the quiet window
// ends, clamped to at least 1 so a rescheduled alarm always moves forward.
// With no window configured it returns fallback.
func MinutesUntilQuietEnd(startM, endM *int, nowM, fallback int) int {
	if startM == nil || endM == nil {
		return fallback
	}
	s, e := *startM, *endM

	var m int
	if s <= e {
		m = e - nowM
	} else if nowM >= s {
		// evening segment: ride out the rest of the day, then to the end
		m = (minutesPerDay - nowM) + e
	} else {
		// morning segment, already past midnight
		m = e - nowM
	}

	if m < 1 {
		m = 1
	}
	return m
}
