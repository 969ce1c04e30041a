package reminder

import "time"

// NextOccurrence computes the next due time for a once-daily schedule, given
// an injected now. It returns false when the schedule is exhausted: the end
// date (inclusive, evaluated at the schedule's time of day) lies before the
// candidate.
//
// Before the start date the first occurrence is startDate at timeOfDayM.
// Otherwise the candidate is today at timeOfDayM if that is still ahead,
// else tomorrow.
func NextOccurrence(now time.Time, startDate time.Time, endDate *time.Time, timeOfDayM int) (time.Time, bool) {
	startCandidate := atMinute(startDate, timeOfDayM, now.Location())

	var candidate time.Time
	if now.Before(startCandidate) {
		candidate = startCandidate
	} else {
		today := atMinute(now, timeOfDayM, now.Location())
		if now.Before(today) {
			candidate = today
		} else {
			candidate = today.AddDate(0, 0, 1)
		}
	}

	if endDate != nil {
		endLimit := atMinute(*endDate, timeOfDayM, now.Location())
		if candidate.After(endLimit) {
			return time.Time{}, false
		}
	}

	return candidate, true
}

// atMinute combines a date with a minutes-from-midnight wall-clock value.
func atMinute(day time.Time, minutes int, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, loc)
}
