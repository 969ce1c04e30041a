package reminder

import (
	"fmt"
	"time"
)

// Derived identifiers for alarms, missed-dose jobs and notifications.
// They must be deterministic: re-arming and cancelling both rely on
// recomputing the same key from the same identity.

// AlarmKey names the single pending alarm slot of a schedule.
func AlarmKey(userID, scheduleID uint64) string {
	return fmt.Sprintf("remind_%d_%d", userID, scheduleID)
}

// MissedJobName is unique per occurrence, so a new occurrence never collides
// with a stale pending job.
func MissedJobName(userID, scheduleID uint64, plannedTime time.Time) string {
	return fmt.Sprintf("missed_%d_%d_%d", userID, scheduleID, plannedTime.UnixMilli())
}

// MissedJobTag groups every missed-dose job of a schedule, for bulk
// cancellation on deactivation or deletion.
func MissedJobTag(userID, scheduleID uint64) string {
	return fmt.Sprintf("missed_tag_%d_%d", userID, scheduleID)
}

// OccurrenceID identifies the visible notification for one occurrence.
func OccurrenceID(scheduleID uint64, plannedTime time.Time) string {
	return fmt.Sprintf("occ_%d_%d", scheduleID, plannedTime.UnixMilli())
}
