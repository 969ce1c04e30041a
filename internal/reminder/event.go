package reminder

import "time"

// Kind is the reminder event discriminator.
type Kind string

const (
	EventFire    Kind = "FIRE"
	EventTaken   Kind = "TAKEN"
	EventSkipped Kind = "SKIPPED"
	EventSnooze  Kind = "SNOOZE"
)

// Event is one delivery on the reminder channel: an alarm firing or a user
// response to a shown reminder. PlannedTime identifies the occurrence the
// event is about.
type Event struct {
	Kind        Kind      `json:"kind"`
	UserID      uint64    `json:"user_id"`
	ScheduleID  uint64    `json:"schedule_id"`
	PlannedTime time.Time `json:"planned_time"`
}

// OccurrenceRef is the payload of a missed-dose job: exactly one expected
// dose-taking event.
type OccurrenceRef struct {
	UserID      uint64    `json:"user_id"`
	ScheduleID  uint64    `json:"schedule_id"`
	PlannedTime time.Time `json:"planned_time"`
}
