package reminder

import (
	"context"
	"time"

	"medremind/internal/adherence"
	"medremind/internal/prefs"
	"medremind/internal/schedule"
)

// AlarmPort is the one-shot wake-up service. Arming a key supersedes any
// pending alarm for that key; cancelling a missing or already-fired alarm is
// a no-op.
type AlarmPort interface {
	Arm(key string, at time.Time, ev Event) error
	Cancel(key string) error
}

// DelayedJobPort is the durable follow-up queue. EnqueueUnique replaces any
// existing job with the same name; delivery is at-least-once, not before the
// delay elapses.
type DelayedJobPort interface {
	EnqueueUnique(ctx context.Context, name string, delay time.Duration, tag string, ref OccurrenceRef) error
	CancelByName(ctx context.Context, name string) error
	CancelByTag(ctx context.Context, tag string) error
}

// Notification is an actionable reminder alert. The presentation layer offers
// Taken / Skip / Snooze responses for it.
type Notification struct {
	OccurrenceID string
	UserID       uint64
	ScheduleID   uint64
	PlannedTime  time.Time
	Title        string
	Body         string
	Vibrate      bool
	RingtoneRef  *string
}

// Presenter shows and dismisses user-visible alerts. A Show failure means
// "could not notify" and never blocks the state machine.
type Presenter interface {
	Show(ctx context.Context, n Notification) error
	Dismiss(ctx context.Context, occurrenceID string) error
}

// ScheduleStore is the slice of the schedule repository the core reads.
type ScheduleStore interface {
	GetByID(ctx context.Context, userID, scheduleID uint64) (*schedule.Schedule, error)
	ListActive(ctx context.Context, asOf time.Time) ([]schedule.Schedule, error)
}

// AdherenceStore records dose outcomes. InsertIfAbsent never overwrites;
// Replace always wins.
type AdherenceStore interface {
	InsertIfAbsent(ctx context.Context, l *adherence.Log) error
	Replace(ctx context.Context, l *adherence.Log) error
}

// PreferenceStore exposes per-user notification settings.
type PreferenceStore interface {
	GetOrDefault(ctx context.Context, userID uint64) (prefs.Preference, error)
}
