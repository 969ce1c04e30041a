package reminder

import (
	"time"

	"go.uber.org/zap"

	"medremind/internal/schedule"
)

// Scheduler programs the alarm port. All arming is idempotent per key:
// scheduling supersedes, never stacks.
type Scheduler struct {
	Alarms AlarmPort
	Log    *zap.Logger
	Now    func() time.Time // nil means time.Now
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ScheduleNext arms the alarm for the schedule's next occurrence. An inactive
// or exhausted schedule gets its pending alarm cancelled instead.
func (s *Scheduler) ScheduleNext(sch *schedule.Schedule) error {
	if !sch.Active {
		s.Cancel(sch.UserID, sch.ID)
		return nil
	}

	next, ok := NextOccurrence(s.now(), sch.StartDate, sch.EndDate, sch.TimeOfDayM)
	if !ok {
		s.Cancel(sch.UserID, sch.ID)
		return nil
	}

	ev := Event{
		Kind:        EventFire,
		UserID:      sch.UserID,
		ScheduleID:  sch.ID,
		PlannedTime: next,
	}
	return s.Alarms.Arm(AlarmKey(sch.UserID, sch.ID), next, ev)
}

// ScheduleSnooze re-arms the schedule's alarm for now+minutes, carrying the
// original plannedTime so the deferred reminder still resolves the same
// occurrence. Minimum deferral is one minute.
func (s *Scheduler) ScheduleSnooze(userID, scheduleID uint64, plannedTime time.Time, minutes int) error {
	if minutes < 1 {
		minutes = 1
	}
	at := s.now().Add(time.Duration(minutes) * time.Minute)

	ev := Event{
		Kind:        EventFire,
		UserID:      userID,
		ScheduleID:  scheduleID,
		PlannedTime: plannedTime,
	}
	return s.Alarms.Arm(AlarmKey(userID, scheduleID), at, ev)
}

// Cancel drops the pending alarm for a schedule, if any. Cancelling an alarm
// that already fired or never existed is not a failure.
func (s *Scheduler) Cancel(userID, scheduleID uint64) {
	if err := s.Alarms.Cancel(AlarmKey(userID, scheduleID)); err != nil {
		s.Log.Debug("alarm cancel ignored",
			zap.Uint64("userID", userID),
			zap.Uint64("scheduleID", scheduleID),
			zap.Error(err),
		)
	}
}
