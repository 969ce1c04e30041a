package reminder

import (
	"testing"
	"time"

	"medremind/internal/schedule"
)

func testSchedule() *schedule.Schedule {
	return &schedule.Schedule{
		ID:           3,
		UserID:       7,
		MedicineName: "Amoxicillin",
		Dosage:       "500mg",
		TimeOfDayM:   8 * 60,
		StartDate:    date(2025, time.January, 1, 0, 0),
		Active:       true,
	}
}

func newTestScheduler(now time.Time) (*Scheduler, *fakeAlarm) {
	alarms := &fakeAlarm{}
	s := &Scheduler{
		Alarms: alarms,
		Log:    testLogger(),
		Now:    func() time.Time { return now },
	}
	return s, alarms
}

func TestScheduleNext_ArmsNextOccurrence(t *testing.T) {
	s, alarms := newTestScheduler(date(2025, time.January, 1, 7, 0))
	sch := testSchedule()

	if err := s.ScheduleNext(sch); err != nil {
		t.Fatalf("ScheduleNext: %v", err)
	}

	key := AlarmKey(7, 3)
	armed, ok := alarms.armed[key]
	if !ok {
		t.Fatalf("no alarm armed for %s", key)
	}
	want := date(2025, time.January, 1, 8, 0)
	if !armed.at.Equal(want) {
		t.Fatalf("armed at %v, want %v", armed.at, want)
	}
	if armed.ev.Kind != EventFire || armed.ev.UserID != 7 || armed.ev.ScheduleID != 3 {
		t.Fatalf("bad event payload: %+v", armed.ev)
	}
	if !armed.ev.PlannedTime.Equal(want) {
		t.Fatalf("payload plannedTime %v, want %v", armed.ev.PlannedTime, want)
	}
}

func TestScheduleNext_InactiveCancels(t *testing.T) {
	s, alarms := newTestScheduler(date(2025, time.January, 1, 7, 0))
	sch := testSchedule()

	if err := s.ScheduleNext(sch); err != nil {
		t.Fatalf("ScheduleNext: %v", err)
	}

	sch.Active = false
	if err := s.ScheduleNext(sch); err != nil {
		t.Fatalf("ScheduleNext (inactive): %v", err)
	}

	if len(alarms.armed) != 0 {
		t.Fatalf("alarm still pending after deactivation: %v", alarms.armed)
	}
}

func TestScheduleNext_ExhaustedCancels(t *testing.T) {
	s, alarms := newTestScheduler(date(2025, time.February, 1, 7, 0))
	sch := testSchedule()
	sch.EndDate = datePtr(2025, time.January, 10)

	if err := s.ScheduleNext(sch); err != nil {
		t.Fatalf("ScheduleNext: %v", err)
	}

	if len(alarms.armed) != 0 {
		t.Fatal("exhausted schedule must not be armed")
	}
	if len(alarms.canceled) == 0 {
		t.Fatal("exhausted schedule must cancel its alarm slot")
	}
}

func TestScheduleNext_RearmSupersedes(t *testing.T) {
	s, alarms := newTestScheduler(date(2025, time.January, 1, 7, 0))
	sch := testSchedule()

	if err := s.ScheduleNext(sch); err != nil {
		t.Fatalf("first arm: %v", err)
	}
	if err := s.ScheduleNext(sch); err != nil {
		t.Fatalf("second arm: %v", err)
	}

	if len(alarms.armed) != 1 {
		t.Fatalf("want exactly one pending alarm, got %d", len(alarms.armed))
	}
}

func TestScheduleSnooze_PreservesOccurrence(t *testing.T) {
	now := date(2025, time.January, 1, 8, 5)
	s, alarms := newTestScheduler(now)
	planned := date(2025, time.January, 1, 8, 0)

	if err := s.ScheduleSnooze(7, 3, planned, 10); err != nil {
		t.Fatalf("ScheduleSnooze: %v", err)
	}

	armed := alarms.armed[AlarmKey(7, 3)]
	if want := now.Add(10 * time.Minute); !armed.at.Equal(want) {
		t.Fatalf("armed at %v, want %v", armed.at, want)
	}
	if !armed.ev.PlannedTime.Equal(planned) {
		t.Fatalf("snooze lost the occurrence: %v", armed.ev.PlannedTime)
	}
}

func TestScheduleSnooze_MinimumOneMinute(t *testing.T) {
	now := date(2025, time.January, 1, 8, 5)
	s, alarms := newTestScheduler(now)

	if err := s.ScheduleSnooze(7, 3, now, 0); err != nil {
		t.Fatalf("ScheduleSnooze: %v", err)
	}

	armed := alarms.armed[AlarmKey(7, 3)]
	if want := now.Add(time.Minute); !armed.at.Equal(want) {
		t.Fatalf("armed at %v, want %v", armed.at, want)
	}
}
