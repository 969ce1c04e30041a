package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"medremind/internal/adherence"
	"medremind/internal/schedule"
)

type resolverFixture struct {
	r         *MissedDoseResolver
	alarms    *fakeAlarm
	schedules *fakeSchedules
	adh       *fakeAdherence
}

func newResolverFixture(now time.Time) *resolverFixture {
	sch := testSchedule()
	f := &resolverFixture{
		alarms:    &fakeAlarm{},
		schedules: &fakeSchedules{byID: map[uint64]*schedule.Schedule{sch.ID: sch}},
		adh:       &fakeAdherence{},
	}
	f.r = &MissedDoseResolver{
		Schedules: f.schedules,
		Adherence: f.adh,
		Scheduler: &Scheduler{
			Alarms: f.alarms,
			Log:    testLogger(),
			Now:    func() time.Time { return now },
		},
		Log: testLogger(),
		Now: func() time.Time { return now },
	}
	return f
}

func testRef(planned time.Time) OccurrenceRef {
	return OccurrenceRef{UserID: 7, ScheduleID: 3, PlannedTime: planned}
}

func TestResolve_RecordsMissAndRearms(t *testing.T) {
	now := date(2025, time.January, 1, 8, 30)
	planned := date(2025, time.January, 1, 8, 0)
	f := newResolverFixture(now)

	if err := f.r.Resolve(context.Background(), testRef(planned)); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	l := f.adh.logs[occKey(7, 3, planned)]
	if l == nil || l.Status != adherence.StatusMissed {
		t.Fatalf("want MISSED record, got %+v", l)
	}

	armed, ok := f.alarms.armed[AlarmKey(7, 3)]
	if !ok {
		t.Fatal("schedule must be re-armed")
	}
	if want := date(2025, time.January, 2, 8, 0); !armed.at.Equal(want) {
		t.Fatalf("re-armed at %v, want %v", armed.at, want)
	}
}

func TestResolve_IdempotentUnderRedelivery(t *testing.T) {
	now := date(2025, time.January, 1, 8, 30)
	planned := date(2025, time.January, 1, 8, 0)
	f := newResolverFixture(now)

	if err := f.r.Resolve(context.Background(), testRef(planned)); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if err := f.r.Resolve(context.Background(), testRef(planned)); err != nil {
		t.Fatalf("second Resolve: %v", err)
	}

	if len(f.adh.logs) != 1 {
		t.Fatalf("want exactly one record, got %d", len(f.adh.logs))
	}
	if f.adh.logs[occKey(7, 3, planned)].Status != adherence.StatusMissed {
		t.Fatal("record must stay MISSED")
	}
}

func TestResolve_NeverOverwritesUserResponse(t *testing.T) {
	now := date(2025, time.January, 1, 8, 30)
	planned := date(2025, time.January, 1, 8, 0)
	f := newResolverFixture(now)

	taken := now
	if err := f.adh.Replace(context.Background(), &adherence.Log{
		UserID: 7, ScheduleID: 3, PlannedTime: planned,
		Status: adherence.StatusTaken, TakenTime: &taken,
	}); err != nil {
		t.Fatalf("seed taken: %v", err)
	}

	if err := f.r.Resolve(context.Background(), testRef(planned)); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if got := f.adh.logs[occKey(7, 3, planned)].Status; got != adherence.StatusTaken {
		t.Fatalf("insert-if-absent overwrote a response: %q", got)
	}
}

func TestResolve_MalformedJobFailsPermanently(t *testing.T) {
	f := newResolverFixture(date(2025, time.January, 1, 8, 30))

	cases := []OccurrenceRef{
		{},
		{UserID: 7},
		{UserID: 7, ScheduleID: 3},
		{ScheduleID: 3, PlannedTime: date(2025, time.January, 1, 8, 0)},
	}
	for _, ref := range cases {
		if err := f.r.Resolve(context.Background(), ref); !errors.Is(err, ErrBadJob) {
			t.Fatalf("ref %+v: want ErrBadJob, got %v", ref, err)
		}
	}
	if len(f.adh.logs) != 0 {
		t.Fatal("malformed job must not write")
	}
}

func TestResolve_ScheduleGoneCancelsAndSucceeds(t *testing.T) {
	now := date(2025, time.January, 1, 8, 30)
	f := newResolverFixture(now)
	delete(f.schedules.byID, 3)
	// Ownership follows the schedule; its removal makes the write a no-op.
	f.adh.ownedByUID = 99

	if err := f.r.Resolve(context.Background(), testRef(date(2025, time.January, 1, 8, 0))); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(f.alarms.canceled) == 0 {
		t.Fatal("alarm must be cancelled for a vanished schedule")
	}
	if len(f.alarms.armed) != 0 {
		t.Fatal("nothing may be re-armed")
	}
}

func TestResolve_InactiveScheduleCancelsAndSucceeds(t *testing.T) {
	now := date(2025, time.January, 1, 8, 30)
	f := newResolverFixture(now)
	f.schedules.byID[3].Active = false

	if err := f.r.Resolve(context.Background(), testRef(date(2025, time.January, 1, 8, 0))); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(f.alarms.canceled) == 0 {
		t.Fatal("alarm must be cancelled for an inactive schedule")
	}
	if len(f.alarms.armed) != 0 {
		t.Fatal("nothing may be re-armed")
	}
}

func TestResolve_StoreFailureIsRetryable(t *testing.T) {
	f := newResolverFixture(date(2025, time.January, 1, 8, 30))
	f.adh.writeErr = errors.New("connection refused")

	err := f.r.Resolve(context.Background(), testRef(date(2025, time.January, 1, 8, 0)))
	if err == nil {
		t.Fatal("want an error")
	}
	if errors.Is(err, ErrBadJob) {
		t.Fatal("infrastructure failure must stay retryable")
	}
}
