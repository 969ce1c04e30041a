package alarm

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"medremind/internal/reminder"
)

func newService(t *testing.T) (*Service, chan reminder.Event) {
	t.Helper()
	s := New(zap.NewNop())
	fired := make(chan reminder.Event, 8)
	s.SetHandler(func(ev reminder.Event) { fired <- ev })
	t.Cleanup(s.Stop)
	return s, fired
}

func waitFire(t *testing.T, ch chan reminder.Event) reminder.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("alarm did not fire")
		return reminder.Event{}
	}
}

func TestArm_FiresWithPayload(t *testing.T) {
	s, fired := newService(t)

	ev := reminder.Event{Kind: reminder.EventFire, UserID: 7, ScheduleID: 3, PlannedTime: time.Now()}
	if err := s.Arm("k1", time.Now().Add(10*time.Millisecond), ev); err != nil {
		t.Fatalf("Arm: %v", err)
	}

	got := waitFire(t, fired)
	if got.UserID != 7 || got.ScheduleID != 3 || got.Kind != reminder.EventFire {
		t.Fatalf("bad payload: %+v", got)
	}
}

func TestArm_PastTimeFiresImmediately(t *testing.T) {
	s, fired := newService(t)

	ev := reminder.Event{Kind: reminder.EventFire, UserID: 1, ScheduleID: 1}
	if err := s.Arm("k1", time.Now().Add(-time.Hour), ev); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	waitFire(t, fired)
}

func TestArm_Supersedes(t *testing.T) {
	s, fired := newService(t)

	first := reminder.Event{Kind: reminder.EventFire, UserID: 1, ScheduleID: 1}
	second := reminder.Event{Kind: reminder.EventFire, UserID: 2, ScheduleID: 2}

	if err := s.Arm("k1", time.Now().Add(time.Hour), first); err != nil {
		t.Fatalf("first Arm: %v", err)
	}
	if err := s.Arm("k1", time.Now().Add(10*time.Millisecond), second); err != nil {
		t.Fatalf("second Arm: %v", err)
	}

	got := waitFire(t, fired)
	if got.UserID != 2 {
		t.Fatalf("superseded alarm fired: %+v", got)
	}

	select {
	case ev := <-fired:
		t.Fatalf("stale alarm also fired: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancel_PreventsFire(t *testing.T) {
	s, fired := newService(t)

	ev := reminder.Event{Kind: reminder.EventFire, UserID: 1, ScheduleID: 1}
	if err := s.Arm("k1", time.Now().Add(20*time.Millisecond), ev); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if err := s.Cancel("k1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	select {
	case got := <-fired:
		t.Fatalf("cancelled alarm fired: %+v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStop_DropsPendingAlarms(t *testing.T) {
	s := New(zap.NewNop())
	fired := make(chan reminder.Event, 1)
	s.SetHandler(func(ev reminder.Event) { fired <- ev })

	ev := reminder.Event{Kind: reminder.EventFire, UserID: 1, ScheduleID: 1}
	if err := s.Arm("k1", time.Now().Add(20*time.Millisecond), ev); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	s.Stop()

	select {
	case got := <-fired:
		t.Fatalf("alarm fired after Stop: %+v", got)
	case <-time.After(100 * time.Millisecond):
	}

	if err := s.Arm("k2", time.Now(), ev); err != nil {
		t.Fatalf("Arm after Stop: %v", err)
	}
	select {
	case got := <-fired:
		t.Fatalf("alarm armed after Stop fired: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancel_UnknownKeyIsNoOp(t *testing.T) {
	s, _ := newService(t)

	if err := s.Cancel("never-armed"); err != nil {
		t.Fatalf("Cancel of unknown key must be a no-op, got %v", err)
	}
}
