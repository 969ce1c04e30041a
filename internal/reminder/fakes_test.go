package reminder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medremind/internal/adherence"
	"medremind/internal/prefs"
	"medremind/internal/schedule"
)

// In-memory fakes recording armed/canceled keys and written rows, so the
// state machine is testable without a clock or a database.

type armedAlarm struct {
	at time.Time
	ev Event
}

type fakeAlarm struct {
	armed    map[string]armedAlarm
	canceled []string
}

func (f *fakeAlarm) Arm(key string, at time.Time, ev Event) error {
	if f.armed == nil {
		f.armed = make(map[string]armedAlarm)
	}
	f.armed[key] = armedAlarm{at: at, ev: ev}
	return nil
}

func (f *fakeAlarm) Cancel(key string) error {
	f.canceled = append(f.canceled, key)
	delete(f.armed, key)
	return nil
}

type enqueuedJob struct {
	name  string
	delay time.Duration
	tag   string
	ref   OccurrenceRef
}

type fakeJobs struct {
	enqueued      []enqueuedJob
	canceledNames []string
	canceledTags  []string
	enqueueErr    error
}

func (f *fakeJobs) EnqueueUnique(_ context.Context, name string, delay time.Duration, tag string, ref OccurrenceRef) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.enqueued = append(f.enqueued, enqueuedJob{name: name, delay: delay, tag: tag, ref: ref})
	return nil
}

func (f *fakeJobs) CancelByName(_ context.Context, name string) error {
	f.canceledNames = append(f.canceledNames, name)
	return nil
}

func (f *fakeJobs) CancelByTag(_ context.Context, tag string) error {
	f.canceledTags = append(f.canceledTags, tag)
	return nil
}

type fakeSchedules struct {
	byID map[uint64]*schedule.Schedule
	err  error
}

func (f *fakeSchedules) GetByID(_ context.Context, userID, scheduleID uint64) (*schedule.Schedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.byID[scheduleID]
	if !ok || s.UserID != userID {
		return nil, schedule.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSchedules) ListActive(_ context.Context, _ time.Time) ([]schedule.Schedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []schedule.Schedule
	for _, s := range f.byID {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func occKey(userID, scheduleID uint64, planned time.Time) string {
	return fmt.Sprintf("%d/%d/%d", userID, scheduleID, planned.UnixMilli())
}

type fakeAdherence struct {
	logs       map[string]*adherence.Log
	ownedByUID uint64 // writes for other users fail with ErrNotOwned
	writeErr   error
}

func (f *fakeAdherence) ensure() {
	if f.logs == nil {
		f.logs = make(map[string]*adherence.Log)
	}
}

func (f *fakeAdherence) InsertIfAbsent(_ context.Context, l *adherence.Log) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.ownedByUID != 0 && l.UserID != f.ownedByUID {
		return adherence.ErrNotOwned
	}
	f.ensure()
	k := occKey(l.UserID, l.ScheduleID, l.PlannedTime)
	if _, ok := f.logs[k]; ok {
		return nil
	}
	cp := *l
	f.logs[k] = &cp
	return nil
}

func (f *fakeAdherence) Replace(_ context.Context, l *adherence.Log) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.ownedByUID != 0 && l.UserID != f.ownedByUID {
		return adherence.ErrNotOwned
	}
	f.ensure()
	cp := *l
	f.logs[occKey(l.UserID, l.ScheduleID, l.PlannedTime)] = &cp
	return nil
}

type fakePrefs struct {
	pref prefs.Preference
	err  error
}

func (f *fakePrefs) GetOrDefault(_ context.Context, userID uint64) (prefs.Preference, error) {
	if f.err != nil {
		return prefs.Preference{}, f.err
	}
	p := f.pref
	p.UserID = userID
	return p, nil
}

type fakePresenter struct {
	shown     []Notification
	dismissed []string
	showErr   error
}

func (f *fakePresenter) Show(_ context.Context, n Notification) error {
	if f.showErr != nil {
		return f.showErr
	}
	f.shown = append(f.shown, n)
	return nil
}

func (f *fakePresenter) Dismiss(_ context.Context, occurrenceID string) error {
	f.dismissed = append(f.dismissed, occurrenceID)
	return nil
}

func intPtr(v int) *int { return &v }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func testLogger() *zap.Logger { return zap.NewNop() }
