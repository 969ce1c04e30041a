package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medremind/internal/adherence"
	"medremind/internal/schedule"
)

// Handler is the reminder state machine. Each event delivery may run on its
// own worker; all coordination happens through the stores and the idempotent
// key semantics of the alarm and job ports.
type Handler struct {
	Schedules ScheduleStore
	Adherence AdherenceStore
	Prefs     PreferenceStore
	Scheduler *Scheduler
	Jobs      DelayedJobPort
	Presenter Presenter

	SnoozeMinutes int
	GraceMinutes  int

	Log *zap.Logger
	Now func() time.Time // nil means time.Now
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Handle reacts to one reminder event. Validation failures drop the event;
// ownership failures mean "nothing to do"; infrastructure failures are
// returned for the caller's retry policy.
func (h *Handler) Handle(ctx context.Context, ev Event) error {
	if ev.UserID == 0 || ev.ScheduleID == 0 {
		return nil
	}

	switch ev.Kind {
	case EventFire:
		return h.handleFire(ctx, ev)
	case EventTaken:
		return h.handleResponse(ctx, ev, adherence.StatusTaken)
	case EventSkipped:
		return h.handleResponse(ctx, ev, adherence.StatusSkipped)
	case EventSnooze:
		return h.handleSnooze(ctx, ev)
	default:
		h.Log.Warn("unknown reminder event kind", zap.String("kind", string(ev.Kind)))
		return nil
	}
}

func (h *Handler) handleFire(ctx context.Context, ev Event) error {
	sch, err := h.Schedules.GetByID(ctx, ev.UserID, ev.ScheduleID)
	if errors.Is(err, schedule.ErrNotFound) {
		h.Scheduler.Cancel(ev.UserID, ev.ScheduleID)
		h.cancelMissedByTag(ctx, ev.UserID, ev.ScheduleID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}

	if !sch.Active {
		h.Scheduler.Cancel(ev.UserID, ev.ScheduleID)
		h.cancelMissedByTag(ctx, ev.UserID, ev.ScheduleID)
		return nil
	}

	pref, err := h.Prefs.GetOrDefault(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	if !pref.NotificationsEnabled {
		h.cancelMissedByTag(ctx, ev.UserID, ev.ScheduleID)
		return nil
	}

	now := h.now()
	planned := ev.PlannedTime
	if planned.IsZero() {
		// Defensive: a snoozed alarm always carries its occurrence, but a
		// payload without one still maps to a real dose happening now.
		planned = now
	}

	ref := OccurrenceRef{UserID: ev.UserID, ScheduleID: ev.ScheduleID, PlannedTime: planned}
	jobName := MissedJobName(ev.UserID, ev.ScheduleID, planned)
	jobTag := MissedJobTag(ev.UserID, ev.ScheduleID)

	if InQuietHours(pref.QuietStartM, pref.QuietEndM, MinuteOfDay(now)) {
		wait := MinutesUntilQuietEnd(pref.QuietStartM, pref.QuietEndM, MinuteOfDay(now), h.SnoozeMinutes)

		if err := h.Scheduler.ScheduleSnooze(ev.UserID, ev.ScheduleID, planned, wait); err != nil {
			return fmt.Errorf("quiet-hours snooze: %w", err)
		}
		delay := time.Duration(wait+h.GraceMinutes) * time.Minute
		if err := h.Jobs.EnqueueUnique(ctx, jobName, delay, jobTag, ref); err != nil {
			return fmt.Errorf("enqueue missed-dose job: %w", err)
		}

		h.Log.Info("reminder suppressed by quiet hours",
			zap.Uint64("userID", ev.UserID),
			zap.Uint64("scheduleID", ev.ScheduleID),
			zap.Int("resumeMinutes", wait),
		)
		return nil
	}

	n := Notification{
		OccurrenceID: OccurrenceID(ev.ScheduleID, planned),
		UserID:       ev.UserID,
		ScheduleID:   ev.ScheduleID,
		PlannedTime:  planned,
		Title:        "Time to take your medication",
		Body:         sch.MedicineName + " • " + sch.Dosage,
		Vibrate:      pref.AllowVibration,
		RingtoneRef:  pref.RingtoneRef,
	}
	if err := h.Presenter.Show(ctx, n); err != nil {
		// Could not notify; the missed-dose fallback still proceeds.
		h.Log.Warn("notification not shown",
			zap.Uint64("userID", ev.UserID),
			zap.Uint64("scheduleID", ev.ScheduleID),
			zap.Error(err),
		)
	}

	delay := time.Duration(h.GraceMinutes) * time.Minute
	if err := h.Jobs.EnqueueUnique(ctx, jobName, delay, jobTag, ref); err != nil {
		return fmt.Errorf("enqueue missed-dose job: %w", err)
	}

	// The cadence never depends on whether the user responds: arm the next
	// natural occurrence right away.
	if err := h.Scheduler.ScheduleNext(sch); err != nil {
		return fmt.Errorf("re-arm next occurrence: %w", err)
	}
	return nil
}

// handleResponse resolves an occurrence as taken or skipped. The replace
// write corrects an already-recorded miss if the response arrived late.
func (h *Handler) handleResponse(ctx context.Context, ev Event, status string) error {
	if ev.PlannedTime.IsZero() {
		return nil
	}

	now := h.now()
	l := &adherence.Log{
		UserID:      ev.UserID,
		ScheduleID:  ev.ScheduleID,
		PlannedTime: ev.PlannedTime,
		Status:      status,
		CreatedAt:   now,
	}
	if status == adherence.StatusTaken {
		t := now
		l.TakenTime = &t
	}

	err := h.Adherence.Replace(ctx, l)
	if errors.Is(err, adherence.ErrNotOwned) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("record %s: %w", status, err)
	}

	h.cancelMissedByName(ctx, ev.UserID, ev.ScheduleID, ev.PlannedTime)
	h.dismiss(ctx, ev.ScheduleID, ev.PlannedTime)
	return nil
}

func (h *Handler) handleSnooze(ctx context.Context, ev Event) error {
	if ev.PlannedTime.IsZero() {
		return nil
	}

	if err := h.Scheduler.ScheduleSnooze(ev.UserID, ev.ScheduleID, ev.PlannedTime, h.SnoozeMinutes); err != nil {
		return fmt.Errorf("snooze alarm: %w", err)
	}

	h.cancelMissedByName(ctx, ev.UserID, ev.ScheduleID, ev.PlannedTime)

	ref := OccurrenceRef{UserID: ev.UserID, ScheduleID: ev.ScheduleID, PlannedTime: ev.PlannedTime}
	delay := time.Duration(h.SnoozeMinutes+h.GraceMinutes) * time.Minute
	err := h.Jobs.EnqueueUnique(ctx,
		MissedJobName(ev.UserID, ev.ScheduleID, ev.PlannedTime),
		delay,
		MissedJobTag(ev.UserID, ev.ScheduleID),
		ref,
	)
	if err != nil {
		return fmt.Errorf("re-enqueue missed-dose job: %w", err)
	}

	h.dismiss(ctx, ev.ScheduleID, ev.PlannedTime)
	return nil
}

func (h *Handler) cancelMissedByName(ctx context.Context, userID, scheduleID uint64, plannedTime time.Time) {
	if err := h.Jobs.CancelByName(ctx, MissedJobName(userID, scheduleID, plannedTime)); err != nil {
		h.Log.Warn("missed-dose job cancel failed", zap.Error(err))
	}
}

func (h *Handler) cancelMissedByTag(ctx context.Context, userID, scheduleID uint64) {
	if err := h.Jobs.CancelByTag(ctx, MissedJobTag(userID, scheduleID)); err != nil {
		h.Log.Warn("missed-dose jobs cancel failed", zap.Error(err))
	}
}

func (h *Handler) dismiss(ctx context.Context, scheduleID uint64, plannedTime time.Time) {
	if err := h.Presenter.Dismiss(ctx, OccurrenceID(scheduleID, plannedTime)); err != nil {
		h.Log.Debug("notification dismiss ignored", zap.Error(err))
	}
}
