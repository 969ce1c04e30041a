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

// ErrBadJob marks a malformed missed-dose job. Retrying can never help.
var ErrBadJob = errors.New("malformed missed-dose job")

// MissedDoseResolver is the body of the missed-dose follow-up job: it turns
// an unanswered reminder into a MISSED record exactly once, then re-arms the
// schedule or cancels it if it ended.
//
// The job queue delivers at-least-once, so every step must be safe to repeat:
// the insert is if-absent and re-arming supersedes per alarm key.
type MissedDoseResolver struct {
	Schedules ScheduleStore
	Adherence AdherenceStore
	Scheduler *Scheduler
	Log       *zap.Logger
	Now       func() time.Time // nil means time.Now
}

func (m *MissedDoseResolver) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Resolve returns ErrBadJob for permanent failures, nil for success
// (including "nothing to do"), and any other error for a retryable failure.
func (m *MissedDoseResolver) Resolve(ctx context.Context, ref OccurrenceRef) error {
	if ref.UserID == 0 || ref.ScheduleID == 0 || ref.PlannedTime.IsZero() {
		return ErrBadJob
	}

	err := m.Adherence.InsertIfAbsent(ctx, &adherence.Log{
		UserID:      ref.UserID,
		ScheduleID:  ref.ScheduleID,
		PlannedTime: ref.PlannedTime,
		Status:      adherence.StatusMissed,
		CreatedAt:   m.now(),
	})
	if errors.Is(err, adherence.ErrNotOwned) {
		// Schedule deleted or never this user's; stop reminding.
		m.Scheduler.Cancel(ref.UserID, ref.ScheduleID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("record missed dose: %w", err)
	}

	sch, err := m.Schedules.GetByID(ctx, ref.UserID, ref.ScheduleID)
	if errors.Is(err, schedule.ErrNotFound) {
		m.Scheduler.Cancel(ref.UserID, ref.ScheduleID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}

	if !sch.Active {
		m.Scheduler.Cancel(ref.UserID, ref.ScheduleID)
		return nil
	}

	if err := m.Scheduler.ScheduleNext(sch); err != nil {
		return fmt.Errorf("re-arm schedule: %w", err)
	}

	m.Log.Info("missed dose recorded",
		zap.Uint64("userID", ref.UserID),
		zap.Uint64("scheduleID", ref.ScheduleID),
		zap.Time("plannedTime", ref.PlannedTime),
	)
	return nil
}
