package adherence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medremind/internal/schedule"
)

var ErrNotOwned = errors.New("schedule not owned by user")

var occurrenceKey = []clause.Column{
	{Name: "user_id"}, {Name: "schedule_id"}, {Name: "planned_time"},
}

type Repo struct {
	DB *gorm.DB
}

// ensureOwned guards writes: the occurrence must reference a schedule that
// exists and belongs to the user.
func (r *Repo) ensureOwned(ctx context.Context, userID, scheduleID uint64) error {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&schedule.Schedule{}).
		Where("id=? AND user_id=?", scheduleID, userID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotOwned
	}
	return nil
}

// FindByOccurrence returns the recorded outcome for one occurrence, or nil
// when the dose has no outcome yet.
func (r *Repo) FindByOccurrence(ctx context.Context, userID, scheduleID uint64, plannedTime time.Time) (*Log, error) {
	var l Log
	err := r.DB.WithContext(ctx).
		Where("user_id=? AND schedule_id=? AND planned_time=?", userID, scheduleID, plannedTime.UTC()).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// InsertIfAbsent writes the log only when no record exists for its occurrence.
// A conflicting row wins silently; used for idempotent miss recording.
func (r *Repo) InsertIfAbsent(ctx context.Context, l *Log) error {
	if err := r.ensureOwned(ctx, l.UserID, l.ScheduleID); err != nil {
		return err
	}
	l.PlannedTime = l.PlannedTime.UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: occurrenceKey, DoNothing: true}).
		Create(l).Error
}

// Replace writes the log unconditionally, overwriting any existing outcome for
// the same occurrence. A late user action always wins over a recorded miss.
func (r *Repo) Replace(ctx context.Context, l *Log) error {
	if err := r.ensureOwned(ctx, l.UserID, l.ScheduleID); err != nil {
		return err
	}
	l.PlannedTime = l.PlannedTime.UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   occurrenceKey,
			DoUpdates: clause.AssignmentColumns([]string{"status", "taken_time", "note"}),
		}).
		Create(l).Error
}

func (r *Repo) ListByUser(ctx context.Context, userID uint64, limit int) ([]Log, error) {
	var out []Log
	q := r.DB.WithContext(ctx).
		Where("user_id=?", userID).
		Order("planned_time desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *Repo) ListByRange(ctx context.Context, userID uint64, from, to time.Time) ([]Log, error) {
	var out []Log
	err := r.DB.WithContext(ctx).
		Where("user_id=? AND planned_time >= ? AND planned_time < ?", userID, from.UTC(), to.UTC()).
		Order("planned_time desc").
		Find(&out).Error
	return out, err
}

func (r *Repo) CountByStatusInRange(ctx context.Context, userID uint64, status string, from, to time.Time) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&Log{}).
		Where("user_id=? AND status=? AND planned_time >= ? AND planned_time < ?",
			userID, status, from.UTC(), to.UTC()).
		Count(&n).Error
	return n, err
}
