package schedule

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("schedule not found")

type Repo struct {
	DB *gorm.DB
}

// GetByID returns the schedule regardless of its active flag; callers decide
// what inactive means for them.
func (r *Repo) GetByID(ctx context.Context, userID, scheduleID uint64) (*Schedule, error) {
	var s Schedule
	err := r.DB.WithContext(ctx).
		Where("id=? AND user_id=?", scheduleID, userID).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListActive returns every active schedule that has started on or before asOf
// and has not ended before it. Used by the boot re-arm pass.
func (r *Repo) ListActive(ctx context.Context, asOf time.Time) ([]Schedule, error) {
	var out []Schedule
	err := r.DB.WithContext(ctx).
		Where("active = true AND start_date <= ?", asOf).
		Where("end_date IS NULL OR end_date >= ?", asOf.AddDate(0, 0, -1)).
		Order("user_id, id").
		Find(&out).Error
	return out, err
}

func (r *Repo) Create(ctx context.Context, s *Schedule) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *Repo) Update(ctx context.Context, s *Schedule) error {
	s.UpdatedAt = time.Now().UTC()
	res := r.DB.WithContext(ctx).
		Model(&Schedule{}).
		Where("id=? AND user_id=?", s.ID, s.UserID).
		Updates(map[string]any{
			"medicine_name": s.MedicineName,
			"dosage":        s.Dosage,
			"instructions":  s.Instructions,
			"time_of_day_m": s.TimeOfDayM,
			"start_date":    s.StartDate,
			"end_date":      s.EndDate,
			"active":        s.Active,
			"updated_at":    s.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) SetActive(ctx context.Context, userID, scheduleID uint64, active bool) error {
	res := r.DB.WithContext(ctx).
		Model(&Schedule{}).
		Where("id=? AND user_id=?", scheduleID, userID).
		Updates(map[string]any{"active": active, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, scheduleID uint64) error {
	res := r.DB.WithContext(ctx).
		Where("id=? AND user_id=?", scheduleID, userID).
		Delete(&Schedule{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListByUser(ctx context.Context, userID uint64) ([]Schedule, error) {
	var out []Schedule
	err := r.DB.WithContext(ctx).
		Where("user_id=?", userID).
		Order("time_of_day_m, id").
		Find(&out).Error
	return out, err
}

// HasActiveAtTime reports whether the user already has a different active
// schedule at the same time of day. At most one active schedule per user may
// share a wall-clock slot.
func (r *Repo) HasActiveAtTime(ctx context.Context, userID uint64, timeOfDayM int, excludeID uint64) (bool, error) {
	var n int64
	q := r.DB.WithContext(ctx).
		Model(&Schedule{}).
		Where("user_id=? AND time_of_day_m=? AND active = true", userID, timeOfDayM)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
