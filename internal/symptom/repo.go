package symptom

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("symptom note not found")

type Repo struct {
	DB *gorm.DB
}

func (r *Repo) GetByID(ctx context.Context, userID, noteID uint64) (*Note, error) {
	var n Note
	err := r.DB.WithContext(ctx).
		Where("id=? AND user_id=?", noteID, userID).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// ListByUser returns the user's notes newest first, by note date then id.
func (r *Repo) ListByUser(ctx context.Context, userID uint64) ([]Note, error) {
	var out []Note
	err := r.DB.WithContext(ctx).
		Where("user_id=?", userID).
		Order("note_date desc, id desc").
		Find(&out).Error
	return out, err
}

func (r *Repo) Create(ctx context.Context, n *Note) error {
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	return r.DB.WithContext(ctx).Create(n).Error
}

func (r *Repo) Update(ctx context.Context, n *Note) error {
	n.UpdatedAt = time.Now().UTC()
	res := r.DB.WithContext(ctx).
		Model(&Note{}).
		Where("id=? AND user_id=?", n.ID, n.UserID).
		Updates(map[string]any{
			"schedule_id": n.ScheduleID,
			"note_date":   n.NoteDate,
			"title":       n.Title,
			"description": n.Description,
			"severity":    n.Severity,
			"updated_at":  n.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, noteID uint64) error {
	res := r.DB.WithContext(ctx).
		Where("id=? AND user_id=?", noteID, userID).
		Delete(&Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DetachSchedule clears the schedule reference from every note pointing at
// it. Run when the schedule is deleted; the notes themselves survive.
func (r *Repo) DetachSchedule(ctx context.Context, userID, scheduleID uint64) error {
	return r.DB.WithContext(ctx).
		Model(&Note{}).
		Where("user_id=? AND schedule_id=?", userID, scheduleID).
		Updates(map[string]any{"schedule_id": nil, "updated_at": time.Now().UTC()}).
		Error
}
