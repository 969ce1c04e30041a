package prefs

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	DB *gorm.DB
}

// GetOrDefault never fails on a missing row; absent settings mean defaults.
func (r *Repo) GetOrDefault(ctx context.Context, userID uint64) (Preference, error) {
	var p Preference
	err := r.DB.WithContext(ctx).Where("user_id=?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Default(userID), nil
		}
		return Preference{}, err
	}
	return p, nil
}

// Save upserts the full preference row for a user.
func (r *Repo) Save(ctx context.Context, p *Preference) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"notifications_enabled", "quiet_start_m", "quiet_end_m",
				"allow_vibration", "ringtone_ref", "telegram_chat_id", "updated_at",
			}),
		}).
		Create(p).Error
}

// SetQuietHours sets or clears the quiet window. Either bound missing clears
// both; a window needs two edges.
func (r *Repo) SetQuietHours(ctx context.Context, userID uint64, startM, endM *int) error {
	p, err := r.GetOrDefault(ctx, userID)
	if err != nil {
		return err
	}
	if startM == nil || endM == nil {
		p.QuietStartM = nil
		p.QuietEndM = nil
	} else {
		p.QuietStartM = startM
		p.QuietEndM = endM
	}
	return r.Save(ctx, &p)
}

func (r *Repo) SetNotificationsEnabled(ctx context.Context, userID uint64, enabled bool) error {
	p, err := r.GetOrDefault(ctx, userID)
	if err != nil {
		return err
	}
	p.NotificationsEnabled = enabled
	return r.Save(ctx, &p)
}

// SetTelegramChatID binds (or clears) a user's Telegram delivery target.
func (r *Repo) SetTelegramChatID(ctx context.Context, userID uint64, chatID *int64) error {
	p, err := r.GetOrDefault(ctx, userID)
	if err != nil {
		return err
	}
	p.TelegramChatID = chatID
	return r.Save(ctx, &p)
}

// TelegramChatID returns the user's chat binding; false means none.
func (r *Repo) TelegramChatID(ctx context.Context, userID uint64) (int64, bool, error) {
	p, err := r.GetOrDefault(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	if p.TelegramChatID == nil {
		return 0, false, nil
	}
	return *p.TelegramChatID, true, nil
}

// FindUserByChatID resolves a Telegram chat back to the bound user, if any.
func (r *Repo) FindUserByChatID(ctx context.Context, chatID int64) (uint64, bool, error) {
	var p Preference
	err := r.DB.WithContext(ctx).Where("telegram_chat_id=?", chatID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return p.UserID, true, nil
}
