package prefs

import "time"

// Preference is per-user notification settings. Quiet hours are minutes from
// midnight; both bounds must be set for the window to apply, and start > end
// means an overnight window wrapping past midnight.
type Preference struct {
	ID     uint64 `gorm:"primaryKey" json:"id"`
	UserID uint64 `gorm:"uniqueIndex;not null" json:"user_id"`

	NotificationsEnabled bool `gorm:"not null;default:true" json:"notifications_enabled"`

	QuietStartM *int `gorm:"" json:"quiet_start_m,omitempty"`
	QuietEndM   *int `gorm:"" json:"quiet_end_m,omitempty"`

	AllowVibration bool    `gorm:"not null;default:true" json:"allow_vibration"`
	RingtoneRef    *string `gorm:"type:text" json:"ringtone_ref,omitempty"`

	// Delivery target for the Telegram presenter; nil means no binding.
	TelegramChatID *int64 `gorm:"index" json:"telegram_chat_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Preference) TableName() string { return "notification_preferences" }

// Default returns the settings a user has before saving any: notifications
// on, no quiet hours, vibration allowed.
func Default(userID uint64) Preference {
	now := time.Now().UTC()
	return Preference{
		UserID:               userID,
		NotificationsEnabled: true,
		AllowVibration:       true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}
