package adherence

import "time"

const (
	StatusTaken   = "TAKEN"
	StatusMissed  = "MISSED"
	StatusSkipped = "SKIPPED"
)

// Log records the outcome of a single occurrence. The natural key
// (user_id, schedule_id, planned_time) is unique: one outcome per occurrence.
type Log struct {
	ID         uint64 `gorm:"primaryKey" json:"id"`
	UserID     uint64 `gorm:"index;not null" json:"user_id"`
	ScheduleID uint64 `gorm:"index;not null" json:"schedule_id"`

	PlannedTime time.Time  `gorm:"type:timestamptz;not null" json:"planned_time"`
	TakenTime   *time.Time `gorm:"type:timestamptz" json:"taken_time,omitempty"`

	Status string  `gorm:"type:text;not null" json:"status"` // TAKEN/MISSED/SKIPPED
	Note   *string `gorm:"type:text" json:"note,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Log) TableName() string { return "adherence_logs" }
