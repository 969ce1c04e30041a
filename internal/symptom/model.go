package symptom

import "time"

// Note is a symptom journal entry, optionally tied to one of the user's
// medication schedules. Severity is a 1..5 scale when set.
type Note struct {
	ID     uint64 `gorm:"primaryKey" json:"id"`
	UserID uint64 `gorm:"index;not null" json:"user_id"`

	// Cleared when the referenced schedule is deleted.
	ScheduleID *uint64 `gorm:"index" json:"schedule_id,omitempty"`

	NoteDate    time.Time `gorm:"type:date;not null" json:"note_date"`
	Title       string    `gorm:"type:text;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Severity    *int      `json:"severity,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Note) TableName() string { return "symptom_notes" }
