package schedule

import "time"

// Schedule is one medication plan: a medicine taken once a day at a fixed
// wall-clock time, between StartDate and (optionally) EndDate inclusive.
type Schedule struct {
	ID     uint64 `gorm:"primaryKey" json:"id"`
	UserID uint64 `gorm:"index;not null" json:"user_id"`

	MedicineName string  `gorm:"type:text;not null" json:"medicine_name"`
	Dosage       string  `gorm:"type:text;not null" json:"dosage"`
	Instructions *string `gorm:"type:text" json:"instructions,omitempty"`

	// Minutes from midnight (0..1439), evaluated in the process-local zone.
	TimeOfDayM int `gorm:"not null" json:"time_of_day_m"`

	StartDate time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate   *time.Time `gorm:"type:date" json:"end_date,omitempty"` // inclusive

	Active bool `gorm:"index;not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Schedule) TableName() string { return "medication_schedules" }
