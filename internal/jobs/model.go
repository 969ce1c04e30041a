package jobs

import (
	"time"

	"github.com/lib/pq"
)

const TypeMissedDose = "MISSED_DOSE"

const (
	StatusPending   = "PENDING"
	StatusRunning   = "RUNNING"
	StatusDone      = "DONE"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

// Job is one durable delayed job. Name is unique: enqueueing the same name
// again replaces the pending job. Tags allow bulk cancellation for a schedule
// regardless of occurrence.
type Job struct {
	ID   uint64 `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`

	Type    string         `gorm:"type:text;not null"` // MISSED_DOSE
	Payload []byte         `gorm:"type:jsonb;not null;default:'{}'::jsonb"`
	Tags    pq.StringArray `gorm:"type:text[];not null;default:'{}'"`

	RunAt  time.Time `gorm:"index;not null"`
	Status string    `gorm:"index;not null;default:'PENDING'"`

	Attempts    int `gorm:"not null;default:0"`
	MaxAttempts int `gorm:"not null;default:8"`

	LockedBy *string    `gorm:"type:text"`
	LockedAt *time.Time `gorm:"type:timestamptz"`

	LastError *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}
