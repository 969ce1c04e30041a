package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"medremind/internal/adherence"
	"medremind/internal/jobs"
	"medremind/internal/prefs"
	"medremind/internal/schedule"
	"medremind/internal/symptom"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&schedule.Schedule{},
		&adherence.Log{},
		&prefs.Preference{},
		&symptom.Note{},
		&jobs.Job{},
	); err != nil {
		return err
	}

	// One outcome per occurrence: the natural key the insert-if-absent and
	// replace writes race on.
	if err := gdb.Exec(`
create unique index if not exists uq_adherence_occurrence
on adherence_logs(user_id, schedule_id, planned_time);
`).Error; err != nil {
		return err
	}

	// One active schedule per user per wall-clock slot.
	if err := gdb.Exec(`
create unique index if not exists uq_schedules_user_time_active
on medication_schedules(user_id, time_of_day_m)
where active;
`).Error; err != nil {
		return err
	}

	// Tag containment for bulk missed-job cancellation (GIN for text[])
	if err := gdb.Exec(`create index if not exists idx_jobs_tags on jobs using gin (tags);`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_schedules_user_time on medication_schedules(user_id, time_of_day_m);`,
		`create index if not exists idx_adherence_user_planned on adherence_logs(user_id, planned_time desc);`,
		`create index if not exists idx_symptoms_user_date on symptom_notes(user_id, note_date desc);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
