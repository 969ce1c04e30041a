package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medremind/internal/reminder"
)

type Repo struct {
	DB *gorm.DB
}

// EnqueueUnique inserts a missed-dose job or replaces the existing job with
// the same name: run time, payload and retry counters all reset. This is the
// enqueue-unique/replace contract the reminder core relies on.
func (r *Repo) EnqueueUnique(ctx context.Context, name string, delay time.Duration, tag string, ref reminder.OccurrenceRef) error {
	payload, err := json.Marshal(ref)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	j := Job{
		Name:    name,
		Type:    TypeMissedDose,
		Payload: payload,
		Tags:    pq.StringArray{tag},
		RunAt:   now.Add(delay),
		Status:  StatusPending,
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{
				"type":       j.Type,
				"payload":    payload,
				"tags":       j.Tags,
				"run_at":     j.RunAt,
				"status":     StatusPending,
				"attempts":   0,
				"locked_by":  nil,
				"locked_at":  nil,
				"last_error": nil,
				"updated_at": now,
			}),
		}).
		Create(&j).Error
}

// CancelByName marks the named job cancelled if it has not finished yet.
// A missing or already-finished job is a no-op.
func (r *Repo) CancelByName(ctx context.Context, name string) error {
	return r.DB.WithContext(ctx).Exec(`
update jobs
set status=?, updated_at=now()
where name=? and status in (?, ?)`,
		StatusCancelled, name, StatusPending, StatusRunning,
	).Error
}

// CancelByTag cancels every unfinished job carrying the tag.
func (r *Repo) CancelByTag(ctx context.Context, tag string) error {
	return r.DB.WithContext(ctx).Exec(`
update jobs
set status=?, updated_at=now()
where tags @> ? and status in (?, ?)`,
		StatusCancelled, pq.Array([]string{tag}), StatusPending, StatusRunning,
	).Error
}

// Claim one due job atomically using SKIP LOCKED.
// Works on Postgres.
func (r *Repo) Claim(workerID string) (*Job, error) {
	var job Job
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		// requeue stuck RUNNING jobs (optional safety)
		tx.Exec(`
update jobs
set status='PENDING', locked_by=null, locked_at=null, updated_at=now()
where status='RUNNING' and locked_at is not null and locked_at < now() - interval '5 minutes'
`)

		// claim
		// FOR UPDATE SKIP LOCKED ensures no double-claim
		q := tx.Raw(`
with cte as (
  select id
  from jobs
  where status='PENDING' and run_at <= now()
  order by run_at asc
  for update skip locked
  limit 1
)
update jobs
set status='RUNNING', locked_by=?, locked_at=now(), updated_at=now()
where id in (select id from cte)
returning *;
`, workerID)

		return q.Scan(&job).Error
	})
	if err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, nil
	}
	return &job, nil
}

func (r *Repo) MarkDone(id uint64) error {
	return r.DB.Exec(`update jobs set status='DONE', updated_at=now() where id=?`, id).Error
}

func (r *Repo) MarkFailed(id uint64, errMsg string) error {
	return r.DB.Exec(`update jobs set status='FAILED', last_error=?, updated_at=now() where id=?`, errMsg, id).Error
}

func (r *Repo) RetryLater(id uint64, attempts int, runAt time.Time, errMsg string) error {
	return r.DB.Exec(`
update jobs
set status='PENDING',
    attempts=?,
    run_at=?,
    locked_by=null,
    locked_at=null,
    last_error=?,
    updated_at=now()
where id=?`, attempts, runAt, errMsg, id).Error
}
