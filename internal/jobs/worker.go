package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"medremind/internal/reminder"
)

// Resolver executes the body of a claimed missed-dose job.
type Resolver interface {
	Resolve(ctx context.Context, ref reminder.OccurrenceRef) error
}

// Worker polls the jobs table and executes due jobs. Multiple workers may run
// concurrently; SKIP LOCKED claiming keeps them from double-executing.
type Worker struct {
	ID       string
	Repo     *Repo
	Resolver Resolver
	Log      *zap.Logger
	Poll     time.Duration
}

func (w *Worker) Run(ctx context.Context) {
	poll := w.Poll
	if poll <= 0 {
		poll = 800 * time.Millisecond
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Log.Info("job worker stopping", zap.String("workerID", w.ID))
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				w.Log.Error("job claim failed", zap.Error(err))
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeMissedDose:
		w.handleMissedDose(ctx, job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

func (w *Worker) handleMissedDose(ctx context.Context, job *Job) {
	var ref reminder.OccurrenceRef
	if err := json.Unmarshal(job.Payload, &ref); err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	err := w.Resolver.Resolve(ctx, ref)
	switch {
	case err == nil:
		_ = w.Repo.MarkDone(job.ID)
	case errors.Is(err, reminder.ErrBadJob):
		_ = w.Repo.MarkFailed(job.ID, err.Error())
	default:
		w.retry(job, err.Error())
	}
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
