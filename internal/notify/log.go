package notify

import (
	"context"

	"go.uber.org/zap"

	"medremind/internal/reminder"
)

// LogPresenter is the delivery fallback when no channel is configured: every
// alert is only logged. The missed-dose fallback still runs on schedule.
type LogPresenter struct {
	Log *zap.Logger
}

func (p *LogPresenter) Show(_ context.Context, n reminder.Notification) error {
	p.Log.Info("reminder notification",
		zap.String("occurrenceID", n.OccurrenceID),
		zap.Uint64("userID", n.UserID),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
	)
	return nil
}

func (p *LogPresenter) Dismiss(_ context.Context, occurrenceID string) error {
	p.Log.Debug("reminder notification dismissed", zap.String("occurrenceID", occurrenceID))
	return nil
}
