package reminder

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RearmAll arms the alarm for every currently-active schedule. Run at service
// start so reminders survive restarts. Individual failures are logged and
// skipped; only listing failure is fatal to the batch.
func RearmAll(ctx context.Context, schedules ScheduleStore, sched *Scheduler, log *zap.Logger) error {
	list, err := schedules.ListActive(ctx, sched.now())
	if err != nil {
		return fmt.Errorf("list active schedules: %w", err)
	}

	armed := 0
	for i := range list {
		if err := sched.ScheduleNext(&list[i]); err != nil {
			log.Warn("boot re-arm skipped",
				zap.Uint64("userID", list[i].UserID),
				zap.Uint64("scheduleID", list[i].ID),
				zap.Error(err),
			)
			continue
		}
		armed++
	}

	log.Info("boot re-arm complete", zap.Int("schedules", len(list)), zap.Int("armed", armed))
	return nil
}
