// Package alarm is the in-process AlarmPort: one pending one-shot timer per
// key, delivered asynchronously to the reminder handler. Durability across
// restarts comes from the boot re-arm pass, not from this package.
package alarm

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"medremind/internal/reminder"
)

type Service struct {
	log *zap.Logger

	mu      sync.Mutex
	timers  map[string]*time.Timer
	handler func(reminder.Event)
	stopped bool
}

func New(log *zap.Logger) *Service {
	return &Service{
		log:    log,
		timers: make(map[string]*time.Timer),
	}
}

// SetHandler installs the event sink. Must be called before the first alarm
// can fire; events arriving earlier are dropped with an error log.
func (s *Service) SetHandler(fn func(reminder.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = fn
}

// Arm schedules ev for delivery at the given time, superseding any pending
// alarm for the same key. Times in the past fire immediately.
func (s *Service) Arm(key string, at time.Time, ev reminder.Event) error {
	d := time.Until(at)
	if d < 0 {
		d = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}

	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(d, func() { s.fire(key, ev) })

	s.log.Debug("alarm armed",
		zap.String("key", key),
		zap.Time("at", at),
		zap.Time("plannedTime", ev.PlannedTime),
	)
	return nil
}

// Cancel drops the pending alarm for key. Unknown keys are a no-op.
func (s *Service) Cancel(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
	return nil
}

// Stop cancels every pending alarm; used on shutdown.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for k, t := range s.timers {
		t.Stop()
		delete(s.timers, k)
	}
}

func (s *Service) fire(key string, ev reminder.Event) {
	s.mu.Lock()
	delete(s.timers, key)
	fn := s.handler
	stopped := s.stopped
	s.mu.Unlock()

	if stopped {
		return
	}
	if fn == nil {
		s.log.Error("alarm fired with no handler installed", zap.String("key", key))
		return
	}
	fn(ev)
}
