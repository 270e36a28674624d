package ratelimit

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// DefaultPruneSchedule runs pruning once a minute.
const DefaultPruneSchedule = "@every 1m"

// PruneScheduler periodically removes expired windows so the counter table
// does not grow with every key ever seen.
type PruneScheduler struct {
	limiter  *Limiter
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewPruneScheduler creates a scheduler. An empty schedule uses
// DefaultPruneSchedule.
func NewPruneScheduler(limiter *Limiter, schedule string, logger *slog.Logger) *PruneScheduler {
	if schedule == "" {
		schedule = DefaultPruneSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PruneScheduler{
		limiter:  limiter,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "ratelimit.scheduler"),
	}
}

// Start schedules pruning. It accepts standard cron expressions and
// descriptors such as "@every 30s".
func (s *PruneScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", s.schedule, err)
	}
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("rate window pruning scheduled", "schedule", s.schedule)
	return nil
}

func (s *PruneScheduler) run() {
	if removed := s.limiter.Prune(); removed > 0 {
		s.logger.Debug("pruned expired rate windows", "removed", removed)
	}
}

// Stop stops the scheduler and waits for a running prune to finish.
func (s *PruneScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
	}
}

// IsRunning returns true if the scheduler is running.
func (s *PruneScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
