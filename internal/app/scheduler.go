package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/vigil/internal/common"
)

// Scheduler triggers the daily run on a cron schedule.
// Only one run is active at a time; a tick that fires during a run is skipped.
type Scheduler struct {
	cron   *cron.Cron
	run    func(ctx context.Context) error
	logger *common.Logger

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	manual  sync.WaitGroup
}

// NewScheduler creates a scheduler that calls run on every tick of the
// configured cron expression in the configured timezone.
func NewScheduler(config *common.ScheduleConfig, run func(ctx context.Context) error, logger *common.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(config.Location())),
		run:    run,
		logger: logger,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if _, err := s.cron.AddFunc(config.Cron, s.tick); err != nil {
		return nil, fmt.Errorf("failed to add cron job %q: %w", config.Cron, err)
	}
	return s, nil
}

// Start begins firing ticks in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info().Time("next_run", e.Next).Msg("Scheduler started")
	}
}

// RunNow triggers a run in the background under the same single-run guard as
// scheduled ticks.
func (s *Scheduler) RunNow() {
	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		s.tick()
	}()
}

// Stop halts the schedule, cancels any active run and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.manual.Wait()
	s.logger.Info().Msg("Scheduler stopped")
}

// Running reports whether a run is in progress.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn().Msg("Previous run still in progress, skipping scheduled run")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if err := s.run(s.ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled run failed")
	}
}
