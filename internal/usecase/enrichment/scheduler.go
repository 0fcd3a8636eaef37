package enrichment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-enrichment/internal/infrastructure/cache"
	usecaseErrors "github.com/johnquangdev/meeting-enrichment/internal/usecase/errors"
)

// PollLeaseKey names the lease that serializes polls across workers
const PollLeaseKey = "enrichment:poll"

// Runner performs one poll
type Runner interface {
	RunOnce(ctx context.Context) (*RunReport, error)
}

// SchedulerConfig controls the poll loop
type SchedulerConfig struct {
	Interval   time.Duration
	LeaseTTL   time.Duration
	RunOnStart bool
}

// Scheduler runs the pipeline on a fixed interval. Every poll, scheduled or
// manual, first takes the poll lease so two polls never overlap.
type Scheduler struct {
	runner Runner
	locker cache.Locker
	cfg    SchedulerConfig
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup

	lastMu     sync.RWMutex
	lastReport *RunReport
	lastRunAt  time.Time
}

// NewScheduler creates a scheduler; call Start to begin polling
func NewScheduler(runner Runner, locker cache.Locker, cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 30 * time.Minute
	}
	return &Scheduler{
		runner: runner,
		locker: locker,
		cfg:    cfg,
		logger: logger,
	}
}

// Start launches the poll loop in the background
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	s.wg.Add(1)
	go s.loop(ctx, s.stop)

	s.logger.Info("🚀 Pipeline scheduler started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Bool("run_on_start", s.cfg.RunOnStart),
	)
}

// Stop ends the loop and waits for an in-flight poll to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("🛑 Pipeline scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	if s.cfg.RunOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.RunNow(ctx)
	switch {
	case err == nil:
	case errors.Is(err, usecaseErrors.ErrPollInProgress):
		s.logger.Info("Previous poll still running, skipping tick")
	default:
		s.logger.Error("❌ Pipeline poll failed", zap.Error(err))
	}
}

// RunNow performs one poll immediately. It returns ErrPollInProgress when
// another poll holds the lease.
func (s *Scheduler) RunNow(ctx context.Context) (*RunReport, error) {
	token, err := s.locker.Acquire(ctx, PollLeaseKey, s.cfg.LeaseTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLeaseHeld) {
			return nil, usecaseErrors.ErrPollInProgress
		}
		return nil, fmt.Errorf("failed to acquire poll lease: %w", err)
	}
	defer func() {
		// Release even when ctx is already cancelled
		if err := s.locker.Release(context.WithoutCancel(ctx), PollLeaseKey, token); err != nil {
			s.logger.Warn("⚠️ Failed to release poll lease", zap.Error(err))
		}
	}()

	report, err := s.runner.RunOnce(ctx)
	if report != nil {
		s.lastMu.Lock()
		s.lastReport = report
		s.lastRunAt = time.Now()
		s.lastMu.Unlock()
	}
	return report, err
}

// LastReport returns the report of the latest finished poll, if any
func (s *Scheduler) LastReport() (*RunReport, time.Time) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.lastReport, s.lastRunAt
}
