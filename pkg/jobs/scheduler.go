package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Func is a unit of periodic work. The context is cancelled when the scheduler stops.
type Func func(ctx context.Context) error

// SchedulerConfig configures the cron scheduler.
type SchedulerConfig struct {
	Location *time.Location
	Logger   *zap.Logger
}

// Scheduler fires registered jobs on cron specs. A firing is skipped while the
// previous firing of the same job is still running.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu      sync.Mutex
	jobs    map[string]Func
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// NewScheduler builds a scheduler. Jobs run in UTC unless a location is given.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	cronLogger := zapCronLogger{logger: cfg.Logger.Sugar()}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger: cfg.Logger,
		jobs:   make(map[string]Func),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds fn under name with a standard five-field cron spec or descriptor (e.g. "@every 5m").
func (s *Scheduler) Register(name, spec string, fn Func) error {
	if name == "" || fn == nil {
		return fmt.Errorf("job name and func required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { _ = s.run(s.ctx, name, fn) }); err != nil {
		return fmt.Errorf("register job %s with spec %q: %w", name, spec, err)
	}
	s.jobs[name] = fn
	s.logger.Sugar().Infow("job registered", "job", name, "spec", spec)
	return nil
}

// RunNow executes a registered job synchronously, outside the cron schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	fn, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %s not registered", name)
	}
	return s.run(ctx, name, fn)
}

// Start begins firing registered jobs. Safe to call once.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
	s.logger.Sugar().Infow("scheduler started", "jobs", len(s.jobs))
}

// Stop halts new firings, cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		s.cancel()
		return
	}
	s.started = false
	s.mu.Unlock()

	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Sugar().Infow("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, name string, fn Func) error {
	start := time.Now()
	err := fn(ctx)
	if err != nil {
		s.logger.Sugar().Errorw("job failed", "job", name, "duration", time.Since(start), "error", err)
		return err
	}
	s.logger.Sugar().Debugw("job finished", "job", name, "duration", time.Since(start))
	return nil
}

// zapCronLogger adapts zap to cron.Logger.
type zapCronLogger struct {
	logger *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
