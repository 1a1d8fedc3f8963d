// Package scheduler runs the pipeline on a cron expression.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/paddock-parser/internal/config"
	"github.com/yourusername/paddock-parser/internal/pipeline"
)

// Runner is the pipeline as the scheduler sees it.
type Runner interface {
	Run(ctx context.Context) (*pipeline.RunResult, error)
}

// Scheduler manages the scheduled pipeline job. Ticks that arrive while a
// run is still in flight are skipped.
type Scheduler struct {
	cron            *cron.Cron
	runner          Runner
	logger          logrus.FieldLogger
	mu              sync.RWMutex
	isRunning       bool
	jobID           cron.EntryID
	job             cron.Job
	runTimeout      time.Duration
	gracefulTimeout time.Duration
	baseCtx         context.Context
	cancel          context.CancelFunc
	lastResult      *pipeline.RunResult
}

// NewScheduler creates a scheduler in the configured timezone (UTC when
// unset).
func NewScheduler(runner Runner, cfg config.ScheduleConfig, logger logrus.FieldLogger) (*Scheduler, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	log := logger.WithField("component", "scheduler")
	cronLog := cronLogger{entry: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		runner:          runner,
		logger:          log,
		runTimeout:      10 * time.Minute,
		gracefulTimeout: 30 * time.Second,
		baseCtx:         context.Background(),
	}, nil
}

// Schedule registers the pipeline job on a standard five-field cron
// expression or a descriptor such as "@every 5m".
func (s *Scheduler) Schedule(expression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if s.job != nil {
		s.cron.Remove(s.jobID)
	}

	s.job = cron.FuncJob(s.runOnce)
	entryID, err := s.cron.AddJob(expression, s.job)
	if err != nil {
		s.job = nil
		return fmt.Errorf("failed to add job: %w", err)
	}
	s.jobID = entryID
	s.logger.WithField("cron", expression).Info("Scheduled pipeline job")
	return nil
}

func (s *Scheduler) runOnce() {
	s.mu.RLock()
	base := s.baseCtx
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(base, s.runTimeout)
	defer cancel()

	res, err := s.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, pipeline.ErrRunInProgress) {
			s.logger.Info("Pipeline already running, tick skipped")
			return
		}
		s.logger.WithError(err).Error("Scheduled pipeline run failed")
		return
	}

	s.mu.Lock()
	s.lastResult = res
	s.mu.Unlock()
	s.logger.WithFields(logrus.Fields{
		"run_id": res.RunID,
		"scored": res.Stats.RacesScored,
	}).Info("Scheduled pipeline run completed")
}

// Start starts the scheduler. Runs are cancelled when ctx is done or Stop
// is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if s.job == nil {
		return fmt.Errorf("no jobs scheduled")
	}

	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.isRunning = true
	s.logger.Info("Scheduler started")
	return nil
}

// Stop stops scheduling, cancels any run in flight and waits for it to
// return, up to the graceful timeout.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	stopped := s.cron.Stop()
	cancel()

	select {
	case <-stopped.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler did not stop within %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled run, or the zero time.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || s.job == nil {
		return time.Time{}
	}
	entry := s.cron.Entry(s.jobID)
	if !entry.Valid() {
		return time.Time{}
	}
	return entry.Next
}

// LastResult returns the result of the last successful scheduled run.
func (s *Scheduler) LastResult() *pipeline.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	entry logrus.FieldLogger
}

func (l cronLogger) fields(keysAndValues []interface{}) logrus.FieldLogger {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.entry.WithFields(fields)
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).WithError(err).Error("cron: " + msg)
}
