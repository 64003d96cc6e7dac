package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/couponwatch/couponwatch/internal/aggregator"
	"github.com/couponwatch/couponwatch/internal/config"
	"github.com/couponwatch/couponwatch/internal/models"

	"github.com/rs/zerolog"
)

// pausePollInterval is how often the loop rechecks a paused scheduler.
// Variable so tests can shorten it.
var pausePollInterval = 5 * time.Second

// ResultHandler is invoked after every completed run with its outcome, for
// delivery of confirmed courses and summaries.
type ResultHandler func(ctx context.Context, result aggregator.RunResult)

// Runner executes one discovery cycle.
type Runner interface {
	Run(ctx context.Context, runID string) (aggregator.RunResult, error)
}

// Scheduler drives periodic discovery runs in automated mode. It records
// every run in sqlite so the cycle interval survives restarts: after a crash
// the next run is scheduled relative to the last completed one, not relative
// to process start.
type Scheduler struct {
	cfg       config.SchedulerConfig
	db        *DB
	runner    Runner
	onResult  ResultHandler
	logger    zerolog.Logger
	forceChan chan struct{}
	stopChan  chan struct{}
	wg        sync.WaitGroup
	isRunning bool
	isPaused  bool
	mu        sync.Mutex
}

// NewScheduler creates a scheduler over the given runner. onResult may be nil.
func NewScheduler(cfg config.SchedulerConfig, runner Runner, onResult ResultHandler, logger zerolog.Logger) (*Scheduler, error) {
	db, err := NewDB(cfg.SQLiteDBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scheduler database: %w", err)
	}

	return &Scheduler{
		cfg:       cfg,
		db:        db,
		runner:    runner,
		onResult:  onResult,
		logger:    logger.With().Str("module", "Scheduler").Logger(),
		forceChan: make(chan struct{}, 1),
		stopChan:  make(chan struct{}),
	}, nil
}

// Start begins the scheduler loop and blocks until the context is cancelled
// or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("scheduler is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.logger.Info().
		Int("cycle_minutes", s.cfg.CycleMinutes).
		Msg("Starting automated discovery scheduler")

	if delay := time.Duration(s.cfg.InitialDelaySecs) * time.Second; delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return s.shutdown()
		case <-s.stopChan:
			return s.shutdown()
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			if s.paused() {
				select {
				case <-time.After(pausePollInterval):
					continue
				case <-s.stopChan:
					return
				case <-ctx.Done():
					return
				}
			}

			nextRunTime := s.calculateNextRunTime()
			s.logger.Info().Time("next_run_time", nextRunTime).Msg("Next discovery run scheduled")

			timer := time.NewTimer(time.Until(nextRunTime))
			select {
			case <-timer.C:
				s.executeRun(ctx)
			case <-s.forceChan:
				timer.Stop()
				s.logger.Info().Msg("Forced run requested, starting immediately")
				s.executeRun(ctx)
			case <-s.stopChan:
				timer.Stop()
				s.logger.Info().Msg("Stop signal received, exiting scheduler loop")
				return
			case <-ctx.Done():
				timer.Stop()
				s.logger.Info().Msg("Context cancelled, exiting scheduler loop")
				return
			}
		}
	}()

	select {
	case <-s.stopChan:
	case <-ctx.Done():
	}
	return s.shutdown()
}

// ForceRun triggers an immediate run without waiting for the next cycle. The
// request is dropped when a forced run is already pending.
func (s *Scheduler) ForceRun() {
	select {
	case s.forceChan <- struct{}{}:
	default:
	}
}

// Pause suspends scheduled runs. Forced runs are suspended as well; the loop
// keeps ticking so Resume picks the cadence back up without drift.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isPaused {
		s.isPaused = true
		s.logger.Info().Msg("Scheduler paused")
	}
}

// Resume lifts a Pause.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isPaused {
		s.isPaused = false
		s.logger.Info().Msg("Scheduler resumed")
	}
}

func (s *Scheduler) paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isPaused
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	close(s.stopChan)
	s.isRunning = false
}

func (s *Scheduler) shutdown() error {
	s.wg.Wait()
	if s.db != nil {
		s.logger.Debug().Msg("Closing scheduler database connection")
		return s.db.Close()
	}
	return nil
}

// calculateNextRunTime schedules the next run one cycle after the last
// completed run, or immediately when there is no history or the slot has
// already passed.
func (s *Scheduler) calculateNextRunTime() time.Time {
	lastRunTime, err := s.db.GetLastRunTime()
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Error().Err(err).Msg("Failed to determine last run time, scheduling immediately")
		}
		return time.Now()
	}

	next := lastRunTime.Add(time.Duration(s.cfg.CycleMinutes) * time.Minute)
	if next.Before(time.Now()) {
		return time.Now()
	}
	return next
}

// executeRun performs one discovery cycle, bracketing it with run history
// records. Run failures are logged and recorded; the loop keeps going.
func (s *Scheduler) executeRun(ctx context.Context) {
	if s.paused() {
		s.logger.Info().Msg("Scheduler is paused, skipping run")
		return
	}

	runID := time.Now().Format("20060102-150405")
	startTime := time.Now()

	dbRunID, err := s.db.RecordRunStart(runID, startTime)
	if err != nil {
		s.logger.Error().Err(err).Str("run_id", runID).Msg("Failed to record run start")
	}

	result, runErr := s.runner.Run(ctx, runID)
	summary := result.Summary

	status := string(models.RunStatusCompleted)
	notes := summary.Notes
	if runErr != nil {
		status = string(models.RunStatusFailed)
		notes = append(notes, runErr.Error())
		s.logger.Error().Err(runErr).Str("run_id", runID).Msg("Discovery run failed")
	}

	if dbRunID > 0 {
		if err := s.db.UpdateRunCompletion(dbRunID, time.Now(), status,
			summary.CandidatesFound, summary.UniqueCourses, summary.NewConfirmed, notes); err != nil {
			s.logger.Error().Err(err).Int64("db_id", dbRunID).Msg("Failed to record run completion")
		}
	}

	if runErr == nil && s.onResult != nil {
		s.onResult(ctx, result)
	}
}
