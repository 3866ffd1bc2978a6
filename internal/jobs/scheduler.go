// Package jobs runs the server's background maintenance work.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"sitepulse/internal/config"
)

const cleanupInterval = 24 * time.Hour

// Scheduler is responsible for running background jobs.
type Scheduler struct {
	db      *gorm.DB
	logger  *slog.Logger
	cfg     *config.Config
	ctx     context.Context
	cancel  context.CancelFunc
	running bool

	// Serializes job executions so overlapping ticks never run concurrently.
	processingMutex sync.Mutex
	isProcessing    bool

	cleanupJob    *CleanupJob
	cleanupTicker *time.Ticker
}

// NewScheduler creates the scheduler with its job instances.
func NewScheduler(db *gorm.DB, logger *slog.Logger, cfg *config.Config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		db:         db,
		logger:     logger,
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
		cleanupJob: NewCleanupJob(db, logger, cfg),
	}
}

// executeJobSafely runs a job only if no other job is currently executing.
func (s *Scheduler) executeJobSafely(jobName string, jobFunc func() error) {
	s.processingMutex.Lock()
	if s.isProcessing {
		s.logger.Debug("Skipping job execution - previous job still running", slog.String("job", jobName))
		s.processingMutex.Unlock()
		return
	}
	s.isProcessing = true
	s.processingMutex.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic recovered in background job",
				slog.String("job", jobName),
				slog.Any("panic", r))
		}

		s.processingMutex.Lock()
		s.isProcessing = false
		s.processingMutex.Unlock()
	}()

	if err := jobFunc(); err != nil {
		s.logger.Error("Error executing job", slog.String("job", jobName), slog.Any("error", err))
	}
}

// Start begins all background jobs.
func (s *Scheduler) Start() {
	if s.running {
		s.logger.Info("Background jobs already running.")
		return
	}
	s.running = true

	if s.cfg.EventRetentionDays > 0 {
		s.startCleanupJob()
	} else {
		s.logger.Info("Event retention disabled - keeping events forever")
	}
}

func (s *Scheduler) startCleanupJob() {
	s.logger.Info("Starting cleanup job",
		slog.Duration("interval", cleanupInterval),
		slog.Int("retention_days", s.cfg.EventRetentionDays))
	s.cleanupTicker = time.NewTicker(cleanupInterval)

	go func() {
		s.executeJobSafely("cleanup", s.cleanupJob.Run)

		for {
			select {
			case <-s.cleanupTicker.C:
				s.executeJobSafely("cleanup", s.cleanupJob.Run)
			case <-s.ctx.Done():
				s.logger.Info("Cleanup job stopped")
				return
			}
		}
	}()
}

// Stop halts all background jobs.
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}

	if s.cleanupTicker != nil {
		s.cleanupTicker.Stop()
	}
	s.cancel()
	s.running = false
	s.logger.Info("Background jobs stopped")
}

// IsRunning reports whether jobs are currently running.
func (s *Scheduler) IsRunning() bool {
	return s.running
}
