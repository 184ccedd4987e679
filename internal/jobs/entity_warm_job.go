package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// EntityWarmJobName is the name of the entity cache warm job
const EntityWarmJobName = "entity_warm"

// EntityWarmer refreshes the selectable-entity snapshots. The interface lets
// the job run without importing the service package directly.
type EntityWarmer interface {
	Warm(ctx context.Context)
}

// EntityWarmJob periodically refreshes the entity cache so the form's first
// fetch after an idle period does not pay the full pagination walk.
type EntityWarmJob struct {
	warmer  EntityWarmer
	logger  *zap.Logger
	timeout time.Duration
}

// NewEntityWarmJob creates a new entity cache warm job.
// The timeout bounds one full warm pass across all kinds.
func NewEntityWarmJob(warmer EntityWarmer, logger *zap.Logger, timeout time.Duration) *EntityWarmJob {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &EntityWarmJob{
		warmer:  warmer,
		logger:  logger,
		timeout: timeout,
	}
}

// RegisterEntityWarmJob wires the warm job onto the scheduler. When
// runAtStartup is set one pass runs immediately in the background so the
// first form load finds a warm cache.
func RegisterEntityWarmJob(s *Scheduler, warmer EntityWarmer, logger *zap.Logger, cronExpr string, timeout time.Duration, runAtStartup bool) error {
	job := NewEntityWarmJob(warmer, logger, timeout)

	if err := s.AddJob(EntityWarmJobName, cronExpr, job.Run); err != nil {
		return err
	}

	if runAtStartup {
		go job.Run()
	}

	return nil
}

// Run executes one warm pass.
func (j *EntityWarmJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.warmer.Warm(ctx)
	j.logger.Info("entity warm pass finished",
		zap.Duration("duration", time.Since(start)))
}
