package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultSweepTimeout = 30 * time.Second

// Sweeper completes sessions whose end time has passed.
type Sweeper interface {
	CompletePastSchedules(ctx context.Context) (int64, error)
}

// CompletionSweep runs the session completion sweep on a cron schedule.
type CompletionSweep struct {
	sweeper Sweeper
	spec    string
	timeout time.Duration
	cron    *cron.Cron
	logger  *zap.Logger
}

// NewCompletionSweep registers the sweep under spec (standard cron syntax or a
// descriptor such as "@every 1m"). Overlapping runs are skipped.
func NewCompletionSweep(sweeper Sweeper, spec string, logger *zap.Logger) (*CompletionSweep, error) {
	cronLogger := zapCronLogger{logger.Sugar()}
	job := &CompletionSweep{
		sweeper: sweeper,
		spec:    spec,
		timeout: defaultSweepTimeout,
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		logger:  logger,
	}
	if _, err := job.cron.AddFunc(spec, func() { job.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return job, nil
}

// RunOnce performs a single sweep bounded by the job timeout.
func (j *CompletionSweep) RunOnce(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	completed, err := j.sweeper.CompletePastSchedules(ctx)
	if err != nil {
		j.logger.Error("scheduled completion sweep failed", zap.Error(err))
		return 0
	}
	j.logger.Debug("scheduled completion sweep finished", zap.Int64("completed", completed))
	return completed
}

func (j *CompletionSweep) Start() {
	j.logger.Info("starting completion sweep", zap.String("schedule", j.spec))
	j.cron.Start()
}

// Stop halts the scheduler and waits for a running sweep until ctx is done.
func (j *CompletionSweep) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		j.logger.Warn("completion sweep still running at shutdown")
	}
}

// zapCronLogger adapts zap to cron.Logger.
type zapCronLogger struct {
	s *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
