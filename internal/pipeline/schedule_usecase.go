package pipeline

import (
	"context"
	"time"
)

type Runner interface {
	Execute(ctx context.Context) (Report, error)
}

type SchedulerLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// ScheduleUseCase repeats a run on a fixed interval. A failed run is logged
// and the next tick proceeds.
type ScheduleUseCase struct {
	runner   Runner
	interval time.Duration
	logger   SchedulerLogger
}

func NewScheduleUseCase(runner Runner, interval time.Duration, logger SchedulerLogger) *ScheduleUseCase {
	return &ScheduleUseCase{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

func (uc *ScheduleUseCase) Execute(ctx context.Context) error {
	uc.logger.Info("starting scheduler", "interval", uc.interval)

	uc.runCycle(ctx)

	ticker := time.NewTicker(uc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			uc.runCycle(ctx)
		}
	}
}

func (uc *ScheduleUseCase) runCycle(ctx context.Context) {
	report, err := uc.runner.Execute(ctx)
	if err != nil {
		uc.logger.Warn("run failed", "run_id", report.RunID, "error", err)
		return
	}

	uc.logger.Info("run finished", "run_id", report.RunID, "selected", report.Selected, "published", report.Published)
}
