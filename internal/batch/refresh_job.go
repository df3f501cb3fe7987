package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"voicecollect/internal/session"
)

// InstructionRefreshJob periodically re-derives the session instructions
// from the stored profile. Sessions already refresh on start and saves
// refresh immediately; the job covers out-of-band store changes, such as
// an operator replacing the data file.
type InstructionRefreshJob struct {
	configurator *session.Configurator
	logger       *slog.Logger
}

func NewInstructionRefreshJob(configurator *session.Configurator, logger *slog.Logger) *InstructionRefreshJob {
	if configurator == nil || logger == nil {
		panic("InstructionRefreshJob dependencies cannot be nil")
	}
	return &InstructionRefreshJob{
		configurator: configurator,
		logger:       logger.With("job", "InstructionRefresh"),
	}
}

func (j *InstructionRefreshJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting scheduled instruction refresh job.")

	if err := j.configurator.Refresh(ctx); err != nil {
		j.logger.ErrorContext(ctx, "Instruction refresh job failed.", slog.Any("error", err))
		return fmt.Errorf("instruction refresh failed: %w", err)
	}

	j.logger.InfoContext(ctx, "Instruction refresh job finished.", slog.Duration("duration", time.Since(startTime)))
	return nil
}
