package jobs

import (
	"context"
	"log/slog"

	"fleet/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

const DefaultExpirySchedule = "@every 5m"

type expireHandler interface {
	Handle(ctx context.Context, cmd commands.ExpireAssignmentsCommand) (int, error)
}

// ExpirySweepJob closes PENDING assignments whose deadline passed. Runs never
// overlap: a tick that fires while the previous sweep is still going is
// skipped.
type ExpirySweepJob struct {
	handler  expireHandler
	schedule string
	batch    int
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewExpirySweepJob accepts any robfig/cron spec, with seconds, or a
// descriptor such as "@every 5m". An empty schedule selects
// DefaultExpirySchedule; a zero batch selects the command default.
func NewExpirySweepJob(handler expireHandler, schedule string, batch int, logger *slog.Logger) *ExpirySweepJob {
	if schedule == "" {
		schedule = DefaultExpirySchedule
	}
	return &ExpirySweepJob{
		handler:  handler,
		schedule: schedule,
		batch:    batch,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "expiry_sweep_job"),
	}
}

func (j *ExpirySweepJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Expiry sweep job started", "schedule", j.schedule)
	return nil
}

// Run performs one sweep and reports how many assignments it closed.
func (j *ExpirySweepJob) Run(ctx context.Context) int {
	cmd, err := commands.NewExpireAssignmentsCommand(j.batch)
	if err != nil {
		j.logger.ErrorContext(ctx, "Expiry sweep misconfigured", "batch", j.batch, "error", err)
		return 0
	}

	count, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		// Handle keeps going past single failures, so count is still meaningful.
		j.logger.ErrorContext(ctx, "Expiry sweep failed", "expired", count, "error", err)
		return count
	}
	if count > 0 {
		j.logger.InfoContext(ctx, "Expired assignments", "count", count)
	}
	return count
}

// Stop waits for a running sweep to finish.
func (j *ExpirySweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Expiry sweep job stopped")
}
