package cli

import (
	"context"
	"errors"

	"github.com/BartekS5/hubdb-sync/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func NewScheduleCmd(opts *SyncOptions) *cobra.Command {
	var expr string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the sync on a cron schedule until interrupted",
		Long: `Run the sync repeatedly on a standard 5-field cron expression. A failed run is
logged and the schedule continues; a run that is still going when the next one
is due causes that tick to be skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd.Context(), opts, expr)
		},
	}
	cmd.Flags().StringVar(&expr, "cron", "", "Cron expression (default $SYNC_SCHEDULE)")
	opts.AddFlags(cmd)
	return cmd
}

func runSchedule(ctx context.Context, opts *SyncOptions, expr string) error {
	job, err := newSyncJob(ctx, opts)
	if err != nil {
		return err
	}
	defer job.close()

	if expr == "" {
		expr = job.cfg.Schedule
	}
	if expr == "" {
		return errors.New("no schedule given: pass --cron or set SYNC_SCHEDULE")
	}

	c, err := newScheduler(ctx, expr, job.run)
	if err != nil {
		return err
	}

	c.Start()
	logger.Infof("Scheduled sync of table %s with %q", job.cfg.TableID, expr)

	<-ctx.Done()
	logger.Info("Shutting down scheduler, waiting for a running sync to finish...")
	<-c.Stop().Done()
	return nil
}

// newScheduler registers run on expr. Overlapping ticks are skipped.
func newScheduler(ctx context.Context, expr string, run func(context.Context) error) (*cron.Cron, error) {
	cronLog := cron.PrintfLogger(logger.Std())
	c := cron.New(cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)))
	if _, err := c.AddFunc(expr, func() {
		if err := run(ctx); err != nil {
			logger.Errorf("Scheduled sync failed: %v", err)
		}
	}); err != nil {
		return nil, err
	}
	return c, nil
}
