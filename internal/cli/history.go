package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/BartekS5/hubdb-sync/internal/config"
	"github.com/BartekS5/hubdb-sync/internal/history"
	"github.com/BartekS5/hubdb-sync/pkg/database"
	"github.com/BartekS5/hubdb-sync/pkg/models"
	"github.com/spf13/cobra"
)

func NewHistoryCmd() *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync runs recorded in MongoDB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), cmd.OutOrStdout(), limit)
		},
	}
	cmd.Flags().Int64VarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}

func runHistory(ctx context.Context, out io.Writer, limit int64) error {
	cfg, err := config.LoadHistoryConfig()
	if err != nil {
		return err
	}

	client, err := database.ConnectMongo(ctx, cfg.MongoConnString)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.WithoutCancel(ctx))

	runs, err := history.NewMongoRecorder(client, cfg.MongoDatabase).Recent(ctx, cfg.TableID, limit)
	if err != nil {
		return err
	}
	return printRuns(out, runs)
}

func printRuns(out io.Writer, runs []*models.RunResult) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSTATUS\tSTAGE\tREAD\tDELETED\tINSERTED\tDURATION\tRUN ID")
	for _, r := range runs {
		stage := r.FailedStage
		if stage == "" {
			stage = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.StartedAt.Format(time.RFC3339), r.Status, stage,
			r.RowsRead, r.RowsDeleted, r.RowsInserted,
			r.Duration().Round(time.Millisecond), r.ID)
	}
	return w.Flush()
}
