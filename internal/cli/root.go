// Package cli wires the sync job into a Cobra command tree.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	opts := &SyncOptions{}

	rootCmd := &cobra.Command{
		Use:   "hubdb-sync",
		Short: "Replace a HubDB table with the rows of a warehouse view",
		Long: `hubdb-sync reads a fixed report view from the SQL Server data warehouse,
replaces every row of the configured HubDB table with the result and publishes
the table. Run without arguments it performs one sync and exits non-zero on
any failure.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), opts)
		},
	}

	opts.AddFlags(rootCmd)

	rootCmd.AddCommand(NewScheduleCmd(opts))
	rootCmd.AddCommand(NewHistoryCmd())

	return rootCmd
}
