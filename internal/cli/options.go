package cli

import (
	"github.com/BartekS5/hubdb-sync/internal/config"
	"github.com/spf13/cobra"
)

// SyncOptions are command-line overrides of the environment configuration.
type SyncOptions struct {
	MappingFile string
	BatchSize   int
	DryRun      bool
}

// AddFlags registers the sync flags on a command that runs the sync.
func (o *SyncOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.MappingFile, "mapping", "m", "", "Path to mapping file (default $MAPPING_FILE)")
	cmd.Flags().IntVarP(&o.BatchSize, "batch-size", "b", 0, "Rows per insert call, 1-100 (default $SYNC_BATCH_SIZE or 100)")
	cmd.Flags().BoolVar(&o.DryRun, "dry-run", false, "Extract and map only, skip every HubDB call")
}

// Apply overrides cfg with any flag that was set and revalidates it.
func (o *SyncOptions) Apply(cfg *config.Config) error {
	if o.MappingFile != "" {
		cfg.MappingFile = o.MappingFile
	}
	if o.BatchSize != 0 {
		cfg.BatchSize = o.BatchSize
	}
	return cfg.Validate()
}
