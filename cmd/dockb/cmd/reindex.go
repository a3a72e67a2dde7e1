package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dockb/dockb/internal/output"
)

func newReindexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Reconcile the index with on-disk documents",
		Long: `Scan the document store and re-index new or changed documents.

Unchanged documents are skipped based on their recorded update time.
Per-document failures are reported but never abort the scan.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			service, _, cleanup, err := buildService(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := service.Reindex(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			fmt.Print(output.NewFormatter().ScanReport(report))
			return nil
		},
	}

	return cmd
}
