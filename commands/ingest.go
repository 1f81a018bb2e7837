package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newIngestCommand(a *app) *cobra.Command {
	var store string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load customers and loans from the ingestion directory and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := useStore(cfg, store); err != nil {
				return err
			}

			st, closeStore, err := openStore(cfg, cfg.DB.Driver == "postgres")
			if err != nil {
				return err
			}
			defer closeStore()

			lock, closeLock, err := newJobLock(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeLock()

			run, runErr := newIngestionService(cfg, st, lock).Run(cmd.Context())
			if run != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(run); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&store, "store", "", "storage backend: postgres or memory (overrides DB_DRIVER)")

	return cmd
}
