package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"creditapproval/database"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DB.Driver != "postgres" {
				return errors.New("миграции применяются только к PostgreSQL")
			}

			down := len(args) == 1 && args[0] == "down"
			if err := database.RunMigrations(a.cfg, down); err != nil {
				return err
			}

			direction := "up"
			if down {
				direction = "down"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied: %s\n", direction)
			return nil
		},
	}
}
