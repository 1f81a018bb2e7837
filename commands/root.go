package commands

import (
	"github.com/spf13/cobra"

	"creditapproval/config"
	"creditapproval/utils"
)

// app общее состояние команд: конфигурация загружается один раз перед запуском команды
type app struct {
	cfg *config.Config
}

// NewRootCommand создает корневую команду со всеми подкомандами
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "creditapproval",
		Short: "Credit approval service: eligibility checks, loans and bulk ingestion",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			if err := utils.InitLogger(cfg.Log.Level, cfg.Log.Output); err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			utils.SyncLogger()
		},
	}

	rootCmd.AddCommand(
		newServeCommand(a),
		newIngestCommand(a),
		newMigrateCommand(a),
		newTokenCommand(a),
		newHashPasswordCommand(),
	)

	return rootCmd
}

// Execute запускает CLI
func Execute() error {
	return NewRootCommand().Execute()
}
