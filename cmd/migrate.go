package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loayabdalslam/Orchestrator/pkg/migrations"
)

var listPending bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	Long: `Migrate runs every file of the migrations directory that has not been
applied yet, in lexical order, with sh. Applied ids are recorded in the state
file after each success; the first failure stops the run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd, cfg)
		if err != nil {
			return err
		}
		defer logger.Close()

		runner := migrations.NewRunner(cfg.Migrations.Dir, cfg.Migrations.StateFile, &migrations.CommandExecutor{}, logger)
		out := cmd.OutOrStdout()

		if listPending {
			pending, err := runner.Pending()
			if err != nil {
				return err
			}
			for _, id := range pending {
				fmt.Fprintln(out, id)
			}
			return nil
		}

		applied, err := runner.ApplyPending(cmd.Context())
		fmt.Fprintf(out, "Applied %d migration(s)\n", len(applied))
		return err
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&listPending, "list", false, "List pending migrations without running them")
}
