package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configFile  string
	debugOutput bool
	noColor     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "orchestrator",
	Short: "Turn a request into a reviewed, deployed project",
	Long: `Orchestrator drives three model-backed agents through one pipeline:
the planner breaks a request into a named project and tasks, the developer
writes the files for every task, and after you approve the combined diff the
deployer writes them to disk.

Available commands:
  create   - Plan, generate, review and deploy a project
  migrate  - Apply pending migrations
  version  - Print version information`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .orchestrator/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugOutput, "debug", false, "Show DEBUG records on the console")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(migrateCmd)
}
