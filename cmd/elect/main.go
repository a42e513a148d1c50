package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"amoebot/internal/config"
	"amoebot/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	dbPath  string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "elect",
	Short: "Leader election for anonymous particles on the triangular grid",
	Long: `elect runs the agent-cycle leader election on generated particle
configurations. Every boundary of the configuration elects independently;
exactly one particle on the outer boundary ends as the leader.

Settings come from defaults, then a YAML or JSON file (--config or
amoebot.yaml on the search path), then AMOEBOT_* environment variables,
then command-line flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.NewLoader().Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("db") {
			loaded.Store.Path = dbPath
		}
		cfg = loaded

		logger, err = logging.New(logging.Options{
			Verbose: verbose,
			Console: cfg.Log.Format == "console",
			Level:   cfg.Log.Level,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging, including agent transitions")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Trial ledger path (overrides store.path)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
