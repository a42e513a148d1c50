package main

import (
	"encoding/json"
	"fmt"
	"time"

	"amoebot/internal/config"
	"amoebot/internal/election"
	"amoebot/internal/shapes"
	"amoebot/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runRecord bool

// runCmd elects on a single configuration
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one election to termination and print its metrics as JSON",
	Example: `  elect run --shape ring --size 3 --seed 7
  elect run --shape blob --size 10 --fill 0.55 --record`,
	Args: cobra.NoArgs,
	RunE: runElection,
}

func init() {
	addTrialFlags(runCmd)
	runCmd.Flags().BoolVar(&runRecord, "record", false, "Append the trial to the ledger")
}

// addTrialFlags registers the flags that override the trial section of the config.
func addTrialFlags(cmd *cobra.Command) {
	cmd.Flags().String("shape", "", fmt.Sprintf("Shape to elect on %v", shapes.Names()))
	cmd.Flags().Int("size", 0, "Shape size (side, radius or blob extent)")
	cmd.Flags().Float64("fill", 0, "Blob fill probability")
	cmd.Flags().Int64("seed", 0, "Seed for the shape, scheduler and coins")
	cmd.Flags().Int64("budget", 0, "Activation budget (0 = unlimited)")
}

// trialConfig overlays explicitly set trial flags onto the loaded config.
func trialConfig(cmd *cobra.Command) (config.TrialConfig, error) {
	c := cfg.Clone()
	flags := cmd.Flags()
	if flags.Changed("shape") {
		c.Trial.Shape, _ = flags.GetString("shape")
	}
	if flags.Changed("size") {
		c.Trial.Size, _ = flags.GetInt("size")
	}
	if flags.Changed("fill") {
		c.Trial.Fill, _ = flags.GetFloat64("fill")
	}
	if flags.Changed("seed") {
		c.Trial.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("budget") {
		c.Trial.Budget, _ = flags.GetInt64("budget")
	}
	if err := c.Validate(); err != nil {
		return config.TrialConfig{}, err
	}
	return c.Trial, nil
}

func buildSystem(t config.TrialConfig) (*election.System, error) {
	nodes, err := shapes.Build(shapes.Spec{Name: t.Shape, Size: t.Size, Fill: t.Fill, Seed: t.Seed})
	if err != nil {
		return nil, err
	}
	return election.NewSystem(nodes, election.WithSeed(t.Seed), election.WithLogger(logger))
}

func runElection(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	t, err := trialConfig(cmd)
	if err != nil {
		return err
	}
	sys, err := buildSystem(t)
	if err != nil {
		return err
	}

	logger.Info("election started",
		zap.String("shape", t.Shape),
		zap.Int("size", t.Size),
		zap.Int64("seed", t.Seed),
		zap.Int("particles", len(sys.Particles())),
	)
	start := time.Now()
	runErr := sys.Run(ctx, t.Budget)
	elapsed := time.Since(start)
	m := sys.Metrics()

	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if runRecord {
		ledger, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer ledger.Close()
		trial := store.Trial{Shape: t.Shape, Size: t.Size, Fill: t.Fill, Seed: t.Seed, Duration: elapsed}
		trial.FromMetrics(m)
		if runErr != nil {
			trial.Err = runErr.Error()
		}
		if err := ledger.Record(ctx, &trial); err != nil {
			return err
		}
		logger.Info("trial recorded", zap.String("id", trial.ID), zap.String("db", ledger.Path()))
	}
	return runErr
}
