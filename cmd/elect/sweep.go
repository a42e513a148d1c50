package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"amoebot/internal/store"
	"amoebot/internal/sweep"

	"github.com/spf13/cobra"
)

var (
	sweepShapes  []string
	sweepSeeds   int
	sweepOffset  int64
	sweepWorkers int
	sweepRecord  bool
)

// sweepCmd runs many elections in parallel
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run shapes x seeds in parallel and summarise the outcomes",
	Long: `Runs one election per shape and seed on a bounded worker pool. Every
trial must end with exactly one leader; the command fails otherwise.
With --record each trial is appended to the ledger under a shared sweep ID.`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	addTrialFlags(sweepCmd)
	sweepCmd.Flags().StringSliceVar(&sweepShapes, "shapes", nil, "Shapes to sweep (default from config)")
	sweepCmd.Flags().IntVar(&sweepSeeds, "seeds", 0, "Seeds per shape (default from config)")
	sweepCmd.Flags().Int64Var(&sweepOffset, "seed-offset", 0, "First seed minus one")
	sweepCmd.Flags().IntVarP(&sweepWorkers, "workers", "w", 0, "Parallel trials (default from config)")
	sweepCmd.Flags().BoolVar(&sweepRecord, "record", false, "Append every trial to the ledger")
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	t, err := trialConfig(cmd)
	if err != nil {
		return err
	}
	sc := cfg.Clone()
	if cmd.Flags().Changed("shapes") {
		sc.Sweep.Shapes = sweepShapes
	}
	if cmd.Flags().Changed("seeds") {
		sc.Sweep.Seeds = sweepSeeds
	}
	if cmd.Flags().Changed("seed-offset") {
		sc.Sweep.SeedOffset = sweepOffset
	}
	if cmd.Flags().Changed("workers") {
		sc.Sweep.Workers = sweepWorkers
	}
	sc.Trial = t
	if err := sc.Validate(); err != nil {
		return err
	}

	opts := sweep.Options{Workers: sc.Sweep.Workers, Budget: t.Budget, Logger: logger}
	if sweepRecord {
		ledger, err := store.Open(sc.Store.Path)
		if err != nil {
			return err
		}
		defer ledger.Close()
		opts.Recorder = ledger
	}

	jobs := sweep.Plan(sc.Sweep.Shapes, t.Size, t.Fill, sc.Sweep.Seeds, sc.Sweep.SeedOffset)
	report, err := sweep.Run(ctx, jobs, opts)
	if err != nil {
		return err
	}
	printReport(cmd, report)
	if report.Failures > 0 {
		return fmt.Errorf("%d of %d trials failed", report.Failures, len(report.Trials))
	}
	return nil
}

func printReport(cmd *cobra.Command, report sweep.Report) {
	type agg struct {
		trials, failures int
		total, max       int64
	}
	var order []string
	byShape := map[string]*agg{}
	for _, t := range report.Trials {
		a, ok := byShape[t.Shape]
		if !ok {
			a = &agg{}
			byShape[t.Shape] = a
			order = append(order, t.Shape)
		}
		a.trials++
		if sweep.Failed(t) {
			a.failures++
		}
		a.total += t.Activations
		a.max = max(a.max, t.Activations)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "sweep %s (%s)\n", report.SweepID, report.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, "SHAPE\tTRIALS\tFAILED\tMEAN ACT\tMAX ACT")
	for _, shape := range order {
		a := byShape[shape]
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0f\t%d\n", shape, a.trials, a.failures, float64(a.total)/float64(a.trials), a.max)
	}
	w.Flush()
}
