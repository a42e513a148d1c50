package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"amoebot/internal/store"

	"github.com/spf13/cobra"
)

var (
	historyShape   string
	historySweep   string
	historyLimit   int
	historySummary bool
)

// historyCmd lists recorded trials
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded trials, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyShape, "shape", "", "Only trials of this shape")
	historyCmd.Flags().StringVar(&historySweep, "sweep", "", "Only trials of this sweep ID")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum rows (0 = all)")
	historyCmd.Flags().BoolVar(&historySummary, "summary", false, "Aggregate per shape instead of listing trials")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ledger, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer ledger.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	if historySummary {
		sums, err := ledger.Summarize(cmd.Context(), historySweep)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "SHAPE\tTRIALS\tFAILED\tMEAN ACT\tMAX ACT")
		for _, s := range sums {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.0f\t%d\n", s.Shape, s.Trials, s.Failures, s.MeanActivation, s.MaxActivation)
		}
		return nil
	}

	trials, err := ledger.List(cmd.Context(), store.Filter{Shape: historyShape, SweepID: historySweep, Limit: historyLimit})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "WHEN\tID\tSHAPE\tSIZE\tSEED\tPARTICLES\tACTIVATIONS\tLEADERS\tERR")
	for _, t := range trials {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			t.CreatedAt.Format(time.DateTime), shortID(t.ID), t.Shape, t.Size, t.Seed,
			t.Particles, t.Activations, t.Leaders, t.Err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
