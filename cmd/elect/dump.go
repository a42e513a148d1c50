package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var dumpSteps int64

// dumpCmd prints the protocol state part way through a run
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Run a number of activations and print every particle's state as YAML",
	Long: `Prints each particle's status together with its agents: boundary
directions, state, subphase, held tokens and parked parity tokens.
Useful for inspecting a run mid-flight; --steps 0 runs to termination.`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

func init() {
	addTrialFlags(dumpCmd)
	dumpCmd.Flags().Int64Var(&dumpSteps, "steps", 100, "Activations before the dump (0 = until termination)")
}

func runDump(cmd *cobra.Command, args []string) error {
	t, err := trialConfig(cmd)
	if err != nil {
		return err
	}
	sys, err := buildSystem(t)
	if err != nil {
		return err
	}
	if dumpSteps <= 0 {
		ctx, cancel := signalContext()
		defer cancel()
		if err := sys.Run(ctx, t.Budget); err != nil {
			return err
		}
	}
	for i := int64(0); i < dumpSteps && !sys.Terminated(); i++ {
		sys.Activate()
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	if err := enc.Encode(sys.Dump()); err != nil {
		return fmt.Errorf("failed to encode dump: %w", err)
	}
	return nil
}
