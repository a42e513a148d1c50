package main

import (
	"context"
	"errors"

	"amoebot/internal/config"
	"amoebot/internal/sweep"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchCmd re-runs the configured trial whenever the config file changes
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the configured trial every time the config file changes",
	Long: `Loads the file given by --config, runs its trial, and runs it again each
time the file is saved. Invalid edits are logged and the previous
configuration stays in effect. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return errors.New("watch requires --config")
	}
	ctx, cancel := signalContext()
	defer cancel()

	w, err := config.NewWatcher(cfgFile, config.NewLoader(), logger)
	if err != nil {
		return err
	}

	trials := make(chan config.TrialConfig, 1)
	submit := func(t config.TrialConfig) {
		// Keep only the newest pending trial.
		select {
		case <-trials:
		default:
		}
		select {
		case trials <- t:
		default:
		}
	}
	w.OnChange(func(old, new *config.Config) {
		if old.Trial != new.Trial {
			submit(new.Trial)
		}
	})
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	submit(w.Current().Trial)
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-trials:
			watchTrial(ctx, t)
		}
	}
}

func watchTrial(ctx context.Context, t config.TrialConfig) {
	job := sweep.Job{Shape: t.Shape, Size: t.Size, Fill: t.Fill, Seed: t.Seed}
	trial, err := sweep.RunTrial(ctx, job, t.Budget, logger)
	if err != nil {
		logger.Info("trial interrupted", zap.Error(err))
		return
	}
	logger.Info("trial finished",
		zap.String("shape", trial.Shape),
		zap.Int("size", trial.Size),
		zap.Int64("seed", trial.Seed),
		zap.Int("particles", trial.Particles),
		zap.Int64("activations", trial.Activations),
		zap.Int64("rounds", trial.Rounds),
		zap.Int("leaders", trial.Leaders),
		zap.Bool("failed", sweep.Failed(trial)),
		zap.Duration("elapsed", trial.Duration),
	)
}
