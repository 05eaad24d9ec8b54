package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"newsreel/internal/workflow"
)

// newRunCommand processes the queue in the foreground until it drains, for
// single-shot use without the daemon.
func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process queued jobs in the foreground until the queue drains",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if reclaimed, err := store.ResetStuckProcessing(runCtx); err != nil {
				return err
			} else if reclaimed > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Resumed %d interrupted jobs\n", reclaimed)
			}

			mgr := workflow.NewManager(cfg, store, logger)
			mgr.ConfigureStages(workflow.DefaultStageSet(cfg, store, logger))
			if err := mgr.Start(runCtx); err != nil {
				return err
			}
			defer mgr.Stop()

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-runCtx.Done():
					fmt.Fprintln(cmd.OutOrStdout(), "Interrupted; jobs resume on next run")
					return nil
				case <-ticker.C:
				}

				health, err := store.Health(runCtx)
				if err != nil {
					return err
				}
				if health.InFlight() == 0 {
					fmt.Fprintf(cmd.OutOrStdout(),
						"Queue drained: %d completed, %d failed\n", health.Completed, health.Failed)
					return nil
				}
			}
		},
	}
}
