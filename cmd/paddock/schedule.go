package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/paddock-parser/internal/health"
	"github.com/yourusername/paddock-parser/internal/scheduler"
)

var runOnStart bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on the configured cron schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg, appLog)
		if err != nil {
			return err
		}
		defer a.close(appLog)

		var healthSrv *health.Server
		if cfg.Health.Enabled {
			hc := health.Config{
				ServiceName: cfg.App.Name,
				Version:     Version,
				Port:        cfg.Health.Port,
				Logger:      appLog,
				Results:     a.memory,
			}
			if a.db != nil {
				hc.DB = a.db
			}
			healthSrv = health.NewServer(hc)
			if err := healthSrv.Start(ctx); err != nil {
				return fmt.Errorf("failed to start health server: %w", err)
			}
		}

		sched, err := scheduler.NewScheduler(a.pipeline, cfg.Schedule, appLog)
		if err != nil {
			return err
		}
		if err := sched.Schedule(cfg.Schedule.Cron); err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		if healthSrv != nil {
			healthSrv.SetReady(true)
		}

		if runOnStart {
			if _, err := a.pipeline.Run(ctx); err != nil {
				appLog.WithError(err).Error("Initial pipeline run failed")
			}
		}

		appLog.WithField("next_run", sched.NextRun()).Info("Waiting for scheduled runs")
		<-ctx.Done()
		appLog.Info("Shutdown signal received")

		if healthSrv != nil {
			healthSrv.SetReady(false)
		}
		return sched.Stop()
	},
}

func init() {
	scheduleCmd.Flags().BoolVar(&runOnStart, "run-now", false, "Run the pipeline once immediately")
}
