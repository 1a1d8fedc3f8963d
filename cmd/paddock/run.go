package main

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, appLog)
		if err != nil {
			return err
		}
		defer a.close(appLog)

		res, err := a.pipeline.Run(cmd.Context())
		if err != nil {
			return err
		}
		appLog.WithField("run_id", res.RunID).Info(res.Stats.String())
		return nil
	},
}
