package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gcibot/gcibot/internal/banner"
	"github.com/gcibot/gcibot/internal/config"
	"github.com/gcibot/gcibot/internal/health"
	"github.com/gcibot/gcibot/internal/tasks"
)

func newDoctorCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and task API reachability",
		Long: `Run health checks on the configuration and the task metadata endpoint.

Shows what's working, what's missing, and how to fix issues.

Examples:
  gcibot doctor           # Run all checks
  gcibot doctor --offline # Skip the network probe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to load config, checking defaults: %v\n", err)
				cfg = config.DefaultConfig()
			}

			var pinger health.Pinger
			if !offline {
				pinger = tasks.NewClient(cfg.Tasks)
			}

			report := health.RunChecks(cmd.Context(), cfg, pinger)
			banner.PrintHealth(cmd.OutOrStdout(), version, report)

			if errs, _ := report.Summary(); errs > 0 {
				return fmt.Errorf("%d check(s) failed", errs)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "skip the task API reachability check")

	return cmd
}
