package main

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/spfeed/internal/pipeline"
)

func init() {
	keys := map[string]string{
		"debounce": "alerts.debounce",
		"recheck":  "alerts.recheck",
	}
	maps.Copy(keys, alertKeys)
	commandKeys["watch"] = keys
}

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow an alert list payload and emit the active alerts when they change",
		Long: `Re-reads the payload whenever it changes and, on the --recheck schedule or
when an alert window opens or closes, writes a snapshot of every alert
that is active at that moment. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := pipeline.WatchOptions{
				Alerts:   a.alertOptions(),
				Debounce: a.cfg.Alerts.Debounce,
				Recheck:  a.cfg.Alerts.Recheck,
			}
			return a.run(func(p *pipeline.Pipeline) error {
				err := p.WatchAlerts(cmd.Context(), opts)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
	f := cmd.Flags()
	addAlertFlags(f)
	f.Duration("debounce", 250*time.Millisecond, "wait this long for the payload to settle before evaluating it")
	f.String("recheck", "@every 1m", `cron schedule for re-evaluating alert windows ("" disables)`)
	return cmd
}
