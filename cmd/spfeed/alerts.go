package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/crimson-sun/spfeed/internal/alerts"
	"github.com/crimson-sun/spfeed/internal/pipeline"
)

var alertKeys = map[string]string{
	"active":       "alerts.active_only",
	"dedup":        "alerts.dedup",
	"urgent-first": "alerts.urgent_first",
	"strict":       "alerts.strict",
}

func init() {
	commandKeys["alerts"] = alertKeys
}

func addAlertFlags(f *pflag.FlagSet) {
	f.Bool("active", false, "keep only alerts whose start/end window contains the current time")
	f.Bool("dedup", true, "drop repeated alerts")
	f.Bool("urgent-first", false, "list urgent alerts before informational ones")
	f.Bool("strict", false, "fail on the first item that cannot be mapped instead of skipping it")
}

func (a *app) alertOptions() alerts.Options {
	c := a.cfg.Alerts
	return alerts.Options{
		ActiveOnly:  c.ActiveOnly,
		Dedup:       c.Dedup,
		UrgentFirst: c.UrgentFirst,
		Strict:      c.Strict,
	}
}

func newAlertsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Map an alert list payload to alert records",
		Long: `Reads alert list items (a bare JSON array or an OData envelope) and
writes one record per alert: message, moreInformationUrl and type
(1 = Information, 2 = Urgent).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(func(p *pipeline.Pipeline) error {
				_, err := p.RunAlerts(cmd.Context(), a.alertOptions())
				return err
			})
		},
	}
	addAlertFlags(cmd.Flags())
	return cmd
}
