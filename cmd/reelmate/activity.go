package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/reelmate/internal/events"
)

func newActivityCmd(opts *rootOptions) *cobra.Command {
	var (
		limit int
		since time.Duration
		types []string
	)
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent activity",
		Long: `Show recent downloads, imports and status saves, newest first.

Examples:
  reelmate activity
  reelmate activity --since 24h
  reelmate activity --type download.failed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			q := events.Query{Types: types, Limit: limit}
			if limit <= 0 {
				q.Limit = 20
			}
			if since > 0 {
				q.Since = time.Now().Add(-since)
			}
			recent, err := a.eventLog.List(q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, recent)
			}
			if len(recent) == 0 {
				fmt.Fprintln(out, "No activity")
				return nil
			}

			reg := events.DefaultRegistry()
			fmt.Fprintf(out, "Recent Activity (%d):\n\n", len(recent))
			fmt.Fprintf(out, "  %-16s %-22s %-12s %s\n", "TIME", "TYPE", "ENTITY", "DETAILS")
			rule(out, 80)
			for _, e := range recent {
				entity := e.EntityType
				if e.EntityID != 0 {
					entity = fmt.Sprintf("%s/%d", e.EntityType, e.EntityID)
				}
				fmt.Fprintf(out, "  %-16s %-22s %-12s %s\n",
					formatTimeAgo(e.OccurredAt), e.EventType, entity, truncate(reg.Describe(e), 60))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events to show")
	cmd.Flags().DurationVar(&since, "since", 0, "Only show events newer than this (e.g. 24h)")
	cmd.Flags().StringSliceVar(&types, "type", nil, "Only show these event types")
	return cmd
}
