package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vmunix/reelmate/internal/status"
)

func newStatusesCmd(opts *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "statuses",
		Short: "Browse and save messaging app statuses",
		Long: `Browse and save statuses from a messaging app's status folder.

Examples:
  reelmate statuses connect          # Grant access to the status folder
  reelmate statuses list             # Newest first
  reelmate statuses save 1           # Save the first listed status
  reelmate statuses save all         # Save everything listed
  reelmate statuses disconnect       # Forget the folder`,
	}

	connect := &cobra.Command{
		Use:   "connect",
		Short: "Grant access to the status folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			got, err := a.statusLocator(dir).Connect(cmd.Context())
			if err != nil {
				return err
			}
			if !opts.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Connected %s\n", got)
			}
			return nil
		},
	}
	connect.Flags().StringVar(&dir, "dir", "", "Folder to grant instead of the detected one")

	cmd.AddCommand(
		connect,
		&cobra.Command{
			Use:   "list",
			Short: "List statuses in the connected folder",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStatusesList(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "save <n|all>",
			Short: "Save a listed status to the album",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStatusesSave(cmd, opts, args[0])
			},
		},
		&cobra.Command{
			Use:   "disconnect",
			Short: "Forget the connected folder",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(cmd, opts)
				if err != nil {
					return err
				}
				defer func() { _ = a.Close() }()
				return a.statusLocator("").Disconnect(cmd.Context())
			},
		},
	)
	return cmd
}

func listStatuses(cmd *cobra.Command, l *status.Locator) ([]status.Item, error) {
	items, err := l.List(cmd.Context())
	if errors.Is(err, status.ErrUnbound) {
		return nil, fmt.Errorf("%w; run 'reelmate statuses connect' first", err)
	}
	return items, err
}

func runStatusesList(cmd *cobra.Command, opts *rootOptions) error {
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	items, err := listStatuses(cmd, a.statusLocator(""))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return printJSON(out, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(out, "No statuses")
		return nil
	}
	fmt.Fprintf(out, "Statuses (%d):\n\n", len(items))
	fmt.Fprintf(out, "  %-4s %-6s %-40s %-10s %s\n", "#", "TYPE", "NAME", "SIZE", "MODIFIED")
	rule(out, 78)
	for i, it := range items {
		fmt.Fprintf(out, "  %-4d %-6s %-40s %-10s %s\n",
			i+1, it.Type, truncate(it.Filename, 40), formatBytes(it.SizeBytes), formatTimeAgo(it.ModTime))
	}
	return nil
}

func runStatusesSave(cmd *cobra.Command, opts *rootOptions, arg string) error {
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	locator := a.statusLocator("")
	items, err := listStatuses(cmd, locator)
	if err != nil {
		return err
	}

	if granted, err := a.gate.Ensure(cmd.Context()); err != nil {
		return err
	} else if !granted {
		return errors.New("gallery access was not granted")
	}

	selected := items
	if arg != "all" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(items) {
			return fmt.Errorf("no status #%s (have %d)", arg, len(items))
		}
		selected = items[n-1 : n]
	}

	saved, err := locator.SaveAll(cmd.Context(), selected)
	if !opts.quiet {
		for _, s := range saved {
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", s.Filename)
		}
	}
	return err
}
