package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vmunix/reelmate/internal/catalog"
	"github.com/vmunix/reelmate/internal/events"
)

func newDownloadsCmd(opts *rootOptions) *cobra.Command {
	var platform, search string
	cmd := &cobra.Command{
		Use:   "downloads",
		Short: "Show and manage downloaded videos",
		Long: `Show and manage videos in the album.

Examples:
  reelmate downloads                      # Newest first
  reelmate downloads --platform instagram # Only Instagram videos
  reelmate downloads --search "surf"      # Fuzzy title search
  reelmate downloads show 42              # Details for #42
  reelmate downloads delete 42            # Remove file and record
  reelmate downloads stats                # Storage used
  reelmate downloads clean                # Drop abandoned partial downloads`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownloadsList(cmd, opts, platform, search)
		},
	}
	cmd.Flags().StringVarP(&platform, "platform", "p", "", "Filter by platform (instagram, facebook, other)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Fuzzy-match titles")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one download",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDownloadsShow(cmd, opts, args[0])
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a download from the album",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDownloadsDelete(cmd, opts, args[0])
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show storage used by the album",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDownloadsStats(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "rescan",
			Short: "Index files found in the album folder",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDownloadsRescan(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove abandoned partial downloads and old activity",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDownloadsClean(cmd, opts)
			},
		},
	)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID: %s", s)
	}
	return id, nil
}

func runDownloadsList(cmd *cobra.Command, opts *rootOptions, platform, search string) error {
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	records, err := a.catalog.List(cmd.Context())
	if err != nil {
		return err
	}
	records = catalog.FilterPlatform(records, platform)

	out := cmd.OutOrStdout()
	if search != "" {
		matches := catalog.Rank(records, search)
		if opts.jsonOutput {
			return printJSON(out, matches)
		}
		ranked := make([]catalog.Record, 0, len(matches))
		for _, m := range matches {
			ranked = append(ranked, m.Record)
		}
		records = ranked
	} else if opts.jsonOutput {
		return printJSON(out, records)
	}

	printRecords(out, records)
	return nil
}

func printRecords(w io.Writer, records []catalog.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No downloads")
		return
	}

	fmt.Fprintf(w, "Downloads (%d):\n\n", len(records))
	fmt.Fprintf(w, "  %-5s %-40s %-8s %-10s %-10s %s\n", "ID", "TITLE", "QUALITY", "SIZE", "PLATFORM", "SAVED")
	rule(w, 90)
	for _, r := range records {
		platform := r.Platform
		if platform == "" {
			platform = "-"
		}
		fmt.Fprintf(w, "  %-5d %-40s %-8s %-10s %-10s %s\n",
			r.ID, truncate(r.Title, 40), r.Quality, r.SizeText, platform, formatTimeAgo(r.CreatedAt))
	}
}

func runDownloadsShow(cmd *cobra.Command, opts *rootOptions, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	r, err := a.catalog.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return printJSON(out, r)
	}
	fmt.Fprintf(out, "Download #%d\n\n", r.ID)
	fmt.Fprintf(out, "  %-10s %s\n", "Title:", r.Title)
	fmt.Fprintf(out, "  %-10s %s\n", "File:", r.Path())
	fmt.Fprintf(out, "  %-10s %s\n", "Quality:", r.Quality)
	fmt.Fprintf(out, "  %-10s %s\n", "Size:", r.SizeText)
	if r.SourceURL != "" {
		fmt.Fprintf(out, "  %-10s %s\n", "Source:", r.SourceURL)
	}
	if r.Platform != "" {
		fmt.Fprintf(out, "  %-10s %s\n", "Platform:", r.Platform)
	}
	fmt.Fprintf(out, "  %-10s %s (%s)\n", "Saved:", r.CreatedAt.Local().Format("2006-01-02 15:04"), formatTimeAgo(r.CreatedAt))

	history, err := a.eventLog.ForEntity(events.EntityAsset, r.ID)
	if err == nil && len(history) > 0 {
		reg := events.DefaultRegistry()
		fmt.Fprintf(out, "\n  Event History:\n")
		for _, e := range history {
			fmt.Fprintf(out, "    %s  %-20s %s\n", e.OccurredAt.Local().Format("2006-01-02 15:04"), e.EventType, reg.Describe(e))
		}
	}
	return nil
}

func runDownloadsDelete(cmd *cobra.Command, opts *rootOptions, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	r, err := a.catalog.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	ok, err := a.prompter.Confirm(cmd.Context(), fmt.Sprintf("Delete %q (%s)?", r.Title, r.Filename))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Canceled")
		return nil
	}

	if _, err := a.catalog.Delete(cmd.Context(), id); err != nil {
		return err
	}
	if !opts.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d %s\n", id, r.Filename)
	}
	return nil
}

func runDownloadsStats(cmd *cobra.Command, opts *rootOptions) error {
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	s, err := a.catalog.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return printJSON(out, s)
	}
	fmt.Fprintf(out, "Album %s\n\n", a.cfg.Library.Album)
	fmt.Fprintf(out, "  %-14s %d (%s)\n", "Videos:", s.Videos, formatBytes(s.VideoBytes))
	if s.UnknownSizes > 0 {
		fmt.Fprintf(out, "  %-14s %d\n", "Unknown size:", s.UnknownSizes)
	}
	fmt.Fprintf(out, "  %-14s %d (%s)\n", "All assets:", s.AllAssets, formatBytes(s.AllBytes))
	for _, platform := range slices.Sorted(maps.Keys(s.ByPlatform)) {
		fmt.Fprintf(out, "  %-14s %d\n", platform+":", s.ByPlatform[platform])
	}
	if s.Newest != nil {
		fmt.Fprintf(out, "  %-14s %s\n", "Last saved:", formatTimeAgo(*s.Newest))
	}
	return nil
}

func runDownloadsRescan(cmd *cobra.Command, opts *rootOptions) error {
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	res, err := a.importer.Rescan(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return printJSON(out, res)
	}
	fmt.Fprintf(out, "Indexed %d new file(s)\n", len(res.Added))
	for _, m := range res.Missing {
		fmt.Fprintf(out, "  missing: %s\n", m.Path)
	}
	return nil
}

func runDownloadsClean(cmd *cobra.Command, opts *rootOptions) error {
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	res, err := a.janitor.Sweep()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return printJSON(out, res)
	}
	fmt.Fprintf(out, "Removed %d partial download(s) (%s)\n", res.RemovedFiles, formatBytes(res.RemovedBytes))
	if res.PrunedEvents > 0 {
		fmt.Fprintf(out, "Pruned %d activity event(s)\n", res.PrunedEvents)
	}
	return nil
}
