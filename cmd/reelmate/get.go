package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vmunix/reelmate/internal/download"
	"github.com/vmunix/reelmate/internal/extractor"
)

func newGetCmd(opts *rootOptions) *cobra.Command {
	var quality string
	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Download a video into the album",
		Long: `Resolves an Instagram or Facebook post to its video and saves it into
the ReelMate album.

Examples:
  reelmate get https://www.instagram.com/reel/Cxyz/
  reelmate get --quality medium https://fb.watch/abc/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, opts, args[0], quality)
		},
	}
	cmd.Flags().StringVar(&quality, "quality", "best", "Quality to download (best, medium)")
	return cmd
}

func runGet(cmd *cobra.Command, opts *rootOptions, sourceURL, qualityFlag string) error {
	q, err := extractor.ParseQuality(qualityFlag)
	if err != nil {
		return err
	}

	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := cmd.Context()
	stop := a.startBackground(ctx)
	defer stop()

	desc, err := a.extractor.Extract(ctx, sourceURL)
	if err != nil {
		return err
	}
	mediaURL, err := desc.URLFor(q)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var progress download.ProgressFunc
	if !opts.quiet && !opts.jsonOutput {
		fmt.Fprintf(out, "Downloading %q (%s)\n", desc.Title, q)
		progress = progressPrinter(cmd.ErrOrStderr())
	}

	rec, err := a.downloads.Download(ctx, download.Request{
		URL:       mediaURL,
		Quality:   q,
		Title:     desc.Title,
		SourceURL: desc.SourceURL,
		Platform:  desc.Platform,
	}, progress)
	if progress != nil {
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return printJSON(out, rec)
	}
	if !opts.quiet {
		fmt.Fprintf(out, "Saved %s (%s) to album %s\n", rec.Filename, rec.SizeText, a.cfg.Library.Album)
	}
	return nil
}

func progressPrinter(w io.Writer) download.ProgressFunc {
	return func(f float64) {
		fmt.Fprintf(w, "\r  %s", progressBar(f, 30))
	}
}

func newInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <url>",
		Short: "Show what a link resolves to without downloading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			desc, err := a.extractor.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, desc)
			}
			fmt.Fprintf(out, "  %-10s %s\n", "Title:", desc.Title)
			fmt.Fprintf(out, "  %-10s %s\n", "Platform:", desc.Platform)
			for _, q := range desc.Qualities() {
				u, _ := desc.URLFor(q)
				fmt.Fprintf(out, "  %-10s %s\n", string(q)+":", u)
			}
			if desc.ThumbnailURL != "" {
				fmt.Fprintf(out, "  %-10s %s\n", "Thumbnail:", desc.ThumbnailURL)
			}
			return nil
		},
	}
}
