package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vmunix/reelmate/internal/apperr"
)

var version = "dev"

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
	jsonOutput bool
	quiet      bool
	assumeYes  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "reelmate",
		Short: "Save social-media videos and messaging statuses to your gallery",
		Long: `reelmate - save social-media videos and messaging statuses

Paste an Instagram or Facebook link to download the video into the
ReelMate album, browse what you have downloaded, and save statuses from
a messaging app's status folder.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: discovered)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only print errors")
	cmd.PersistentFlags().BoolVarP(&opts.assumeYes, "yes", "y", false, "Answer yes to every prompt")

	cmd.AddCommand(
		newGetCmd(opts),
		newInfoCmd(opts),
		newDownloadsCmd(opts),
		newStatusesCmd(opts),
		newActivityCmd(opts),
		newConfigCmd(opts),
	)

	cmd.Version = version
	cmd.SetVersionTemplate("reelmate {{.Version}}\n")
	return cmd
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", apperr.UserMessage(err))
		stop()
		os.Exit(1)
	}
}
