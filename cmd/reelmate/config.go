package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/vmunix/reelmate/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a commented default config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.WriteDefault(path, force); err != nil {
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	cmd.AddCommand(
		initCmd,
		&cobra.Command{
			Use:   "test [path]",
			Short: "Validate a configuration file",
			Long:  "Validates syntax, required fields, and environment variable substitution.",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := opts.configPath
				if len(args) > 0 {
					path = args[0]
				}
				return runConfigTest(cmd.OutOrStdout(), path)
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the resolved configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, path, err := config.Resolve(opts.configPath)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.jsonOutput {
					return printJSON(out, cfg)
				}
				if path == "" {
					path = "(defaults)"
				}
				fmt.Fprintf(out, "# %s\n", path)
				return toml.NewEncoder(out).Encode(cfg)
			},
		},
	)
	return cmd
}

func runConfigTest(out io.Writer, path string) error {
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return err
		}
		path = found
	}

	fmt.Fprintf(out, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.Error
		if errors.As(err, &configErr) {
			printConfigErrors(out, configErr)
			return errors.New("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(out, cfg)
	fmt.Fprintln(out, "\nConfiguration valid!")
	return nil
}

func printConfigErrors(out io.Writer, e *config.Error) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(out, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(out, "  - %s\n", m)
		}
		fmt.Fprintln(out)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(out, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(out, "  - %s\n", err)
		}
		fmt.Fprintln(out)
	}
}

func printConfigSummary(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Configuration Summary:")
	fmt.Fprintf(out, "  Album:      %s (%s)\n", cfg.Library.Album, cfg.Library.Root)
	fmt.Fprintf(out, "  Database:   %s\n", cfg.Library.Database)
	fmt.Fprintf(out, "  Extractor:  %s\n", cfg.Extractor.Endpoint)
	fmt.Fprintf(out, "  Cache:      %s", cfg.Download.CacheDir)
	if cfg.Download.KeepCache {
		fmt.Fprint(out, " (kept)")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Statuses:   %s\n", cfg.Status.StorageRoot)
	fmt.Fprintf(out, "  Log level:  %s\n", cfg.Log.Level)
}
