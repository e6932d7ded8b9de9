// Package main is the entry point for the relaychat CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flemzord/relaychat/internal/core"

	// Compiled-in modules.
	_ "github.com/flemzord/relaychat/internal/gateway"
	_ "github.com/flemzord/relaychat/modules/memory/inmemory"
	_ "github.com/flemzord/relaychat/modules/memory/sqlite"
	_ "github.com/flemzord/relaychat/modules/provider/anthropic"
	_ "github.com/flemzord/relaychat/modules/provider/ollama"
	_ "github.com/flemzord/relaychat/modules/provider/openai"
	_ "github.com/flemzord/relaychat/modules/provider/workersai"
	_ "github.com/flemzord/relaychat/modules/telemetry/otlp"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "relaychat",
		Short:         "A minimal chat relay with persistent per-session history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), startCmd(), configCmd(), serviceCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled modules",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "relaychat %s (commit: %s, built: %s)\n", version, commit, date)
			fmt.Fprintln(out, "\nCompiled modules:")
			for _, mod := range core.GetModules() {
				fmt.Fprintf(out, "  %s\n", mod.ID)
			}
		},
	}
}

func startCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start relaychat with all configured modules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := bootstrap(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
	opts.bind(cmd.Flags())
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate configuration and provision every module without starting them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.configPath = args[0]
			}
			app, ids, err := bootstrap(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration OK (%d modules)\n", len(ids))
			for _, id := range ids {
				fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		},
	}
	opts.bind(cmd.Flags())
	return cmd
}
