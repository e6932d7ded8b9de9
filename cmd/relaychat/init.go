package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/relaychat/internal/config"
)

// initAnswers collects the choices made in the config init wizard.
type initAnswers struct {
	Provider string
	Model    string
	Storage  string
	Bind     string
}

func defaultAnswers() initAnswers {
	return initAnswers{
		Provider: "workersai",
		Storage:  "sqlite",
		Bind:     "127.0.0.1:8787",
	}
}

// providerKeyEnv is the environment variable each backend reads its key
// from. Ollama needs none.
var providerKeyEnv = map[string]string{
	"workersai": "CLOUDFLARE_API_TOKEN",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// renderConfig turns the wizard answers into a YAML configuration. Secrets
// are referenced by environment variable name, never written to disk.
func renderConfig(a initAnswers) ([]byte, error) {
	providerCfg := map[string]any{}
	if a.Model != "" {
		providerCfg["model"] = a.Model
	}
	if env, ok := providerKeyEnv[a.Provider]; ok {
		providerCfg["api_key_env"] = env
	}
	if a.Provider == "workersai" {
		providerCfg["account_id_env"] = "CLOUDFLARE_ACCOUNT_ID"
	}

	storageCfg := map[string]any{}
	if a.Storage == "sqlite" {
		storageCfg["maintenance"] = "@daily"
	}

	doc := struct {
		Version string                    `yaml:"version"`
		Modules map[string]map[string]any `yaml:"modules"`
	}{
		Version: "1",
		Modules: map[string]map[string]any{
			"gateway.http":           {"bind": a.Bind},
			"memory." + a.Storage:    storageCfg,
			"provider." + a.Provider: providerCfg,
		},
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("rendering config: %w", err)
	}
	return out, nil
}

func runInitForm(a *initAnswers) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Inference provider").
				Options(
					huh.NewOption("Cloudflare Workers AI", "workersai"),
					huh.NewOption("OpenAI-compatible API", "openai"),
					huh.NewOption("Anthropic", "anthropic"),
					huh.NewOption("Ollama (local)", "ollama"),
				).
				Value(&a.Provider),
			huh.NewInput().
				Title("Model").
				Description("Leave empty for the provider default").
				Value(&a.Model),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("History storage").
				Options(
					huh.NewOption("SQLite file (persistent)", "sqlite"),
					huh.NewOption("In memory (lost on restart)", "inmemory"),
				).
				Value(&a.Storage),
			huh.NewInput().
				Title("Listen address").
				Value(&a.Bind).
				Validate(func(s string) error {
					_, _, err := net.SplitHostPort(s)
					return err
				}),
		),
	)
	return form.Run()
}

func configInitCmd() *cobra.Command {
	var (
		force       bool
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.SearchPaths()[0]
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			answers := defaultAnswers()
			if interactive {
				if err := runInitForm(&answers); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return errors.New("aborted")
					}
					return err
				}
			}

			raw, err := renderConfig(answers)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating config directory: %w", err)
			}
			if err := os.WriteFile(path, raw, 0o600); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			if env, ok := providerKeyEnv[answers.Provider]; ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Export %s before running relaychat start.\n", env)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", true, "Ask questions instead of writing defaults")
	return cmd
}
