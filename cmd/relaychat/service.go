package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/flemzord/relaychat/internal/core"
)

// program adapts a core.App to the service manager lifecycle.
type program struct {
	opts   runOptions
	cancel context.CancelFunc
	done   chan error
}

var _ service.Interface = (*program)(nil)

// Start must not block: the app runs in its own goroutine.
func (p *program) Start(_ service.Service) error {
	app, _, err := bootstrap(p.opts, os.Stderr)
	if err != nil {
		return err
	}
	return p.run(app)
}

func (p *program) run(app *core.App) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	go func() { p.done <- app.Run(ctx) }()
	return nil
}

// Stop cancels the app and waits for its modules to shut down.
func (p *program) Stop(_ service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	return <-p.done
}

// serviceConfig describes the system service. The config path is made
// absolute because service managers start from a different directory.
func serviceConfig(opts runOptions) (*service.Config, error) {
	args := []string{"service", "run"}
	if opts.configPath != "" {
		abs, err := filepath.Abs(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
		args = append(args, "--config", abs)
	}
	if opts.dataDir != "" {
		abs, err := filepath.Abs(opts.dataDir)
		if err != nil {
			return nil, fmt.Errorf("resolving data dir: %w", err)
		}
		args = append(args, "--data-dir", abs)
	}
	if opts.logLevel != "" && opts.logLevel != "info" {
		args = append(args, "--log-level", opts.logLevel)
	}

	return &service.Config{
		Name:        "relaychat",
		DisplayName: "relaychat",
		Description: "Chat relay with persistent per-session history",
		Arguments:   args,
		Option: service.KeyValue{
			"Restart":     "on-failure",
			"UserService": true,
		},
	}, nil
}

func serviceCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage relaychat as a system service",
	}
	opts.bind(cmd.PersistentFlags())

	newService := func() (service.Service, *program, error) {
		cfg, err := serviceConfig(opts)
		if err != nil {
			return nil, nil, err
		}
		prg := &program{opts: opts}
		svc, err := service.New(prg, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("service: %w", err)
		}
		return svc, prg, nil
	}

	for _, action := range service.ControlAction {
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("%s the relaychat service", titleCase(action)),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, _, err := newService()
				if err != nil {
					return err
				}
				if err := service.Control(svc, action); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "service %s: ok\n", action)
				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether the relaychat service is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := newService()
			if err != nil {
				return err
			}
			status, err := svc.Status()
			if errors.Is(err, service.ErrNotInstalled) {
				fmt.Fprintln(cmd.OutOrStdout(), "not installed")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), statusText(status))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:    "run",
		Short:  "Run under the service manager (used by the installed unit)",
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, _, err := newService()
			if err != nil {
				return err
			}
			return svc.Run()
		},
	})

	return cmd
}

func statusText(s service.Status) string {
	switch s {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
