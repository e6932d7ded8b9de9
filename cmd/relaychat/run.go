package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/flemzord/relaychat/internal/config"
	"github.com/flemzord/relaychat/internal/core"
	"github.com/flemzord/relaychat/internal/security"
)

// runOptions are the flags shared by every command that loads modules.
type runOptions struct {
	configPath string
	dataDir    string
	logLevel   string
}

func (o *runOptions) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configPath, "config", "c", "", "Path to configuration file")
	fs.StringVar(&o.dataDir, "data-dir", "", "Directory for persistent data (default $XDG_DATA_HOME/relaychat)")
	fs.StringVar(&o.logLevel, "log-level", "info", "Minimum log level (debug, info, warn, error)")
}

// bootstrap loads and validates the configuration, builds the redacting
// logger and provisions every configured module. The returned App has not
// been started.
func bootstrap(opts runOptions, logOut io.Writer) (*core.App, []string, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level %q: %w", opts.logLevel, err)
	}

	cfgPath := opts.configPath
	if cfgPath == "" {
		resolved, err := config.ResolvePath()
		if err != nil {
			return nil, nil, err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	// Modules add their API keys as literals during Provision.
	redactor := security.NewRedactor()
	inner := slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})
	logger := slog.New(security.NewRedactingHandler(inner, redactor))

	dataDir := opts.dataDir
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}

	appCtx := core.NewAppContext(logger, dataDir).WithModuleConfigs(cfg.Modules)
	appCtx.RegisterService(security.ServiceName, redactor)

	app := core.NewApp(appCtx)
	ids := config.Resolve(cfg)
	if err := app.LoadModules(ids); err != nil {
		return nil, nil, err
	}
	logger.Info("configuration loaded", "path", cfgPath, "modules", len(ids), "data_dir", dataDir)
	return app, ids, nil
}
