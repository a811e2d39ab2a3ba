// Package cli wires configuration, storage and the HTTP server into the
// waterline command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/waterline/internal/config"
	"github.com/terraincognita07/waterline/internal/hydration"
	"github.com/terraincognita07/waterline/internal/logging"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
}

// environment is everything a command needs after configuration is loaded.
type environment struct {
	cfg      *config.Config
	logger   *zap.Logger
	location *time.Location
	backend  Backend
	close    func()
}

func NewRootCommand(version string) *cobra.Command {
	options := &rootOptions{}

	root := &cobra.Command{
		Use:     "waterline",
		Short:   "Self-hosted daily water intake tracker",
		Version: version,
		Long: `waterline tracks daily water intake against a personal goal.

Run without a subcommand to start the HTTP server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, options)
		},
	}
	root.PersistentFlags().StringVarP(&options.configPath, "config", "c", "", "Path to a YAML config file")

	root.AddCommand(
		newServeCommand(options),
		newExportCommand(options),
		newHistoryCommand(options),
		newInstallationsCommand(options),
	)
	return root
}

func loadEnvironment(ctx context.Context, options *rootOptions) (*environment, error) {
	cfg, err := config.Load(options.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		File:        cfg.Logging.File,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, err
	}

	location, err := cfg.Location()
	if err != nil {
		logger.Warn("falling back to UTC", zap.Error(err))
	}
	time.Local = location

	backend, closeBackend, err := openBackend(ctx, cfg.Store, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &environment{
		cfg:      cfg,
		logger:   logger,
		location: location,
		backend:  backend,
		close: func() {
			closeBackend()
			_ = logger.Sync()
		},
	}, nil
}

func (env *environment) registry() *hydration.Registry {
	return hydration.NewRegistry(env.backend, nil, hydration.Options{
		Location: env.location,
		Logger:   env.logger,
	})
}

// installationManager loads an existing installation. Unknown ids are an
// error so typos do not silently print an empty history.
func (env *environment) installationManager(ctx context.Context, registry *hydration.Registry, installationID string) (*hydration.Manager, error) {
	if installationID == "" {
		return nil, fmt.Errorf("--installation is required")
	}
	scopes, err := env.backend.ListScopes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list installations: %w", err)
	}
	known := false
	for _, scope := range scopes {
		if scope == installationID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("installation %s not found", installationID)
	}
	return registry.Manager(ctx, installationID)
}

func writeLine(out io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(out, format+"\n", args...)
}
