// Package commands implements the sourcetree CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/maikgreubel/sourcetree/internal/config"
	"github.com/maikgreubel/sourcetree/internal/observability"
	"github.com/maikgreubel/sourcetree/pkg/gitlib"
	"github.com/maikgreubel/sourcetree/pkg/history"
)

// env holds per-invocation dependencies shared by the subcommands.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

// loadEnv reads configuration and builds the logger from persistent flags.
func loadEnv(cmd *cobra.Command) (*env, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("read config flag: %w", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return nil, fmt.Errorf("read debug flag: %w", err)
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}

	return &env{
		cfg:    cfg,
		logger: observability.NewLogger(os.Stderr, level, cfg.Log.Format),
	}, nil
}

// openRepository opens the configured root as a git repository. The caller
// frees it.
func (e *env) openRepository(root string) (*gitlib.Repository, error) {
	repo, err := gitlib.OpenRepository(root)
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", root, err)
	}

	return repo, nil
}

// walkMode maps the configured first-parent flag onto a walk mode.
func (e *env) walkMode() history.WalkMode {
	if e.cfg.History.FirstParent {
		return history.WalkFirstParent
	}

	return history.WalkAllParents
}
