package commands

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/maikgreubel/sourcetree/internal/observability"
	"github.com/maikgreubel/sourcetree/pkg/mcp"
	"github.com/maikgreubel/sourcetree/pkg/metrics"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp [path]",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes the source tree and its history as tools AI agents can
discover and invoke: file listings, per-language metrics, commit logs,
commit diffs and diff pattern search. History tools report an error when
the tree is not a git repository; the tree tools keep working.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			environment, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			root := environment.cfg.Root
			if len(args) > 0 {
				root = args[0]
			}

			// stdio transport owns stdout; logs always go to stderr as JSON
			// so agents never read log noise as protocol frames.
			logger := observability.NewLogger(os.Stderr, environment.cfg.Log.Level, "json")

			deps := mcp.ServerDeps{
				Root:    root,
				Lister:  metrics.DirLister{MaxFileSize: environment.cfg.Metrics.MaxFileSize},
				Workers: environment.cfg.Metrics.Workers,
				History: mcp.HistoryOptions{
					Limit:       environment.cfg.History.Limit,
					FirstParent: environment.cfg.History.FirstParent,
					MaxResults:  environment.cfg.History.MaxResults,
					Lookahead:   environment.cfg.History.Lookahead,
				},
				Logger:  logger,
				Metrics: observability.NewToolMetrics(),
			}

			repo, err := environment.openRepository(root)
			if err == nil {
				defer repo.Free()

				deps.Backend = repo
				deps.Info = repo
			} else {
				logger.Warn("history tools disabled", "error", err)
			}

			if addr := environment.cfg.Serve.InstrumentAddr; addr != "" {
				go serveInstrumentation(addr, deps.Metrics, logger)
			}

			srv := mcp.NewServer(deps)

			logger.Info("mcp server listening on stdio",
				"root", root, "tools", srv.ListToolNames())

			return srv.Run(cmd.Context())
		},
	}

	return cmd
}

// serveInstrumentation exposes the Prometheus scrape endpoint on addr.
func serveInstrumentation(addr string, m *observability.ToolMetrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	err := http.ListenAndServe(addr, mux)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("instrumentation endpoint failed", "error", err)
	}
}
