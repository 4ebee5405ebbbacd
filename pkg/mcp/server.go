// Package mcp implements a Model Context Protocol server exposing source
// tree metrics and commit history tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/maikgreubel/sourcetree/internal/observability"
	"github.com/maikgreubel/sourcetree/pkg/gitlib"
	"github.com/maikgreubel/sourcetree/pkg/history"
	"github.com/maikgreubel/sourcetree/pkg/metrics"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "sourcetree"
	// serverVersion is the MCP server implementation version.
	serverVersion = "1.0.0"

	// toolCount is the expected number of registered tools.
	toolCount = 11
)

// InfoProvider supplies repository summary data for the repo info tool.
type InfoProvider interface {
	Info(ctx context.Context) (gitlib.RepoInfo, error)
}

// ServerDeps holds injectable dependencies for the MCP server.
// Root and Lister are required; history tools report an error per call
// when Backend is nil, so a plain directory still serves the tree tools.
type ServerDeps struct {
	// Root is the tree root all tree tools operate on.
	Root string

	// Lister enumerates and reads files under Root.
	Lister metrics.Lister

	// Workers bounds the aggregation worker pool. Zero means per-CPU.
	Workers int

	// Backend serves commit log and diff operations. May be nil.
	Backend history.Backend

	// Info serves repository summaries. May be nil.
	Info InfoProvider

	// History holds walk and search bounds applied to history tools.
	History HistoryOptions

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional instrument set. Nil disables per-tool metrics.
	Metrics *observability.ToolMetrics
}

// HistoryOptions bounds the history tools.
type HistoryOptions struct {
	Limit       int
	FirstParent bool
	MaxResults  int
	Lookahead   int
}

// Server wraps the MCP SDK server with sourcetree tool registrations.
type Server struct {
	inner   *mcpsdk.Server
	deps    ServerDeps
	mu      sync.RWMutex
	tools   []string
	metrics *observability.ToolMetrics
}

// NewServer creates a new MCP server with all sourcetree tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		opts,
	)

	srv := &Server{
		inner:   inner,
		deps:    deps,
		tools:   make([]string, 0, toolCount),
		metrics: deps.Metrics,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	err := s.inner.Run(ctx, &mcpsdk.StdioTransport{})
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// registerTools adds all sourcetree MCP tools to the server.
func (s *Server) registerTools() {
	register(s, ToolNameFiles, filesToolDescription, s.handleFiles)
	register(s, ToolNameDirectories, directoriesToolDescription, s.handleDirectories)
	register(s, ToolNameFileInfo, fileInfoToolDescription, s.handleFileInfo)
	register(s, ToolNameFileContent, fileContentToolDescription, s.handleFileContent)
	register(s, ToolNameLanguages, languagesToolDescription, s.handleLanguages)
	register(s, ToolNameCodeMetrics, codeMetricsToolDescription, s.handleCodeMetrics)
	register(s, ToolNameLineCounts, lineCountsToolDescription, s.handleLineCounts)
	register(s, ToolNameRepoInfo, repoInfoToolDescription, s.handleRepoInfo)
	register(s, ToolNameLastCommits, lastCommitsToolDescription, s.handleLastCommits)
	register(s, ToolNameCommitDiff, commitDiffToolDescription, s.handleCommitDiff)
	register(s, ToolNameSearchCommits, searchCommitsToolDescription, s.handleSearchCommits)
}

// register adds one tool with metrics instrumentation and tracks its name.
func register[Input any](
	s *Server,
	name, description string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        name,
		Description: description,
	}, withMetrics(s.metrics, name, handler))

	s.trackTool(name)
}

// trackTool records a registered tool name.
func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// withMetrics wraps an MCP tool handler to record instrumentation per call.
func withMetrics[Input any](
	m *observability.ToolMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if m == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		result, output, err := handler(ctx, req, input)

		observed := err
		if observed == nil && result != nil && result.IsError {
			observed = errToolFailed
		}

		m.Observe(toolName, start, observed)

		return result, output, err
	}
}
