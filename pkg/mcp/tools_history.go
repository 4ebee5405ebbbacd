package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/maikgreubel/sourcetree/pkg/history"
)

// defaultLastCommits is the count served when the caller does not set one.
const defaultLastCommits = 10

// handleRepoInfo returns the repository summary.
func (s *Server) handleRepoInfo(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	_ EmptyInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if s.deps.Info == nil {
		return errorResult(ErrNoRepository)
	}

	info, err := s.deps.Info.Info(ctx)
	if err != nil {
		return errorResult(fmt.Errorf("repository info: %w", err))
	}

	return jsonResult(info)
}

// handleLastCommits returns the most recent commits, newest first.
func (s *Server) handleLastCommits(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input LastCommitsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if s.deps.Backend == nil {
		return errorResult(ErrNoRepository)
	}

	if input.Count < 0 {
		return errorResult(ErrNegativeCount)
	}

	count := input.Count
	if count == 0 {
		count = defaultLastCommits
	}

	walker := history.NewWalker(s.deps.Backend, s.walkMode())

	commits, err := walker.Walk(ctx, count)
	if err != nil {
		return errorResult(fmt.Errorf("walk history: %w", err))
	}

	return jsonResult(commits)
}

// handleCommitDiff returns the hunks between two commits.
func (s *Server) handleCommitDiff(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input CommitDiffInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if s.deps.Backend == nil {
		return errorResult(ErrNoRepository)
	}

	if input.Older == "" || input.Newer == "" {
		return errorResult(ErrEmptyCommit)
	}

	hunks, err := s.deps.Backend.Diff(ctx, history.CommitID(input.Older), history.CommitID(input.Newer))
	if err != nil {
		return errorResult(fmt.Errorf("diff %s..%s: %w", input.Older, input.Newer, err))
	}

	return jsonResult(hunks)
}

// handleSearchCommits finds commits whose diff matches a pattern.
func (s *Server) handleSearchCommits(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input SearchCommitsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if s.deps.Backend == nil {
		return errorResult(ErrNoRepository)
	}

	if input.Pattern == "" {
		return errorResult(ErrEmptyPattern)
	}

	mode := history.MatchLiteral
	if input.Regexp {
		mode = history.MatchRegexp
	}

	opts := history.SearchOptions{
		Limit:      input.Limit,
		MaxResults: input.MaxResults,
		Mode:       s.walkMode(),
		Lookahead:  s.deps.History.Lookahead,
	}
	if opts.Limit <= 0 {
		opts.Limit = s.deps.History.Limit
	}

	if opts.MaxResults <= 0 {
		opts.MaxResults = s.deps.History.MaxResults
	}

	engine := history.NewEngine(s.deps.Backend)

	report, err := engine.Search(ctx, input.Pattern, mode, opts)
	if err != nil {
		return errorResult(fmt.Errorf("search history: %w", err))
	}

	return jsonResult(report)
}

// walkMode maps the configured first-parent flag onto a walk mode.
func (s *Server) walkMode() history.WalkMode {
	if s.deps.History.FirstParent {
		return history.WalkFirstParent
	}

	return history.WalkAllParents
}
