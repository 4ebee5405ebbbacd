package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameFiles         = "get_files"
	ToolNameDirectories   = "get_directories"
	ToolNameFileInfo      = "get_file_info"
	ToolNameFileContent   = "get_file_content"
	ToolNameLanguages     = "get_languages"
	ToolNameCodeMetrics   = "get_code_metrics"
	ToolNameLineCounts    = "get_line_counts"
	ToolNameRepoInfo      = "get_repo_info"
	ToolNameLastCommits   = "get_last_n_commits"
	ToolNameCommitDiff    = "get_diff_for_commit"
	ToolNameSearchCommits = "search_commits_containing_change"
)

// Tool descriptions.
const (
	filesToolDescription         = "List files in a folder of the source tree, optionally filtered by extension. Non-recursive."
	directoriesToolDescription   = "List subdirectories of a folder in the source tree."
	fileInfoToolDescription      = "Return name, size, modification time and MIME type of a file."
	fileContentToolDescription   = "Return the text content of a file in the source tree."
	languagesToolDescription     = "Return per-language file counts for the whole source tree."
	codeMetricsToolDescription   = "Return line and complexity metrics for the whole source tree with per-language rollups."
	lineCountsToolDescription    = "Return the line count of every file in the source tree."
	repoInfoToolDescription      = "Return repository summary: current branch, branches, tip commit and recent history."
	lastCommitsToolDescription   = "Return the most recent commits, newest first."
	commitDiffToolDescription    = "Return the file hunks and line edits between two commits."
	searchCommitsToolDescription = "Find commits whose diff added or removed lines matching a pattern."
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyPath indicates the path parameter is empty.
	ErrEmptyPath = errors.New("path parameter is required and must not be empty")
	// ErrPathEscapesRoot indicates the path points outside the tree root.
	ErrPathEscapesRoot = errors.New("path must stay inside the tree root")
	// ErrEmptyPattern indicates the pattern parameter is empty.
	ErrEmptyPattern = errors.New("pattern parameter is required and must not be empty")
	// ErrEmptyCommit indicates a commit parameter is empty.
	ErrEmptyCommit = errors.New("commit parameter is required and must not be empty")
	// ErrNegativeCount indicates the count parameter is negative.
	ErrNegativeCount = errors.New("count must be non-negative")
	// ErrNoRepository indicates the tree root is not a git repository.
	ErrNoRepository = errors.New("tree root is not a git repository")

	// errToolFailed marks handler-level failures for instrumentation.
	errToolFailed = errors.New("tool call failed")
)

// Input types (auto-generate JSON schemas via struct tags).

// FilesInput is the input schema for the get_files tool.
type FilesInput struct {
	Folder    string `json:"folder,omitempty"    jsonschema:"folder relative to the tree root (default: root)"`
	Extension string `json:"extension,omitempty" jsonschema:"optional extension filter (e.g. .go)"`
}

// DirectoriesInput is the input schema for the get_directories tool.
type DirectoriesInput struct {
	Path string `json:"path,omitempty" jsonschema:"folder relative to the tree root (default: root)"`
}

// FileInput is the input schema for file info and content tools.
type FileInput struct {
	Path string `json:"path" jsonschema:"file path relative to the tree root"`
}

// EmptyInput is the input schema for tools without parameters.
type EmptyInput struct{}

// LastCommitsInput is the input schema for the get_last_n_commits tool.
type LastCommitsInput struct {
	Count int `json:"count,omitempty" jsonschema:"number of commits to return (default: 10)"`
}

// CommitDiffInput is the input schema for the get_diff_for_commit tool.
type CommitDiffInput struct {
	Older string `json:"older" jsonschema:"older commit hash"`
	Newer string `json:"newer" jsonschema:"newer commit hash"`
}

// SearchCommitsInput is the input schema for the commit search tool.
type SearchCommitsInput struct {
	Pattern    string `json:"pattern"               jsonschema:"text or regular expression to look for in added/removed lines"`
	Regexp     bool   `json:"regexp,omitempty"      jsonschema:"interpret the pattern as a regular expression instead of a literal"`
	Limit      int    `json:"limit,omitempty"       jsonschema:"maximum number of commits to scan (default: configured limit)"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"stop after this many matching commits (default: configured cap)"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// textResult builds a CallToolResult with plain text content.
func textResult(text string) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: text},
		},
	}, ToolOutput{Data: text}, nil
}

// cleanRelPath normalizes a tree-relative path and rejects escapes. The
// empty string maps to "." so tools can default to the root.
func cleanRelPath(raw string) (string, error) {
	if raw == "" {
		return ".", nil
	}

	cleaned := path.Clean(strings.ReplaceAll(raw, "\\", "/"))
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesRoot, raw)
	}

	return cleaned, nil
}
