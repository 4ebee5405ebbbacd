package mcp

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/maikgreubel/sourcetree/pkg/lang"
	"github.com/maikgreubel/sourcetree/pkg/metrics"
)

// FileInfo is the output of the get_file_info tool.
type FileInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"sizeHuman"`
	Modified  time.Time `json:"modified"`
	MIMEType  string    `json:"mimeType"`
	Language  lang.Tag  `json:"language"`
}

// handleFiles lists files in one folder, optionally filtered by extension.
func (s *Server) handleFiles(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input FilesInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	folder, err := cleanRelPath(input.Folder)
	if err != nil {
		return errorResult(err)
	}

	entries, err := os.ReadDir(filepath.Join(s.deps.Root, filepath.FromSlash(folder)))
	if err != nil {
		return errorResult(fmt.Errorf("read folder %s: %w", folder, err))
	}

	ext := input.Extension
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	files := make([]string, 0, len(entries))

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		if ext != "" && !strings.EqualFold(path.Ext(entry.Name()), ext) {
			continue
		}

		files = append(files, joinRel(folder, entry.Name()))
	}

	sort.Strings(files)

	return jsonResult(files)
}

// handleDirectories lists subdirectories of one folder.
func (s *Server) handleDirectories(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input DirectoriesInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	folder, err := cleanRelPath(input.Path)
	if err != nil {
		return errorResult(err)
	}

	entries, err := os.ReadDir(filepath.Join(s.deps.Root, filepath.FromSlash(folder)))
	if err != nil {
		return errorResult(fmt.Errorf("read folder %s: %w", folder, err))
	}

	dirs := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, joinRel(folder, entry.Name()))
		}
	}

	sort.Strings(dirs)

	return jsonResult(dirs)
}

// handleFileInfo returns metadata for one file.
func (s *Server) handleFileInfo(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input FileInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Path == "" {
		return errorResult(ErrEmptyPath)
	}

	rel, err := cleanRelPath(input.Path)
	if err != nil {
		return errorResult(err)
	}

	stat, err := os.Stat(filepath.Join(s.deps.Root, filepath.FromSlash(rel)))
	if err != nil {
		return errorResult(fmt.Errorf("stat %s: %w", rel, err))
	}

	if stat.IsDir() {
		return errorResult(fmt.Errorf("stat %s: is a directory", rel))
	}

	mimeType := mime.TypeByExtension(path.Ext(rel))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return jsonResult(FileInfo{
		Name:      path.Base(rel),
		Path:      rel,
		Size:      stat.Size(),
		SizeHuman: humanize.Bytes(uint64(stat.Size())),
		Modified:  stat.ModTime(),
		MIMEType:  mimeType,
		Language:  lang.Classify(rel),
	})
}

// handleFileContent returns the text of one file.
func (s *Server) handleFileContent(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input FileInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Path == "" {
		return errorResult(ErrEmptyPath)
	}

	rel, err := cleanRelPath(input.Path)
	if err != nil {
		return errorResult(err)
	}

	content, err := s.deps.Lister.Read(ctx, s.deps.Root, rel)
	if err != nil {
		return errorResult(fmt.Errorf("read %s: %w", rel, err))
	}

	return textResult(string(content))
}

// handleLanguages returns per-language file counts for the tree.
func (s *Server) handleLanguages(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	_ EmptyInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	tree, err := s.aggregate(ctx)
	if err != nil {
		return errorResult(err)
	}

	counts := make(map[lang.Tag]int, len(tree.PerLanguage))
	for tag, summary := range tree.PerLanguage {
		counts[tag] = summary.Files
	}

	return jsonResult(counts)
}

// handleCodeMetrics returns the full tree metrics envelope.
func (s *Server) handleCodeMetrics(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	_ EmptyInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	tree, err := s.aggregate(ctx)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(tree)
}

// handleLineCounts returns the line count of every file.
func (s *Server) handleLineCounts(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	_ EmptyInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	tree, err := s.aggregate(ctx)
	if err != nil {
		return errorResult(err)
	}

	counts := make(map[string]int, len(tree.Files))
	for _, record := range tree.Files {
		counts[record.Path] = record.Lines
	}

	return jsonResult(counts)
}

// aggregate runs a fresh tree scan.
func (s *Server) aggregate(ctx context.Context) (*metrics.TreeMetrics, error) {
	aggregator := metrics.NewAggregator(s.deps.Workers)

	tree, err := aggregator.Aggregate(ctx, s.deps.Root, s.deps.Lister)
	if err != nil {
		return nil, fmt.Errorf("aggregate tree: %w", err)
	}

	return tree, nil
}

// joinRel joins a folder and a name, keeping root-relative results bare.
func joinRel(folder, name string) string {
	if folder == "." {
		return name
	}

	return path.Join(folder, name)
}
