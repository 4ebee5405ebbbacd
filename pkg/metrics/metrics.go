// Package metrics computes per-file and tree-wide code metrics: physical
// line counts, blank and comment line counts, and a lexical complexity
// heuristic. Aggregation walks a tree through an injected filesystem lister
// so the engine itself performs no direct I/O.
package metrics

import (
	"context"
	"errors"

	"github.com/maikgreubel/sourcetree/pkg/lang"
)

// Sentinel errors for tree aggregation.
var (
	// ErrNotFound indicates the requested root or path does not exist.
	ErrNotFound = errors.New("path not found")
	// ErrUnreadable indicates a single file could not be read or decoded.
	// Aggregation records it as a skip, never a failure.
	ErrUnreadable = errors.New("file unreadable")
)

// FileRecord holds the metrics of a single scanned file. Records are
// immutable once produced and owned by the TreeMetrics containing them.
type FileRecord struct {
	// Path is relative to the aggregation root, slash-separated.
	Path       string   `json:"path"       yaml:"path"`
	Language   lang.Tag `json:"language"   yaml:"language"`
	Size       int64    `json:"size"       yaml:"size"`
	Lines      int      `json:"lines"      yaml:"lines"`
	Blank      int      `json:"blank"      yaml:"blank"`
	Comment    int      `json:"comment"    yaml:"comment"`
	Complexity int      `json:"complexity" yaml:"complexity"`
}

// LanguageSummary accumulates per-language rollups. It is derived state,
// recomputed on every aggregation; addition is commutative so fold order
// does not matter.
type LanguageSummary struct {
	Files      int `json:"files"      yaml:"files"`
	Lines      int `json:"lines"      yaml:"lines"`
	Complexity int `json:"complexity" yaml:"complexity"`
}

// SkippedFile records a file excluded from the aggregate with the reason.
type SkippedFile struct {
	Path   string `json:"path"   yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// TreeMetrics is the result envelope of one aggregation pass.
type TreeMetrics struct {
	TotalFiles   int                          `json:"total_files"   yaml:"total_files"`
	TotalLines   int                          `json:"total_lines"   yaml:"total_lines"`
	AverageLines float64                      `json:"average_lines" yaml:"average_lines"`
	PerLanguage  map[lang.Tag]LanguageSummary `json:"per_language"  yaml:"per_language"`
	Files        []FileRecord                 `json:"files"         yaml:"files"`
	Skipped      []SkippedFile                `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	// Partial is true when aggregation was canceled before visiting
	// every file; the totals cover only the files folded so far.
	Partial bool `json:"partial,omitempty" yaml:"partial,omitempty"`
}

// Lister abstracts the filesystem. List yields all regular files under
// root as relative slash paths; symbolic links and directories are excluded
// by the lister, not by the aggregator. Read returns the content of one
// listed file.
type Lister interface {
	List(ctx context.Context, root string) ([]string, error)
	Read(ctx context.Context, root, path string) ([]byte, error)
}
