// Package history mines a revision history: walking commits most-recent-first
// and scanning their diffs for textual or pattern matches. All git access goes
// through the Backend contract; the package never touches an object store
// directly.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Sentinel errors for history operations.
var (
	// ErrInvalidPattern indicates a malformed regular expression. It is
	// fatal and surfaced before any commit is visited.
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrCycleDetected indicates the backend produced a commit graph with
	// a cycle; the walk terminates and returns what it collected.
	ErrCycleDetected = errors.New("commit cycle detected")
	// ErrBackendFailure indicates a versioned-storage call failed. It is
	// non-fatal per commit during a search, fatal when it affects the
	// single requested commit.
	ErrBackendFailure = errors.New("backend failure")
	// ErrNotFound indicates a commit is absent from the backend.
	ErrNotFound = errors.New("commit not found")
)

// CommitID is a content-addressed commit hash in hex form.
type CommitID string

// CommitRecord is an immutable commit snapshot sourced from the backend.
type CommitRecord struct {
	ID CommitID `json:"id" yaml:"id"`
	// Parents is ordered; empty for a root commit, more than one entry
	// for merges. It must never contain the commit's own ID.
	Parents []CommitID `json:"parents,omitempty" yaml:"parents,omitempty"`
	Author  string     `json:"author"  yaml:"author"`
	When    time.Time  `json:"when"    yaml:"when"`
	Message string     `json:"message" yaml:"message"`
}

// ChangeKind classifies a file-level change within a diff.
type ChangeKind int

// File-level change kinds.
const (
	ChangeModified ChangeKind = iota
	ChangeAdded
	ChangeRemoved
	ChangeRenamed
)

// changeKindNames maps change kinds to their wire names.
var changeKindNames = map[ChangeKind]string{
	ChangeModified: "modified",
	ChangeAdded:    "added",
	ChangeRemoved:  "removed",
	ChangeRenamed:  "renamed",
}

// String returns the change kind's name.
func (k ChangeKind) String() string {
	if name, ok := changeKindNames[k]; ok {
		return name
	}

	return "unknown"
}

// MarshalJSON encodes the change kind by name.
func (k ChangeKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// MarshalYAML encodes the change kind by name.
func (k ChangeKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// EditKind classifies a line-level edit within a hunk.
type EditKind int

// Line-level edit kinds.
const (
	EditContext EditKind = iota
	EditAdded
	EditRemoved
)

// editKindNames maps edit kinds to their wire names.
var editKindNames = map[EditKind]string{
	EditContext: "context",
	EditAdded:   "added",
	EditRemoved: "removed",
}

// String returns the edit kind's name.
func (k EditKind) String() string {
	if name, ok := editKindNames[k]; ok {
		return name
	}

	return "unknown"
}

// MarshalJSON encodes the edit kind by name.
func (k EditKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// MarshalYAML encodes the edit kind by name.
func (k EditKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// LineEdit is a single line-level edit. Number is the line number in the
// new file for added lines and in the old file for removed lines.
type LineEdit struct {
	Kind   EditKind
	Number int
	Text   string
}

// DiffHunk holds all line edits of one file in a diff. Hunks are immutable
// and scoped to a single diff retrieval.
type DiffHunk struct {
	Path  string
	Kind  ChangeKind
	Edits []LineEdit
}

// Match locates one matched line within a commit's diff.
type Match struct {
	Path string `json:"path" yaml:"path"`
	Line int    `json:"line" yaml:"line"`
	Text string `json:"text" yaml:"text"`
}

// MatchResult collects the matches of a single commit.
type MatchResult struct {
	Commit  CommitID `json:"commit"  yaml:"commit"`
	Matches []Match  `json:"matches" yaml:"matches"`
}

// SkippedCommit records a commit whose diff could not be retrieved during
// a search.
type SkippedCommit struct {
	Commit CommitID `json:"commit" yaml:"commit"`
	Reason string   `json:"reason" yaml:"reason"`
}

// SearchReport is the result envelope of one search pass. Matches preserve
// the walk's most-recent-first order.
type SearchReport struct {
	Matches []MatchResult   `json:"matches" yaml:"matches"`
	Skipped []SkippedCommit `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	// Partial is true when the search was canceled or stopped on a
	// flagged history before exhausting the commit range.
	Partial bool `json:"partial,omitempty" yaml:"partial,omitempty"`
}

// WalkMode selects how the walker follows commit parents.
type WalkMode int

const (
	// WalkAllParents walks the full topology in recency order.
	WalkAllParents WalkMode = iota
	// WalkFirstParent follows only the first parent of merges, yielding
	// a linear mainline history.
	WalkFirstParent
)

// CommitIter yields commits most-recent-first. Next returns io.EOF after
// the last commit. Close releases backend resources and is safe to call
// more than once.
type CommitIter interface {
	Next() (CommitRecord, error)
	Close()
}

// Backend is the versioned-storage contract the engine consumes. Limit is
// a hint; callers still bound the walk themselves.
type Backend interface {
	// Log opens a lazy commit iterator starting at the tip.
	Log(ctx context.Context, limit int, mode WalkMode) (CommitIter, error)
	// ResolveTip returns the commit the history tip points at.
	ResolveTip(ctx context.Context) (CommitRecord, error)
	// Diff returns the file-level hunks between two commits. An empty
	// oldID diffs newID against the empty tree (root commits).
	Diff(ctx context.Context, oldID, newID CommitID) ([]DiffHunk, error)
}
