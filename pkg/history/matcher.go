package history

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// PatternMode selects how a search pattern is interpreted. The mode is
// always explicit; it is never inferred from the pattern text.
type PatternMode int

const (
	// MatchLiteral treats the pattern as a literal substring.
	MatchLiteral PatternMode = iota
	// MatchRegexp compiles the pattern as a regular expression.
	MatchRegexp
)

// Matcher scans the added and removed lines of commit diffs for a pattern.
// Context lines are never scanned. A Matcher is immutable after
// construction and safe for concurrent use.
type Matcher struct {
	backend Backend
	pattern string
	re      *regexp.Regexp
}

// NewMatcher builds a Matcher. A malformed regular expression fails here,
// before any commit is visited.
func NewMatcher(backend Backend, pattern string, mode PatternMode) (*Matcher, error) {
	matcher := &Matcher{backend: backend, pattern: pattern}

	if mode == MatchRegexp {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}

		matcher.re = re
	}

	return matcher, nil
}

// Match diffs a commit against its primary parent (or the empty tree for a
// root commit) and returns matched lines in file-then-line order.
func (m *Matcher) Match(ctx context.Context, commit CommitRecord) ([]Match, error) {
	var oldID CommitID
	if len(commit.Parents) > 0 {
		oldID = commit.Parents[0]
	}

	return m.MatchPair(ctx, oldID, commit.ID)
}

// MatchPair diffs two arbitrary commits and returns matched lines in
// file-then-line order.
func (m *Matcher) MatchPair(ctx context.Context, oldID, newID CommitID) ([]Match, error) {
	hunks, err := m.backend.Diff(ctx, oldID, newID)
	if err != nil {
		return nil, fmt.Errorf("%w: diff %s..%s: %v", ErrBackendFailure, oldID, newID, err)
	}

	var matches []Match

	for _, hunk := range hunks {
		for _, edit := range hunk.Edits {
			if edit.Kind == EditContext {
				continue
			}

			if m.matchLine(edit.Text) {
				matches = append(matches, Match{Path: hunk.Path, Line: edit.Number, Text: edit.Text})
			}
		}
	}

	return matches, nil
}

// matchLine applies the configured pattern to one line of text.
func (m *Matcher) matchLine(text string) bool {
	if m.re != nil {
		return m.re.MatchString(text)
	}

	return strings.Contains(text, m.pattern)
}
