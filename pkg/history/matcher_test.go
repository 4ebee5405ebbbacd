package history_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maikgreubel/sourcetree/pkg/history"
)

func TestMatcherRejectsBadRegexp(t *testing.T) {
	backend := linearBackend(1)

	_, err := history.NewMatcher(backend, "[unclosed", history.MatchRegexp)
	require.ErrorIs(t, err, history.ErrInvalidPattern)
}

func TestMatcherLiteralDoesNotCompile(t *testing.T) {
	backend := linearBackend(1)

	// The same text is a valid literal even though it is a bad regexp.
	matcher, err := history.NewMatcher(backend, "[unclosed", history.MatchLiteral)
	require.NoError(t, err)
	require.NotNil(t, matcher)
}

func TestMatchScansOnlyAddedAndRemovedLines(t *testing.T) {
	backend := linearBackend(2)
	backend.diffs[diffKey("c1", "c2")] = []history.DiffHunk{
		{
			Path: "main.go",
			Kind: history.ChangeModified,
			Edits: []history.LineEdit{
				{Kind: history.EditContext, Number: 1, Text: "context TODO stays invisible"},
				{Kind: history.EditAdded, Number: 2, Text: "added TODO line"},
				{Kind: history.EditRemoved, Number: 3, Text: "removed TODO line"},
				{Kind: history.EditAdded, Number: 4, Text: "unrelated"},
			},
		},
	}

	matcher, err := history.NewMatcher(backend, "TODO", history.MatchLiteral)
	require.NoError(t, err)

	matches, err := matcher.Match(context.Background(), backend.commits["c2"])
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, history.Match{Path: "main.go", Line: 2, Text: "added TODO line"}, matches[0])
	require.Equal(t, history.Match{Path: "main.go", Line: 3, Text: "removed TODO line"}, matches[1])
}

func TestMatchPreservesFileThenLineOrder(t *testing.T) {
	backend := linearBackend(2)
	backend.diffs[diffKey("c1", "c2")] = []history.DiffHunk{
		{
			Path: "a.go",
			Kind: history.ChangeAdded,
			Edits: []history.LineEdit{
				{Kind: history.EditAdded, Number: 1, Text: "hit one"},
				{Kind: history.EditAdded, Number: 7, Text: "hit two"},
			},
		},
		{
			Path: "b.go",
			Kind: history.ChangeModified,
			Edits: []history.LineEdit{
				{Kind: history.EditAdded, Number: 3, Text: "hit three"},
			},
		},
	}

	matcher, err := history.NewMatcher(backend, "hit", history.MatchLiteral)
	require.NoError(t, err)

	matches, err := matcher.Match(context.Background(), backend.commits["c2"])
	require.NoError(t, err)
	require.Len(t, matches, 3)
	require.Equal(t, "a.go", matches[0].Path)
	require.Equal(t, 1, matches[0].Line)
	require.Equal(t, "a.go", matches[1].Path)
	require.Equal(t, 7, matches[1].Line)
	require.Equal(t, "b.go", matches[2].Path)
}

func TestMatchRegexpMode(t *testing.T) {
	backend := linearBackend(2)
	backend.diffs[diffKey("c1", "c2")] = []history.DiffHunk{
		{
			Path: "svc.py",
			Kind: history.ChangeModified,
			Edits: []history.LineEdit{
				{Kind: history.EditAdded, Number: 10, Text: "retry_count = 3"},
				{Kind: history.EditAdded, Number: 11, Text: "retries disabled"},
			},
		},
	}

	matcher, err := history.NewMatcher(backend, `retry_\w+ = \d+`, history.MatchRegexp)
	require.NoError(t, err)

	matches, err := matcher.Match(context.Background(), backend.commits["c2"])
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, 10, matches[0].Line)
}

func TestMatchRootCommitDiffsAgainstEmptyTree(t *testing.T) {
	backend := linearBackend(1)
	backend.diffs[diffKey("", "c1")] = []history.DiffHunk{
		{
			Path: "init.go",
			Kind: history.ChangeAdded,
			Edits: []history.LineEdit{
				{Kind: history.EditAdded, Number: 1, Text: "package init"},
			},
		},
	}

	matcher, err := history.NewMatcher(backend, "package", history.MatchLiteral)
	require.NoError(t, err)

	matches, err := matcher.Match(context.Background(), backend.commits["c1"])
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestMatchWrapsBackendFailure(t *testing.T) {
	backend := linearBackend(2)
	backend.diffErrs["c2"] = errBroken

	matcher, err := history.NewMatcher(backend, "x", history.MatchLiteral)
	require.NoError(t, err)

	_, err = matcher.Match(context.Background(), backend.commits["c2"])
	require.ErrorIs(t, err, history.ErrBackendFailure)
}
