package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/maikgreubel/sourcetree/pkg/history"
)

func TestSearchFindsSingleMatchingCommit(t *testing.T) {
	backend := linearBackend(5)
	backend.diffs[diffKey("c2", "c3")] = []history.DiffHunk{
		{
			Path: "worker.go",
			Kind: history.ChangeModified,
			Edits: []history.LineEdit{
				{Kind: history.EditAdded, Number: 42, Text: "// TODO: handle retries"},
			},
		},
	}

	engine := history.NewEngine(backend)

	report, err := engine.Search(context.Background(), "TODO", history.MatchLiteral, history.SearchOptions{Limit: 10})
	require.NoError(t, err)
	require.False(t, report.Partial)
	require.Empty(t, report.Skipped)
	require.Len(t, report.Matches, 1)
	require.Equal(t, history.CommitID("c3"), report.Matches[0].Commit)
	require.Len(t, report.Matches[0].Matches, 1)
	require.Equal(t, "worker.go", report.Matches[0].Matches[0].Path)
	require.Equal(t, 42, report.Matches[0].Matches[0].Line)
}

func TestSearchPreservesWalkOrder(t *testing.T) {
	backend := linearBackend(6)
	for _, pair := range [][2]history.CommitID{{"c1", "c2"}, {"c3", "c4"}, {"c5", "c6"}} {
		backend.diffs[diffKey(pair[0], pair[1])] = []history.DiffHunk{
			{
				Path:  "f.go",
				Kind:  history.ChangeModified,
				Edits: []history.LineEdit{{Kind: history.EditAdded, Number: 1, Text: "needle"}},
			},
		}
	}

	engine := history.NewEngine(backend)

	report, err := engine.Search(context.Background(), "needle", history.MatchLiteral,
		history.SearchOptions{Limit: 0, Lookahead: 2})
	require.NoError(t, err)
	require.Len(t, report.Matches, 3)
	require.Equal(t, history.CommitID("c6"), report.Matches[0].Commit)
	require.Equal(t, history.CommitID("c4"), report.Matches[1].Commit)
	require.Equal(t, history.CommitID("c2"), report.Matches[2].Commit)
}

func TestSearchMaxResultsShortCircuits(t *testing.T) {
	backend := linearBackend(6)
	for _, pair := range [][2]history.CommitID{{"c1", "c2"}, {"c3", "c4"}, {"c5", "c6"}} {
		backend.diffs[diffKey(pair[0], pair[1])] = []history.DiffHunk{
			{
				Path:  "f.go",
				Kind:  history.ChangeModified,
				Edits: []history.LineEdit{{Kind: history.EditAdded, Number: 1, Text: "needle"}},
			},
		}
	}

	engine := history.NewEngine(backend)

	report, err := engine.Search(context.Background(), "needle", history.MatchLiteral,
		history.SearchOptions{MaxResults: 1, Lookahead: 1})
	require.NoError(t, err)
	require.Len(t, report.Matches, 1)
	require.Equal(t, history.CommitID("c6"), report.Matches[0].Commit)
}

func TestSearchSkipsUnretrievableDiffs(t *testing.T) {
	backend := linearBackend(4)
	backend.diffErrs["c3"] = errBroken
	backend.diffs[diffKey("c1", "c2")] = []history.DiffHunk{
		{
			Path:  "g.go",
			Kind:  history.ChangeModified,
			Edits: []history.LineEdit{{Kind: history.EditAdded, Number: 8, Text: "needle"}},
		},
	}

	engine := history.NewEngine(backend)

	report, err := engine.Search(context.Background(), "needle", history.MatchLiteral, history.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	require.Equal(t, history.CommitID("c3"), report.Skipped[0].Commit)
	require.Len(t, report.Matches, 1, "search continues past the skipped commit")
	require.Equal(t, history.CommitID("c2"), report.Matches[0].Commit)
}

func TestSearchBadPatternFailsBeforeAnyWork(t *testing.T) {
	backend := linearBackend(3)
	engine := history.NewEngine(backend)

	_, err := engine.Search(context.Background(), "(*", history.MatchRegexp, history.SearchOptions{})
	require.ErrorIs(t, err, history.ErrInvalidPattern)
}

func TestSearchExpiredDeadlineIsPartial(t *testing.T) {
	backend := linearBackend(5)
	engine := history.NewEngine(backend)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	report, err := engine.Search(ctx, "x", history.MatchLiteral, history.SearchOptions{})
	require.NoError(t, err)
	require.True(t, report.Partial)
}

func TestSearchCyclicHistoryIsPartial(t *testing.T) {
	backend := linearBackend(2)
	// Rewire the root to point back at the tip.
	root := backend.commits["c1"]
	root.Parents = []history.CommitID{"c2"}
	backend.commits["c1"] = root

	engine := history.NewEngine(backend)

	report, err := engine.Search(context.Background(), "x", history.MatchLiteral, history.SearchOptions{})
	require.NoError(t, err)
	require.True(t, report.Partial)
}
