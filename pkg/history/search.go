package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// defaultLookahead is the diff lookahead window when none is configured.
const defaultLookahead = 4

// SearchOptions bounds a search pass.
type SearchOptions struct {
	// Limit caps the number of commits walked (<= 0 walks the full
	// history).
	Limit int
	// MaxResults short-circuits the search once this many matching
	// commits were emitted (<= 0 means unbounded).
	MaxResults int
	// Mode selects the walk topology.
	Mode WalkMode
	// Lookahead is the number of commits whose diffs are retrieved and
	// matched concurrently. Results are re-serialized to walk order
	// before being returned. <= 0 uses a small default.
	Lookahead int
}

// Engine composes the walker and the matcher into a commit search: it finds
// all commits in a range whose diff matches a pattern.
type Engine struct {
	backend Backend
}

// NewEngine creates a search engine over the given backend.
func NewEngine(backend Backend) *Engine {
	return &Engine{backend: backend}
}

// Search walks up to opts.Limit commits and reports the ones whose diff
// matches the pattern, preserving the walk's most-recent-first order.
// Commits whose diff cannot be retrieved become skip entries and the search
// continues. A malformed pattern fails immediately; a flagged (cyclic)
// history, a canceled context or an expired deadline yields the results
// collected so far, marked partial.
func (e *Engine) Search(ctx context.Context, pattern string, mode PatternMode, opts SearchOptions) (*SearchReport, error) {
	matcher, err := NewMatcher(e.backend, pattern, mode)
	if err != nil {
		return nil, err
	}

	walker := NewWalker(e.backend, opts.Mode)

	commits, walkErr := walker.Walk(ctx, opts.Limit)
	if walkErr != nil && !errors.Is(walkErr, ErrCycleDetected) &&
		!errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, context.DeadlineExceeded) {
		return nil, walkErr
	}

	report := &SearchReport{}
	if walkErr != nil {
		report.Partial = true
	}

	lookahead := opts.Lookahead
	if lookahead <= 0 {
		lookahead = defaultLookahead
	}

	// Diffs are matched in bounded windows: each window runs
	// concurrently, results are appended in commit order so the report
	// stays deterministic.
	for start := 0; start < len(commits); start += lookahead {
		if ctx.Err() != nil {
			report.Partial = true

			break
		}

		end := min(start+lookahead, len(commits))

		done := e.foldWindow(ctx, matcher, commits[start:end], opts.MaxResults, report)
		if done {
			break
		}
	}

	return report, nil
}

// windowOutcome holds the match attempt of one commit in a window.
type windowOutcome struct {
	matches []Match
	err     error
}

// foldWindow matches one window of commits concurrently and folds the
// outcomes into the report in walk order. It reports true once the
// MaxResults cap is reached.
func (e *Engine) foldWindow(
	ctx context.Context,
	matcher *Matcher,
	window []CommitRecord,
	maxResults int,
	report *SearchReport,
) bool {
	outcomes := make([]windowOutcome, len(window))

	var wg sync.WaitGroup

	for i, commit := range window {
		wg.Add(1)

		go func() {
			defer wg.Done()

			matches, err := matcher.Match(ctx, commit)
			outcomes[i] = windowOutcome{matches: matches, err: err}
		}()
	}

	wg.Wait()

	for i, outcome := range outcomes {
		if outcome.err != nil {
			report.Skipped = append(report.Skipped, SkippedCommit{
				Commit: window[i].ID,
				Reason: fmt.Sprintf("diff unavailable: %v", outcome.err),
			})

			continue
		}

		if len(outcome.matches) == 0 {
			continue
		}

		report.Matches = append(report.Matches, MatchResult{Commit: window[i].ID, Matches: outcome.matches})

		if maxResults > 0 && len(report.Matches) >= maxResults {
			return true
		}
	}

	return false
}
