package history

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Walker produces bounded, most-recent-first commit sequences. It holds no
// state across calls: every Walk re-opens the log at the current tip.
type Walker struct {
	backend Backend
	mode    WalkMode
}

// NewWalker creates a Walker over the given backend.
func NewWalker(backend Backend, mode WalkMode) *Walker {
	return &Walker{backend: backend, mode: mode}
}

// Walk collects up to limit commits from the tip (limit <= 0 walks the full
// history). Malformed histories terminate the traversal instead of looping:
// a repeated or self-referencing commit identifier stops the walk and the
// collected prefix is returned wrapped with ErrCycleDetected.
func (w *Walker) Walk(ctx context.Context, limit int) ([]CommitRecord, error) {
	iter, err := w.backend.Log(ctx, limit, w.mode)
	if err != nil {
		return nil, fmt.Errorf("%w: open log: %v", ErrBackendFailure, err)
	}
	defer iter.Close()

	var commits []CommitRecord

	// Visited identifiers bound the traversal so far; the set grows with
	// the walk and is discarded with it.
	seen := make(map[CommitID]struct{})

	for limit <= 0 || len(commits) < limit {
		if ctx.Err() != nil {
			return commits, ctx.Err()
		}

		record, nextErr := iter.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}

		if nextErr != nil {
			return commits, fmt.Errorf("%w: next commit: %v", ErrBackendFailure, nextErr)
		}

		if malformed(record, seen) {
			return commits, fmt.Errorf("%w: at %s", ErrCycleDetected, record.ID)
		}

		seen[record.ID] = struct{}{}
		commits = append(commits, record)
	}

	return commits, nil
}

// malformed reports whether a record revisits a known identifier or names
// itself as a parent.
func malformed(record CommitRecord, seen map[CommitID]struct{}) bool {
	if _, ok := seen[record.ID]; ok {
		return true
	}

	for _, parent := range record.Parents {
		if parent == record.ID {
			return true
		}
	}

	return false
}
