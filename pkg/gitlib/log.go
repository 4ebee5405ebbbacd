package gitlib

import (
	"context"
	"fmt"
	"io"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/maikgreubel/sourcetree/pkg/history"
)

// Log opens a lazy commit iterator from HEAD. The limit is a hint only;
// bounding the walk is the caller's job. Every call re-walks from the
// current tip, no state is cached across calls.
func (r *Repository) Log(ctx context.Context, _ int, mode history.WalkMode) (history.CommitIter, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}

	headRef, err := r.repo.Head()
	if err != nil {
		walk.Free()

		return nil, fmt.Errorf("%w: resolve HEAD: %v", history.ErrNotFound, err)
	}
	defer headRef.Free()

	err = walk.Push(headRef.Target())
	if err != nil {
		walk.Free()

		return nil, fmt.Errorf("push HEAD to revwalk: %w", err)
	}

	// Time plus topological order keeps children ahead of their parents
	// even when clock skew reorders timestamps across branches.
	walk.Sorting(git2go.SortTime | git2go.SortTopological)

	if mode == history.WalkFirstParent {
		walk.SimplifyFirstParent()
	}

	return &commitIter{ctx: ctx, walk: walk, repo: r}, nil
}

// commitIter adapts a libgit2 revwalk to history.CommitIter.
type commitIter struct {
	ctx  context.Context
	walk *git2go.RevWalk
	repo *Repository
}

// Next returns the next commit, or io.EOF when the walk is exhausted.
func (it *commitIter) Next() (history.CommitRecord, error) {
	if it.walk == nil {
		return history.CommitRecord{}, io.EOF
	}

	if err := it.ctx.Err(); err != nil {
		return history.CommitRecord{}, err
	}

	oid := new(git2go.Oid)

	err := it.walk.Next(oid)
	if err != nil {
		if git2go.IsErrorCode(err, git2go.ErrorCodeIterOver) {
			return history.CommitRecord{}, io.EOF
		}

		return history.CommitRecord{}, fmt.Errorf("revwalk next: %w", err)
	}

	commit, err := it.repo.repo.LookupCommit(oid)
	if err != nil {
		return history.CommitRecord{}, fmt.Errorf("%w: %s: %v", history.ErrNotFound, oid.String(), err)
	}
	defer commit.Free()

	return commitRecord(commit), nil
}

// Close releases the walk. Safe to call repeatedly.
func (it *commitIter) Close() {
	if it.walk != nil {
		it.walk.Free()
		it.walk = nil
	}
}
