// Package gitlib implements the history.Backend contract on top of libgit2.
// It provides commit log iteration, tree-to-tree diffs with line-level
// edits, and repository info lookups. Nothing outside this package touches
// the object store.
package gitlib

import (
	"context"
	"fmt"
	"strings"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/maikgreubel/sourcetree/pkg/history"
)

// Repository wraps a libgit2 repository and implements history.Backend.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens the git repository at path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// Path returns the repository working path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the underlying libgit2 resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// ResolveTip returns the commit HEAD points at.
func (r *Repository) ResolveTip(_ context.Context) (history.CommitRecord, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return history.CommitRecord{}, fmt.Errorf("%w: resolve HEAD: %v", history.ErrNotFound, err)
	}
	defer ref.Free()

	commit, err := r.repo.LookupCommit(ref.Target())
	if err != nil {
		return history.CommitRecord{}, fmt.Errorf("%w: lookup tip: %v", history.ErrNotFound, err)
	}
	defer commit.Free()

	return commitRecord(commit), nil
}

// lookupCommit resolves a commit id to a libgit2 commit. The caller frees it.
func (r *Repository) lookupCommit(id history.CommitID) (*git2go.Commit, error) {
	oid, err := git2go.NewOid(string(id))
	if err != nil {
		return nil, fmt.Errorf("%w: bad commit id %s: %v", history.ErrNotFound, id, err)
	}

	commit, err := r.repo.LookupCommit(oid)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", history.ErrNotFound, id, err)
	}

	return commit, nil
}

// commitRecord converts a libgit2 commit into the backend-neutral record.
func commitRecord(commit *git2go.Commit) history.CommitRecord {
	parents := make([]history.CommitID, 0, commit.ParentCount())
	for i := uint(0); i < commit.ParentCount(); i++ {
		parents = append(parents, history.CommitID(commit.ParentId(i).String()))
	}

	author := commit.Author()

	return history.CommitRecord{
		ID:      history.CommitID(commit.Id().String()),
		Parents: parents,
		Author:  fmt.Sprintf("%s <%s>", author.Name, author.Email),
		When:    author.When,
		Message: strings.TrimRight(commit.Message(), "\n"),
	}
}
