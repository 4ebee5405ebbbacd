package gitlib

import (
	"context"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/maikgreubel/sourcetree/pkg/history"
)

// RepoInfo summarizes the repository state for the info surfaces.
type RepoInfo struct {
	Path          string                 `json:"path" yaml:"path"`
	CurrentBranch string                 `json:"currentBranch" yaml:"currentBranch"`
	Branches      []string               `json:"branches" yaml:"branches"`
	Tip           history.CommitRecord   `json:"tip" yaml:"tip"`
	RecentCommits []history.CommitRecord `json:"recentCommits" yaml:"recentCommits"`
}

// recentCommitCount bounds the preview log included in RepoInfo.
const recentCommitCount = 5

// Info collects the current branch, the local branch list, the tip commit
// and a short preview of recent history.
func (r *Repository) Info(ctx context.Context) (RepoInfo, error) {
	info := RepoInfo{Path: r.path}

	ref, err := r.repo.Head()
	if err != nil {
		return RepoInfo{}, fmt.Errorf("%w: resolve HEAD: %v", history.ErrNotFound, err)
	}
	defer ref.Free()

	info.CurrentBranch = ref.Shorthand()

	info.Branches, err = r.localBranches()
	if err != nil {
		return RepoInfo{}, err
	}

	info.Tip, err = r.ResolveTip(ctx)
	if err != nil {
		return RepoInfo{}, err
	}

	walker := history.NewWalker(r, history.WalkAllParents)

	info.RecentCommits, err = walker.Walk(ctx, recentCommitCount)
	if err != nil {
		return RepoInfo{}, fmt.Errorf("recent commits: %w", err)
	}

	return info, nil
}

// localBranches lists the names of all local branches.
func (r *Repository) localBranches() ([]string, error) {
	iter, err := r.repo.NewBranchIterator(git2go.BranchLocal)
	if err != nil {
		return nil, fmt.Errorf("%w: list branches: %v", history.ErrBackendFailure, err)
	}
	defer iter.Free()

	var names []string

	err = iter.ForEach(func(branch *git2go.Branch, _ git2go.BranchType) error {
		name, err := branch.Name()
		if err != nil {
			return err
		}

		names = append(names, name)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: iterate branches: %v", history.ErrBackendFailure, err)
	}

	return names, nil
}
