package gitlib

import (
	"context"
	"fmt"
	"strings"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/maikgreubel/sourcetree/pkg/history"
)

// Diff computes the file hunks between two commits. An empty oldID means
// the new commit is compared against the empty tree, which is how root
// commits report their full content as additions.
func (r *Repository) Diff(ctx context.Context, oldID, newID history.CommitID) ([]history.DiffHunk, error) {
	newTree, newCommit, err := r.commitTree(newID)
	if err != nil {
		return nil, err
	}
	defer newCommit.Free()
	defer newTree.Free()

	var oldTree *git2go.Tree

	if oldID != "" {
		tree, commit, err := r.commitTree(oldID)
		if err != nil {
			return nil, err
		}
		defer commit.Free()
		defer tree.Free()

		oldTree = tree
	}

	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: diff options: %v", history.ErrBackendFailure, err)
	}

	diff, err := r.repo.DiffTreeToTree(oldTree, newTree, &opts)
	if err != nil {
		return nil, fmt.Errorf("%w: diff %s..%s: %v", history.ErrBackendFailure, oldID, newID, err)
	}
	defer func() { _ = diff.Free() }()

	count, err := diff.NumDeltas()
	if err != nil {
		return nil, fmt.Errorf("%w: count deltas: %v", history.ErrBackendFailure, err)
	}

	hunks := make([]history.DiffHunk, 0, count)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		delta, err := diff.Delta(i)
		if err != nil {
			return nil, fmt.Errorf("%w: delta %d: %v", history.ErrBackendFailure, i, err)
		}

		hunk, ok, err := r.deltaHunk(delta)
		if err != nil {
			return nil, err
		}

		if ok {
			hunks = append(hunks, hunk)
		}
	}

	return hunks, nil
}

// commitTree resolves a commit id to its tree. The caller frees both.
func (r *Repository) commitTree(id history.CommitID) (*git2go.Tree, *git2go.Commit, error) {
	commit, err := r.lookupCommit(id)
	if err != nil {
		return nil, nil, err
	}

	tree, err := commit.Tree()
	if err != nil {
		commit.Free()

		return nil, nil, fmt.Errorf("%w: tree of %s: %v", history.ErrBackendFailure, id, err)
	}

	return tree, commit, nil
}

// deltaHunk converts one diff delta into a hunk with line-level edits.
// Binary or unreadable blobs yield a hunk with no edits so the path and
// change kind still surface in the result.
func (r *Repository) deltaHunk(delta git2go.DiffDelta) (history.DiffHunk, bool, error) {
	kind, ok := changeKind(delta.Status)
	if !ok {
		return history.DiffHunk{}, false, nil
	}

	hunk := history.DiffHunk{Path: delta.NewFile.Path, Kind: kind}
	if hunk.Path == "" {
		hunk.Path = delta.OldFile.Path
	}

	oldText, oldOK := r.blobText(delta.OldFile.Oid)
	newText, newOK := r.blobText(delta.NewFile.Oid)

	if !oldOK || !newOK {
		return hunk, true, nil
	}

	hunk.Edits = lineEdits(oldText, newText)

	return hunk, true, nil
}

// blobText loads a blob as text. A zero oid reads as the empty string so
// added and removed files diff cleanly against nothing. Binary content
// reports not-ok.
func (r *Repository) blobText(oid *git2go.Oid) (string, bool) {
	if oid == nil || oid.IsZero() {
		return "", true
	}

	blob, err := r.repo.LookupBlob(oid)
	if err != nil {
		return "", false
	}
	defer blob.Free()

	contents := blob.Contents()
	for _, b := range contents {
		if b == 0 {
			return "", false
		}
	}

	return string(contents), true
}

// lineEdits computes added and removed lines between two text blobs.
// Line numbers count within the new file for additions and within the
// old file for removals, both starting at 1.
func lineEdits(oldText, newText string) []history.LineEdit {
	dmp := diffmatchpatch.New()

	oldChars, newChars, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(oldChars, newChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var edits []history.LineEdit

	oldLine, newLine := 0, 0

	for _, d := range diffs {
		for _, text := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				oldLine++
				newLine++
			case diffmatchpatch.DiffInsert:
				newLine++
				edits = append(edits, history.LineEdit{Kind: history.EditAdded, Number: newLine, Text: text})
			case diffmatchpatch.DiffDelete:
				oldLine++
				edits = append(edits, history.LineEdit{Kind: history.EditRemoved, Number: oldLine, Text: text})
			}
		}
	}

	return edits
}

// splitLines breaks diff text into lines without their terminators. A
// trailing newline does not produce a phantom empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

// changeKind maps libgit2 delta statuses onto the neutral change kinds.
// Statuses outside the tracked set (ignored, untracked, conflicted) are
// dropped from diff results.
func changeKind(status git2go.Delta) (history.ChangeKind, bool) {
	switch status {
	case git2go.DeltaAdded, git2go.DeltaCopied:
		return history.ChangeAdded, true
	case git2go.DeltaDeleted:
		return history.ChangeRemoved, true
	case git2go.DeltaModified, git2go.DeltaTypeChange:
		return history.ChangeModified, true
	case git2go.DeltaRenamed:
		return history.ChangeRenamed, true
	default:
		return history.ChangeModified, false
	}
}
