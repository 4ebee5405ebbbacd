package history_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/maikgreubel/sourcetree/pkg/history"
)

// fakeBackend serves a commit graph from memory. The log iterator follows
// first-parent links from the tip without any cycle protection, so
// malformed graphs exercise the walker's guard.
type fakeBackend struct {
	commits  map[history.CommitID]history.CommitRecord
	tip      history.CommitID
	diffs    map[string][]history.DiffHunk
	diffErrs map[history.CommitID]error
	logErr   error
}

func diffKey(oldID, newID history.CommitID) string {
	return string(oldID) + ".." + string(newID)
}

// linearBackend builds a linear history c1 (oldest, root) .. cN (tip).
func linearBackend(n int) *fakeBackend {
	backend := &fakeBackend{
		commits:  make(map[history.CommitID]history.CommitRecord),
		diffs:    make(map[string][]history.DiffHunk),
		diffErrs: make(map[history.CommitID]error),
	}

	var parent history.CommitID

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= n; i++ {
		id := history.CommitID(fmt.Sprintf("c%d", i))

		record := history.CommitRecord{
			ID:      id,
			Author:  "Dev <dev@example.com>",
			When:    base.Add(time.Duration(i) * time.Hour),
			Message: fmt.Sprintf("commit %d", i),
		}
		if parent != "" {
			record.Parents = []history.CommitID{parent}
		}

		backend.commits[id] = record
		backend.tip = id
		parent = id
	}

	return backend
}

func (f *fakeBackend) Log(_ context.Context, _ int, _ history.WalkMode) (history.CommitIter, error) {
	if f.logErr != nil {
		return nil, f.logErr
	}

	return &fakeIter{backend: f, current: f.tip}, nil
}

func (f *fakeBackend) ResolveTip(_ context.Context) (history.CommitRecord, error) {
	record, ok := f.commits[f.tip]
	if !ok {
		return history.CommitRecord{}, history.ErrNotFound
	}

	return record, nil
}

func (f *fakeBackend) Diff(_ context.Context, oldID, newID history.CommitID) ([]history.DiffHunk, error) {
	if err, ok := f.diffErrs[newID]; ok {
		return nil, err
	}

	return f.diffs[diffKey(oldID, newID)], nil
}

type fakeIter struct {
	backend *fakeBackend
	current history.CommitID
}

func (it *fakeIter) Next() (history.CommitRecord, error) {
	if it.current == "" {
		return history.CommitRecord{}, io.EOF
	}

	record, ok := it.backend.commits[it.current]
	if !ok {
		return history.CommitRecord{}, io.EOF
	}

	if len(record.Parents) > 0 {
		it.current = record.Parents[0]
	} else {
		it.current = ""
	}

	return record, nil
}

func (it *fakeIter) Close() {}

// errBroken is a stand-in backend failure.
var errBroken = errors.New("object store corrupt")
