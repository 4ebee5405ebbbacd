package gitlib_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maikgreubel/sourcetree/pkg/gitlib"
	"github.com/maikgreubel/sourcetree/pkg/history"
)

// testRepo wraps a scratch repository for integration testing.
type testRepo struct {
	t      *testing.T
	path   string
	native *git2go.Repository
	clock  time.Time
}

// newTestRepo creates a new scratch repository in a temp directory.
func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()

	repo, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	t.Cleanup(repo.Free)

	return &testRepo{
		t:      t,
		path:   dir,
		native: repo,
		clock:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// createFile writes a file into the working directory.
func (tr *testRepo) createFile(name, content string) {
	tr.t.Helper()

	path := filepath.Join(tr.path, name)
	dir := filepath.Dir(path)

	if dir != tr.path {
		err := os.MkdirAll(dir, 0o755)
		require.NoError(tr.t, err)
	}

	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(tr.t, err)
}

// deleteFile removes a file from the working directory.
func (tr *testRepo) deleteFile(name string) {
	tr.t.Helper()

	err := os.Remove(filepath.Join(tr.path, name))
	require.NoError(tr.t, err)

	index, err := tr.native.Index()
	require.NoError(tr.t, err)

	defer index.Free()

	err = index.RemoveByPath(name)
	require.NoError(tr.t, err)

	err = index.Write()
	require.NoError(tr.t, err)
}

// commit stages everything and creates a commit. Each commit gets a
// strictly later timestamp so log order is deterministic.
func (tr *testRepo) commit(message string) history.CommitID {
	tr.t.Helper()

	index, err := tr.native.Index()
	require.NoError(tr.t, err)

	defer index.Free()

	err = index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil)
	require.NoError(tr.t, err)

	err = index.Write()
	require.NoError(tr.t, err)

	treeID, err := index.WriteTree()
	require.NoError(tr.t, err)

	tree, err := tr.native.LookupTree(treeID)
	require.NoError(tr.t, err)

	defer tree.Free()

	tr.clock = tr.clock.Add(time.Minute)
	sig := &git2go.Signature{
		Name:  "Test User",
		Email: "test@example.com",
		When:  tr.clock,
	}

	var parents []*git2go.Commit

	head, err := tr.native.Head()
	if err == nil {
		headCommit, lookupErr := tr.native.LookupCommit(head.Target())
		require.NoError(tr.t, lookupErr)

		parents = append(parents, headCommit)

		head.Free()
	}

	oid, err := tr.native.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	require.NoError(tr.t, err)

	for _, parent := range parents {
		parent.Free()
	}

	return history.CommitID(oid.String())
}

// open opens the scratch repository through the public API.
func (tr *testRepo) open() *gitlib.Repository {
	tr.t.Helper()

	repo, err := gitlib.OpenRepository(tr.path)
	require.NoError(tr.t, err)

	tr.t.Cleanup(repo.Free)

	return repo
}

func TestOpenRepositoryMissingPath(t *testing.T) {
	_, err := gitlib.OpenRepository(filepath.Join(t.TempDir(), "nowhere"))
	require.Error(t, err)
}

func TestResolveTip(t *testing.T) {
	tr := newTestRepo(t)
	tr.createFile("main.go", "package main\n")
	first := tr.commit("initial commit")

	tr.createFile("util.go", "package main\n")
	second := tr.commit("add util")

	repo := tr.open()

	tip, err := repo.ResolveTip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second, tip.ID)
	assert.Equal(t, "add util", tip.Message)
	assert.Equal(t, "Test User <test@example.com>", tip.Author)
	require.Len(t, tip.Parents, 1)
	assert.Equal(t, first, tip.Parents[0])
}

func TestResolveTipEmptyRepository(t *testing.T) {
	tr := newTestRepo(t)
	repo := tr.open()

	_, err := repo.ResolveTip(context.Background())
	require.ErrorIs(t, err, history.ErrNotFound)
}

func TestLogReturnsNewestFirst(t *testing.T) {
	tr := newTestRepo(t)
	tr.createFile("a.txt", "a\n")
	c1 := tr.commit("one")
	tr.createFile("b.txt", "b\n")
	c2 := tr.commit("two")
	tr.createFile("c.txt", "c\n")
	c3 := tr.commit("three")

	repo := tr.open()

	iter, err := repo.Log(context.Background(), 0, history.WalkAllParents)
	require.NoError(t, err)

	defer iter.Close()

	var got []history.CommitID

	for {
		rec, err := iter.Next()
		if err == io.EOF {
			break
		}

		require.NoError(t, err)

		got = append(got, rec.ID)
	}

	assert.Equal(t, []history.CommitID{c3, c2, c1}, got)
}

func TestLogThroughWalkerHonorsLimit(t *testing.T) {
	tr := newTestRepo(t)
	tr.createFile("a.txt", "a\n")
	tr.commit("one")
	tr.createFile("b.txt", "b\n")
	c2 := tr.commit("two")
	tr.createFile("c.txt", "c\n")
	c3 := tr.commit("three")

	repo := tr.open()
	walker := history.NewWalker(repo, history.WalkAllParents)

	commits, err := walker.Walk(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, c3, commits[0].ID)
	assert.Equal(t, c2, commits[1].ID)
}

func TestDiffReportsAddedFile(t *testing.T) {
	tr := newTestRepo(t)
	tr.createFile("base.txt", "base\n")
	c1 := tr.commit("base")

	tr.createFile("new.go", "package main\n\nfunc main() {}\n")
	c2 := tr.commit("add new.go")

	repo := tr.open()

	hunks, err := repo.Diff(context.Background(), c1, c2)
	require.NoError(t, err)
	require.Len(t, hunks, 1)
	assert.Equal(t, "new.go", hunks[0].Path)
	assert.Equal(t, history.ChangeAdded, hunks[0].Kind)
	require.Len(t, hunks[0].Edits, 3)
	assert.Equal(t, history.EditAdded, hunks[0].Edits[0].Kind)
	assert.Equal(t, 1, hunks[0].Edits[0].Number)
	assert.Equal(t, "package main", hunks[0].Edits[0].Text)
}

func TestDiffReportsModifiedLines(t *testing.T) {
	tr := newTestRepo(t)
	tr.createFile("conf.yaml", "retries: 3\ntimeout: 5\n")
	c1 := tr.commit("config")

	tr.createFile("conf.yaml", "retries: 8\ntimeout: 5\n")
	c2 := tr.commit("raise retries")

	repo := tr.open()

	hunks, err := repo.Diff(context.Background(), c1, c2)
	require.NoError(t, err)
	require.Len(t, hunks, 1)
	assert.Equal(t, history.ChangeModified, hunks[0].Kind)

	var added, removed []history.LineEdit

	for _, edit := range hunks[0].Edits {
		switch edit.Kind {
		case history.EditAdded:
			added = append(added, edit)
		case history.EditRemoved:
			removed = append(removed, edit)
		}
	}

	require.Len(t, added, 1)
	assert.Equal(t, "retries: 8", added[0].Text)
	assert.Equal(t, 1, added[0].Number)
	require.Len(t, removed, 1)
	assert.Equal(t, "retries: 3", removed[0].Text)
	assert.Equal(t, 1, removed[0].Number)
}

func TestDiffReportsRemovedFile(t *testing.T) {
	tr := newTestRepo(t)
	tr.createFile("keep.txt", "keep\n")
	tr.createFile("gone.txt", "gone\n")
	c1 := tr.commit("both")

	tr.deleteFile("gone.txt")
	c2 := tr.commit("drop gone.txt")

	repo := tr.open()

	hunks, err := repo.Diff(context.Background(), c1, c2)
	require.NoError(t, err)
	require.Len(t, hunks, 1)
	assert.Equal(t, "gone.txt", hunks[0].Path)
	assert.Equal(t, history.ChangeRemoved, hunks[0].Kind)
	require.Len(t, hunks[0].Edits, 1)
	assert.Equal(t, history.EditRemoved, hunks[0].Edits[0].Kind)
	assert.Equal(t, "gone", hunks[0].Edits[0].Text)
}

func TestDiffRootCommitAgainstEmptyTree(t *testing.T) {
	tr := newTestRepo(t)
	tr.createFile("init.txt", "hello\n")
	c1 := tr.commit("initial")

	repo := tr.open()

	hunks, err := repo.Diff(context.Background(), "", c1)
	require.NoError(t, err)
	require.Len(t, hunks, 1)
	assert.Equal(t, "init.txt", hunks[0].Path)
	assert.Equal(t, history.ChangeAdded, hunks[0].Kind)
}

func TestDiffUnknownCommit(t *testing.T) {
	tr := newTestRepo(t)
	tr.createFile("a.txt", "a\n")
	c1 := tr.commit("one")

	repo := tr.open()

	_, err := repo.Diff(context.Background(), c1, "0000000000000000000000000000000000000000")
	require.ErrorIs(t, err, history.ErrNotFound)
}

func TestSearchEngineOverRealRepository(t *testing.T) {
	tr := newTestRepo(t)
	tr.createFile("svc.go", "package svc\n")
	tr.commit("scaffold")

	tr.createFile("svc.go", "package svc\n\n// TODO: wire retries\n")
	want := tr.commit("note retries")

	tr.createFile("other.go", "package svc\n")
	tr.commit("unrelated")

	repo := tr.open()
	engine := history.NewEngine(repo)

	report, err := engine.Search(context.Background(), "TODO", history.MatchLiteral, history.SearchOptions{})
	require.NoError(t, err)
	require.False(t, report.Partial)
	require.Len(t, report.Matches, 1)
	assert.Equal(t, want, report.Matches[0].Commit)
	assert.Equal(t, "svc.go", report.Matches[0].Matches[0].Path)
}

func TestInfo(t *testing.T) {
	tr := newTestRepo(t)
	tr.createFile("a.txt", "a\n")
	tr.commit("one")
	tr.createFile("b.txt", "b\n")
	tip := tr.commit("two")

	repo := tr.open()

	info, err := repo.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tr.path, info.Path)
	assert.Equal(t, tip, info.Tip.ID)
	assert.Contains(t, info.Branches, info.CurrentBranch)
	require.Len(t, info.RecentCommits, 2)
	assert.Equal(t, "two", info.RecentCommits[0].Message)
}
