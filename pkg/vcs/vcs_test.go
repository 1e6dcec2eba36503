package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/matzehuels/lockwatch/pkg/errors"
)

// initRepo creates a repository with one commit holding the given files.
func initRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := wt.Add(name); err != nil {
			t.Fatal(err)
		}
	}
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestHeadContent(t *testing.T) {
	dir := initRepo(t, map[string]string{"setup.cfg": "[metadata]\nname = demo\n"})

	got, err := NewGitRetriever(dir).HeadContent("setup.cfg")
	if err != nil {
		t.Fatalf("HeadContent() error: %v", err)
	}
	if got != "[metadata]\nname = demo\n" {
		t.Fatalf("HeadContent() = %q", got)
	}
}

func TestHeadContentReturnsCommittedState(t *testing.T) {
	dir := initRepo(t, map[string]string{"setup.cfg": "committed\n"})

	// Uncommitted edits must not leak into the result.
	if err := os.WriteFile(filepath.Join(dir, "setup.cfg"), []byte("dirty\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := NewGitRetriever(dir).HeadContent("setup.cfg")
	if err != nil {
		t.Fatalf("HeadContent() error: %v", err)
	}
	if got != "committed\n" {
		t.Fatalf("HeadContent() = %q, want committed state", got)
	}
}

func TestHeadContentFromSubdirectory(t *testing.T) {
	// Both the root and the nested project carry a setup.cfg; a retriever
	// rooted at the nested directory must resolve its own file, not the
	// repository root's.
	dir := initRepo(t, map[string]string{
		"setup.cfg":        "root\n",
		"nested/setup.cfg": "nested\n",
	})

	got, err := NewGitRetriever(filepath.Join(dir, "nested")).HeadContent("setup.cfg")
	if err != nil {
		t.Fatalf("HeadContent() error: %v", err)
	}
	if got != "nested\n" {
		t.Fatalf("HeadContent() = %q, want the nested project's file", got)
	}

	got, err = NewGitRetriever(dir).HeadContent("setup.cfg")
	if err != nil {
		t.Fatalf("HeadContent() error: %v", err)
	}
	if got != "root\n" {
		t.Fatalf("HeadContent() = %q, want the root file", got)
	}
}

func TestHeadContentOutsideWorktree(t *testing.T) {
	dir := initRepo(t, map[string]string{"setup.cfg": "x\n"})

	_, err := NewGitRetriever(dir).HeadContent("../elsewhere.cfg")
	if !errors.Is(err, errors.ErrCodePriorRevisionUnavailable) {
		t.Fatalf("HeadContent() = %v, want code %s", err, errors.ErrCodePriorRevisionUnavailable)
	}
}

func TestHeadContentMissingFile(t *testing.T) {
	dir := initRepo(t, map[string]string{"setup.cfg": "x\n"})

	_, err := NewGitRetriever(dir).HeadContent("no-such-file.cfg")
	if !errors.Is(err, errors.ErrCodePriorRevisionUnavailable) {
		t.Fatalf("HeadContent() = %v, want code %s", err, errors.ErrCodePriorRevisionUnavailable)
	}
}

func TestHeadContentOutsideRepository(t *testing.T) {
	_, err := NewGitRetriever(t.TempDir()).HeadContent("setup.cfg")
	if !errors.Is(err, errors.ErrCodePriorRevisionUnavailable) {
		t.Fatalf("HeadContent() = %v, want code %s", err, errors.ErrCodePriorRevisionUnavailable)
	}
}
