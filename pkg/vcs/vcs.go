// Package vcs retrieves prior committed revisions of files from the
// enclosing git repository.
package vcs

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/matzehuels/lockwatch/pkg/errors"
)

// Retriever fetches the content of a file as of the last committed state.
// The path is interpreted relative to the retriever's own directory.
type Retriever interface {
	HeadContent(path string) (string, error)
}

// GitRetriever reads file content from the HEAD commit of a repository.
type GitRetriever struct {
	dir string
}

// NewGitRetriever creates a retriever rooted at dir. The repository is
// discovered by walking upward for a .git directory, so dir may be any
// directory inside the work tree.
func NewGitRetriever(dir string) *GitRetriever {
	return &GitRetriever{dir: dir}
}

// HeadContent returns the content of path, relative to the retriever's
// directory, at the HEAD commit. The directory may sit anywhere inside the
// worktree; the path is translated to its worktree-relative form before the
// commit tree is consulted. A missing repository, an unborn HEAD, or a path
// absent from the commit tree all surface as PRIOR_REVISION_UNAVAILABLE:
// there is no previous state to compare against, which is fatal for the
// caller.
func (g *GitRetriever) HeadContent(path string) (string, error) {
	repo, err := git.PlainOpenWithOptions(g.dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePriorRevisionUnavailable, err, "open repository at %s", g.dir)
	}
	treePath, err := g.treePath(repo, path)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePriorRevisionUnavailable, err, "resolve HEAD")
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePriorRevisionUnavailable, err, "load commit %s", head.Hash())
	}
	tree, err := commit.Tree()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePriorRevisionUnavailable, err, "load tree of %s", head.Hash())
	}
	file, err := tree.File(treePath)
	if err != nil {
		if err == object.ErrFileNotFound {
			return "", errors.New(errors.ErrCodePriorRevisionUnavailable, "%s does not exist at HEAD", treePath)
		}
		return "", errors.Wrap(errors.ErrCodePriorRevisionUnavailable, err, "look up %s at HEAD", treePath)
	}
	content, err := file.Contents()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePriorRevisionUnavailable, err, "read %s at HEAD", treePath)
	}
	return content, nil
}

// treePath translates path, relative to the retriever's directory, into the
// slash-separated worktree-relative form commit trees are keyed by.
func (g *GitRetriever) treePath(repo *git.Repository, path string) (string, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePriorRevisionUnavailable, err, "resolve worktree")
	}
	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePriorRevisionUnavailable, err, "resolve worktree root")
	}
	abs, err := filepath.Abs(filepath.Join(g.dir, path))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePriorRevisionUnavailable, err, "resolve %s", path)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New(errors.ErrCodePriorRevisionUnavailable, "%s lies outside the worktree at %s", path, root)
	}
	return filepath.ToSlash(rel), nil
}

var _ Retriever = (*GitRetriever)(nil)
