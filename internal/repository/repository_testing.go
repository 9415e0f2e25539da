package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
)

// repository_testing.go provides helpers for tests that need a real working
// copy on disk. Other packages (feature, connection, cmd) use them too, so
// they live in a regular file rather than a _test.go file.

// TestRepoOptions configures NewTestRepo.
type TestRepoOptions struct {
	// Remotes maps remote names to their URL. No remote is created when nil.
	Remotes map[string]string
	// Branches are created at the initial commit in addition to "main".
	Branches []string
	// Tags are lightweight tags created at the initial commit.
	Tags []string
}

// TestRepo is a working copy created in a temporary directory.
type TestRepo struct {
	Path string
	Git  *git.Repository
	t    testing.TB
}

// NewTestRepo creates a repository with one commit on "main" and whatever
// remotes, branches and tags opts asks for. The directory is removed when
// the test ends.
func NewTestRepo(t testing.TB, opts TestRepoOptions) *TestRepo {
	t.Helper()

	path := t.TempDir()
	repo, err := git.PlainInit(path, false, git.WithDefaultBranch(plumbing.NewBranchReferenceName("main")))
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	tr := &TestRepo{Path: path, Git: repo, t: t}

	head := tr.Commit("README.md", "initial\n", "initial commit")

	for _, branch := range opts.Branches {
		ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), head)
		if err := repo.Storer.SetReference(ref); err != nil {
			t.Fatalf("failed to create branch %s: %v", branch, err)
		}
	}
	for _, tag := range opts.Tags {
		if _, err := repo.CreateTag(tag, head, nil); err != nil {
			t.Fatalf("failed to create tag %s: %v", tag, err)
		}
	}
	for name, url := range opts.Remotes {
		if _, err := repo.CreateRemote(&config.RemoteConfig{
			Name: name,
			URLs: []string{url},
		}); err != nil {
			t.Fatalf("failed to add remote %s: %v", name, err)
		}
	}

	return tr
}

// Commit writes content to file, stages it and commits on the current
// branch. It returns the new commit hash.
func (tr *TestRepo) Commit(file, content, message string) plumbing.Hash {
	tr.t.Helper()

	worktree, err := tr.Git.Worktree()
	if err != nil {
		tr.t.Fatalf("failed to get worktree: %v", err)
	}

	if err := os.WriteFile(filepath.Join(tr.Path, file), []byte(content), 0o644); err != nil {
		tr.t.Fatalf("failed to write %s: %v", file, err)
	}
	if _, err := worktree.Add(file); err != nil {
		tr.t.Fatalf("failed to add %s: %v", file, err)
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		tr.t.Fatalf("failed to commit: %v", err)
	}
	return hash
}

// AddRemoteBranch creates refs/remotes/<remote>/<branch> at the HEAD commit,
// as a fetch would.
func (tr *TestRepo) AddRemoteBranch(remote, branch string) {
	tr.t.Helper()

	head, err := tr.Git.Head()
	if err != nil {
		tr.t.Fatalf("failed to read HEAD: %v", err)
	}
	ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName(remote, branch), head.Hash())
	if err := tr.Git.Storer.SetReference(ref); err != nil {
		tr.t.Fatalf("failed to create remote branch %s/%s: %v", remote, branch, err)
	}
}

// Head returns the reference HEAD points to, without resolving it.
func (tr *TestRepo) Head() *plumbing.Reference {
	tr.t.Helper()

	ref, err := tr.Git.Storer.Reference(plumbing.HEAD)
	if err != nil {
		tr.t.Fatalf("failed to read HEAD: %v", err)
	}
	return ref
}

// MakeDirty modifies a tracked file without staging it.
func (tr *TestRepo) MakeDirty() {
	tr.t.Helper()

	if err := os.WriteFile(filepath.Join(tr.Path, "README.md"), []byte("changed\n"), 0o644); err != nil {
		tr.t.Fatalf("failed to modify README.md: %v", err)
	}
}
