package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v6/plumbing"

	laberrors "lab/internal/errors"
	"lab/internal/logging"
)

func openTestRepo(t *testing.T, opts TestRepoOptions) (*TestRepo, *Repo) {
	t.Helper()

	tr := NewTestRepo(t, opts)
	logger, _ := logging.NewTestLogger()
	repo, err := Open(tr.Path, logger)
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	return tr, repo
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir(), nil)
	if err == nil {
		t.Fatal("Open() expected error for plain directory")
	}
	if !laberrors.Is(err, laberrors.KindDiscovery) {
		t.Errorf("Open() error kind = %v, want %v", laberrors.GetKind(err), laberrors.KindDiscovery)
	}
}

func TestRepo_Root(t *testing.T) {
	tr, repo := openTestRepo(t, TestRepoOptions{})
	if repo.Root() != tr.Path {
		t.Errorf("Root() = %q, want %q", repo.Root(), tr.Path)
	}
}

func TestRepo_RemoteURL(t *testing.T) {
	_, repo := openTestRepo(t, TestRepoOptions{Remotes: map[string]string{
		"origin":   "git@invent.kde.org:KDE/kaidan.git",
		"upstream": "https://invent.kde.org/network/kaidan.git",
	}})

	tests := []struct {
		name     string
		remote   string
		want     string
		notFound bool
	}{
		{name: "origin", remote: "origin", want: "git@invent.kde.org:KDE/kaidan.git"},
		{name: "upstream", remote: "upstream", want: "https://invent.kde.org/network/kaidan.git"},
		{name: "missing", remote: "fork", notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.RemoteURL(tt.remote)
			if tt.notFound {
				if !errors.Is(err, ErrRemoteNotFound) {
					t.Fatalf("RemoteURL(%q) error = %v, want ErrRemoteNotFound", tt.remote, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RemoteURL(%q) unexpected error: %v", tt.remote, err)
			}
			if got != tt.want {
				t.Errorf("RemoteURL(%q) = %q, want %q", tt.remote, got, tt.want)
			}
		})
	}

	origin, err := repo.OriginURL()
	if err != nil || origin != "git@invent.kde.org:KDE/kaidan.git" {
		t.Errorf("OriginURL() = %q, %v", origin, err)
	}
}

func TestRepo_OriginURL_NoOrigin(t *testing.T) {
	_, repo := openTestRepo(t, TestRepoOptions{})

	_, err := repo.OriginURL()
	if !errors.Is(err, ErrRemoteNotFound) {
		t.Fatalf("OriginURL() error = %v, want ErrRemoteNotFound", err)
	}
}

func TestRepo_Remotes(t *testing.T) {
	_, repo := openTestRepo(t, TestRepoOptions{Remotes: map[string]string{
		"upstream": "https://example.com/a/b.git",
		"origin":   "https://example.com/me/b.git",
	}})

	remotes, err := repo.Remotes()
	if err != nil {
		t.Fatalf("Remotes() unexpected error: %v", err)
	}
	if len(remotes) != 2 {
		t.Fatalf("Remotes() returned %d remotes, want 2", len(remotes))
	}
	if remotes[0].Name != "origin" || remotes[1].Name != "upstream" {
		t.Errorf("Remotes() not sorted by name: %+v", remotes)
	}
	if remotes[0].URLs[0] != "https://example.com/me/b.git" {
		t.Errorf("Remotes()[0].URLs = %v", remotes[0].URLs)
	}
}

func TestRepo_SetRemoteURL(t *testing.T) {
	tr, repo := openTestRepo(t, TestRepoOptions{Remotes: map[string]string{
		"origin": "https://invent.kde.org/KDE/kaidan.git",
	}})

	if err := repo.SetRemoteURL("origin", "ssh://git@invent.kde.org/KDE/kaidan.git"); err != nil {
		t.Fatalf("SetRemoteURL() unexpected error: %v", err)
	}

	// Reopen to make sure the change was persisted to .git/config.
	reopened, err := Open(tr.Path, nil)
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	got, err := reopened.OriginURL()
	if err != nil {
		t.Fatalf("OriginURL() unexpected error: %v", err)
	}
	if got != "ssh://git@invent.kde.org/KDE/kaidan.git" {
		t.Errorf("OriginURL() = %q after SetRemoteURL", got)
	}

	err = repo.SetRemoteURL("missing", "ssh://example.com/x")
	if !laberrors.Is(err, laberrors.KindRemoteMissing) {
		t.Errorf("SetRemoteURL(missing) error kind = %v, want %v", laberrors.GetKind(err), laberrors.KindRemoteMissing)
	}
}

func TestRepo_References(t *testing.T) {
	tr, repo := openTestRepo(t, TestRepoOptions{
		Branches: []string{"topic", "bugfix"},
		Tags:     []string{"v1.0"},
	})
	tr.AddRemoteBranch("origin", "main")

	refs, err := repo.References()
	if err != nil {
		t.Fatalf("References() unexpected error: %v", err)
	}

	want := []struct {
		short string
		kind  RefKind
	}{
		{"bugfix", RefBranch},
		{"main", RefBranch},
		{"topic", RefBranch},
		{"origin/main", RefRemoteBranch},
		{"v1.0", RefTag},
	}
	if len(refs) != len(want) {
		t.Fatalf("References() returned %d refs, want %d: %+v", len(refs), len(want), refs)
	}
	for i, w := range want {
		if refs[i].Short != w.short || refs[i].Kind != w.kind {
			t.Errorf("References()[%d] = %+v, want short=%q kind=%v", i, refs[i], w.short, w.kind)
		}
	}
}

func TestRepo_FindReference(t *testing.T) {
	_, repo := openTestRepo(t, TestRepoOptions{Branches: []string{"topic"}, Tags: []string{"v2"}})

	ref, ok, err := repo.FindReference("topic")
	if err != nil || !ok {
		t.Fatalf("FindReference(topic) = %v, %v", ok, err)
	}
	if ref.Name != plumbing.NewBranchReferenceName("topic") {
		t.Errorf("FindReference(topic).Name = %s", ref.Name)
	}

	ref, ok, _ = repo.FindReference("v2")
	if !ok || ref.Kind != RefTag {
		t.Errorf("FindReference(v2) = %+v, %v; want tag", ref, ok)
	}

	if _, ok, _ := repo.FindReference("nope"); ok {
		t.Error("FindReference(nope) should not find anything")
	}
}

func TestRepo_CurrentBranchAndBranches(t *testing.T) {
	_, repo := openTestRepo(t, TestRepoOptions{Branches: []string{"zeta", "alpha"}})

	current, err := repo.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch() unexpected error: %v", err)
	}
	if current != "main" {
		t.Errorf("CurrentBranch() = %q, want main", current)
	}

	branches, err := repo.Branches()
	if err != nil {
		t.Fatalf("Branches() unexpected error: %v", err)
	}
	want := []string{"alpha", "main", "zeta"}
	if len(branches) != len(want) {
		t.Fatalf("Branches() = %v, want %v", branches, want)
	}
	for i := range want {
		if branches[i] != want[i] {
			t.Errorf("Branches()[%d] = %q, want %q", i, branches[i], want[i])
		}
	}
}

func TestRepo_Checkout(t *testing.T) {
	tr, repo := openTestRepo(t, TestRepoOptions{Branches: []string{"topic"}, Tags: []string{"v1.0"}})

	ref, _, _ := repo.FindReference("topic")
	if err := repo.Checkout(ref); err != nil {
		t.Fatalf("Checkout(topic) unexpected error: %v", err)
	}
	if got := tr.Head().Target(); got != plumbing.NewBranchReferenceName("topic") {
		t.Errorf("HEAD -> %s, want refs/heads/topic", got)
	}

	tag, _, _ := repo.FindReference("v1.0")
	if err := repo.Checkout(tag); err != nil {
		t.Fatalf("Checkout(v1.0) unexpected error: %v", err)
	}
	if tr.Head().Type() != plumbing.HashReference {
		t.Error("checking out a tag should detach HEAD")
	}
	if current, _ := repo.CurrentBranch(); current != "" {
		t.Errorf("CurrentBranch() = %q on detached HEAD, want empty", current)
	}
}

func TestRepo_CreateBranch(t *testing.T) {
	tr, repo := openTestRepo(t, TestRepoOptions{})
	first := tr.Commit("a.txt", "a\n", "second commit")
	tr.Commit("b.txt", "b\n", "third commit")

	if err := repo.CreateBranch("topic", "HEAD~1"); err != nil {
		t.Fatalf("CreateBranch() unexpected error: %v", err)
	}

	if got := tr.Head().Target(); got != plumbing.NewBranchReferenceName("topic") {
		t.Fatalf("HEAD -> %s, want refs/heads/topic", got)
	}
	ref, err := tr.Git.Reference(plumbing.NewBranchReferenceName("topic"), true)
	if err != nil {
		t.Fatalf("topic branch missing: %v", err)
	}
	if ref.Hash() != first {
		t.Errorf("topic at %s, want %s", ref.Hash(), first)
	}
}

func TestRepo_CreateBranch_Errors(t *testing.T) {
	_, repo := openTestRepo(t, TestRepoOptions{})

	if err := repo.CreateBranch("topic", "does-not-exist"); err == nil {
		t.Error("CreateBranch() with unknown start should fail")
	}
	if err := repo.CreateBranch("bad..name", "HEAD"); err == nil {
		t.Error("CreateBranch() with invalid name should fail")
	}
}

func TestRepo_IsDirty(t *testing.T) {
	tr, repo := openTestRepo(t, TestRepoOptions{})

	dirty, err := repo.IsDirty()
	if err != nil {
		t.Fatalf("IsDirty() unexpected error: %v", err)
	}
	if dirty {
		t.Error("fresh repository reported dirty")
	}

	tr.MakeDirty()
	if dirty, _ := repo.IsDirty(); !dirty {
		t.Error("modified repository reported clean")
	}
}

func TestRepo_HeadCommit(t *testing.T) {
	tr, repo := openTestRepo(t, TestRepoOptions{})
	want := tr.Commit("a.txt", "a\n", "second commit")

	got, err := repo.HeadCommit()
	if err != nil {
		t.Fatalf("HeadCommit() unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("HeadCommit() = %s, want %s", got, want)
	}
}

func TestRepo_Checkout_UpdatesWorkingTree(t *testing.T) {
	tr, repo := openTestRepo(t, TestRepoOptions{Branches: []string{"topic"}})
	tr.Commit("README.md", "main\n", "second commit")
	tr.Commit("extra.txt", "extra\n", "third commit")

	ref, _, _ := repo.FindReference("topic")
	if err := repo.Checkout(ref); err != nil {
		t.Fatalf("Checkout(topic) unexpected error: %v", err)
	}
	if got := readFile(t, tr, "README.md"); got != "initial\n" {
		t.Errorf("README.md = %q, want %q", got, "initial\n")
	}
	if _, err := os.Stat(filepath.Join(tr.Path, "extra.txt")); !os.IsNotExist(err) {
		t.Errorf("extra.txt still present on topic: %v", err)
	}
	if dirty, _ := repo.IsDirty(); dirty {
		t.Error("working tree dirty after checkout")
	}

	if err := repo.CreateBranch("from-main", "main"); err != nil {
		t.Fatalf("CreateBranch() unexpected error: %v", err)
	}
	if got := readFile(t, tr, "README.md"); got != "main\n" {
		t.Errorf("README.md = %q after CreateBranch, want %q", got, "main\n")
	}
	if dirty, _ := repo.IsDirty(); dirty {
		t.Error("working tree dirty after CreateBranch")
	}
}

func TestRepo_Checkout_LocalChanges(t *testing.T) {
	tr, repo := openTestRepo(t, TestRepoOptions{Branches: []string{"topic"}})
	tr.Commit("README.md", "main\n", "second commit")
	tr.MakeDirty()

	ref, _, _ := repo.FindReference("topic")
	if err := repo.Checkout(ref); !errors.Is(err, ErrLocalChanges) {
		t.Errorf("Checkout() error = %v, want ErrLocalChanges", err)
	}
	if err := repo.CreateBranch("fresh", "topic"); !errors.Is(err, ErrLocalChanges) {
		t.Errorf("CreateBranch() error = %v, want ErrLocalChanges", err)
	}
	if got := tr.Head().Target(); got != plumbing.NewBranchReferenceName("main") {
		t.Errorf("HEAD -> %s, want refs/heads/main", got)
	}
	if got := readFile(t, tr, "README.md"); got != "changed\n" {
		t.Errorf("README.md = %q, local change lost", got)
	}

	// Untracked files do not block a checkout.
	if err := os.WriteFile(filepath.Join(tr.Path, "README.md"), []byte("main\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tr.Path, "notes.txt"), []byte("todo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := repo.Checkout(ref); err != nil {
		t.Errorf("Checkout() with only untracked files: %v", err)
	}
}

func TestRepo_DeleteBranch(t *testing.T) {
	tr, repo := openTestRepo(t, TestRepoOptions{Branches: []string{"topic"}})

	if err := repo.DeleteBranch("main"); err == nil {
		t.Error("DeleteBranch() of the checked out branch should fail")
	}
	if err := repo.DeleteBranch("topic"); err != nil {
		t.Fatalf("DeleteBranch(topic) unexpected error: %v", err)
	}
	if _, err := tr.Git.Reference(plumbing.NewBranchReferenceName("topic"), false); err == nil {
		t.Error("topic still exists after DeleteBranch")
	}
}

func readFile(t *testing.T, tr *TestRepo, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(tr.Path, name))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}
