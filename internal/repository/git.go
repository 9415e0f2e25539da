package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"

	laberrors "lab/internal/errors"
	"lab/internal/logging"
)

// OriginRemote is the remote every project-scoped command resolves against.
const OriginRemote = "origin"

// ErrRemoteNotFound is returned when a named remote does not exist or has
// no URL configured.
var ErrRemoteNotFound = errors.New("remote not found")

// Repo is a local git working copy opened through go-git.
//
// It exposes only what git-lab needs: remotes, references, checkout, branch
// creation and the [lab] section of the repository config.
type Repo struct {
	root   string
	repo   *git.Repository
	logger *logging.AppLogger
}

// Open opens the repository whose working tree is rooted at root.
// root is usually the result of dotgit.Locate.
func Open(root string, logger *logging.AppLogger) (*Repo, error) {
	const op laberrors.Op = "repository.Open"

	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, laberrors.E(op, laberrors.KindDiscovery, fmt.Sprintf("failed to open repository at %s", root), err)
	}

	if logger != nil {
		logger.Debug("Opened repository", "root", root)
	}
	return &Repo{root: root, repo: repo, logger: logger}, nil
}

// Root returns the working tree root the repository was opened at.
func (r *Repo) Root() string {
	return r.root
}

// Remote describes a configured remote.
type Remote struct {
	Name string
	URLs []string
}

// Remotes lists configured remotes sorted by name.
func (r *Repo) Remotes() ([]Remote, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return nil, laberrors.E(laberrors.Op("repository.Remotes"), laberrors.KindIO, "failed to list remotes", err)
	}

	out := make([]Remote, 0, len(remotes))
	for _, rm := range remotes {
		cfg := rm.Config()
		out = append(out, Remote{Name: cfg.Name, URLs: append([]string(nil), cfg.URLs...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// RemoteURL returns the first URL of the named remote. It returns an error
// wrapping ErrRemoteNotFound when the remote is missing or has no URL.
func (r *Repo) RemoteURL(name string) (string, error) {
	rm, err := r.repo.Remote(name)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return "", fmt.Errorf("%s: %w", name, ErrRemoteNotFound)
		}
		return "", fmt.Errorf("failed to read remote %s: %w", name, err)
	}

	urls := rm.Config().URLs
	if len(urls) == 0 || strings.TrimSpace(urls[0]) == "" {
		return "", fmt.Errorf("%s has no url: %w", name, ErrRemoteNotFound)
	}
	return urls[0], nil
}

// OriginURL is RemoteURL(OriginRemote).
func (r *Repo) OriginURL() (string, error) {
	return r.RemoteURL(OriginRemote)
}

// SetRemoteURL replaces all URLs of the named remote with url.
func (r *Repo) SetRemoteURL(name, url string) error {
	const op laberrors.Op = "repository.SetRemoteURL"

	cfg, err := r.repo.Config()
	if err != nil {
		return laberrors.E(op, laberrors.KindIO, "failed to read repository config", err)
	}

	remote, ok := cfg.Remotes[name]
	if !ok {
		return laberrors.E(op, laberrors.KindRemoteMissing, fmt.Sprintf("No remote named %s exists", name), ErrRemoteNotFound)
	}
	remote.URLs = []string{url}

	if err := r.repo.Storer.SetConfig(cfg); err != nil {
		return laberrors.E(op, laberrors.KindIO, "failed to write repository config", err)
	}

	if r.logger != nil {
		r.logger.Debug("Updated remote url", "remote", name, "url", url)
	}
	return nil
}

// RefKind classifies a reference.
type RefKind int

const (
	RefBranch RefKind = iota
	RefRemoteBranch
	RefTag
	RefOther
)

// Ref is a named reference together with its short name, e.g. "main",
// "origin/main" or "v1.0".
type Ref struct {
	Name  plumbing.ReferenceName
	Short string
	Kind  RefKind
}

// References lists branches, remote-tracking branches and tags. Symbolic
// refs such as HEAD and origin/HEAD are skipped.
func (r *Repo) References() ([]Ref, error) {
	iter, err := r.repo.References()
	if err != nil {
		return nil, laberrors.E(laberrors.Op("repository.References"), laberrors.KindIO, "failed to list references", err)
	}
	defer iter.Close()

	var refs []Ref
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		kind := RefOther
		switch {
		case name.IsBranch():
			kind = RefBranch
		case name.IsRemote():
			kind = RefRemoteBranch
		case name.IsTag():
			kind = RefTag
		default:
			return nil
		}
		refs = append(refs, Ref{Name: name, Short: name.Short(), Kind: kind})
		return nil
	})
	if err != nil {
		return nil, laberrors.E(laberrors.Op("repository.References"), laberrors.KindIO, "failed to list references", err)
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Kind != refs[j].Kind {
			return refs[i].Kind < refs[j].Kind
		}
		return refs[i].Short < refs[j].Short
	})
	return refs, nil
}

// FindReference returns the reference whose short name is short. Local
// branches win over remote-tracking branches, which win over tags.
func (r *Repo) FindReference(short string) (Ref, bool, error) {
	refs, err := r.References()
	if err != nil {
		return Ref{}, false, err
	}
	for _, ref := range refs {
		if ref.Short == short {
			return ref, true, nil
		}
	}
	return Ref{}, false, nil
}

// CurrentBranch returns the short name of the checked out branch, or "" for
// a detached HEAD. An unborn branch is reported by name.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", laberrors.E(laberrors.Op("repository.CurrentBranch"), laberrors.KindIO, "failed to read HEAD", err)
	}
	if head.Type() == plumbing.SymbolicReference {
		return head.Target().Short(), nil
	}
	return "", nil
}

// HeadCommit returns the hash HEAD resolves to.
func (r *Repo) HeadCommit() (plumbing.Hash, error) {
	head, err := r.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, laberrors.E(laberrors.Op("repository.HeadCommit"), laberrors.KindIO, "failed to resolve HEAD", err)
	}
	return head.Hash(), nil
}

// Branches lists local branch names in sorted order.
func (r *Repo) Branches() ([]string, error) {
	refs, err := r.References()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, ref := range refs {
		if ref.Kind == RefBranch {
			names = append(names, ref.Short)
		}
	}
	return names, nil
}

// ErrLocalChanges is returned when a checkout would overwrite modified
// tracked files.
var ErrLocalChanges = errors.New("your local changes would be overwritten by checkout; commit or stash them first")

// Checkout switches the working tree to ref. Local branches are checked out
// by name; anything else leaves HEAD detached at the resolved commit.
// Modified tracked files make it fail with ErrLocalChanges before HEAD moves.
func (r *Repo) Checkout(ref Ref) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if err := ensureNoLocalChanges(wt); err != nil {
		return err
	}

	opts := &git.CheckoutOptions{}
	if ref.Kind == RefBranch {
		opts.Branch = ref.Name
	} else {
		hash, err := r.repo.ResolveRevision(plumbing.Revision(ref.Name.String()))
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", ref.Short, err)
		}
		opts.Hash = *hash
	}

	if r.logger != nil {
		r.logger.Debug("Checking out reference", "ref", ref.Name.String())
	}
	return wt.Checkout(opts)
}

// CreateBranch creates branch name at the commit start resolves to and
// checks it out. start accepts any revision go-git understands ("HEAD",
// a branch, a tag, a hash, "HEAD~2").
func (r *Repo) CreateBranch(name, start string) error {
	if err := plumbing.NewBranchReferenceName(name).Validate(); err != nil {
		return fmt.Errorf("'%s' is not a valid branch name", name)
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(start))
	if err != nil {
		return fmt.Errorf("'%s' is not a commit and a branch '%s' cannot be created from it", start, name)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if err := ensureNoLocalChanges(wt); err != nil {
		return err
	}

	if r.logger != nil {
		r.logger.Debug("Creating branch", "branch", name, "start", start, "hash", hash.String())
	}
	return wt.Checkout(&git.CheckoutOptions{
		Hash:   *hash,
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
}

// DeleteBranch removes the local branch name. The checked out branch
// cannot be deleted.
func (r *Repo) DeleteBranch(name string) error {
	current, err := r.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		return fmt.Errorf("cannot delete branch '%s' checked out at '%s'", name, r.root)
	}
	if err := r.repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(name)); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", name, err)
	}
	return nil
}

// ensureNoLocalChanges fails when a tracked file differs from HEAD in the
// index or on disk. Untracked files are ignored, as git does.
func ensureNoLocalChanges(wt *git.Worktree) error {
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to get repository status: %w", err)
	}
	for _, fs := range status {
		if changed(fs.Staging) || changed(fs.Worktree) {
			return ErrLocalChanges
		}
	}
	return nil
}

func changed(code git.StatusCode) bool {
	return code != git.Unmodified && code != git.Untracked
}

// IsDirty reports whether the working tree has uncommitted changes.
func (r *Repo) IsDirty() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get working tree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get repository status: %w", err)
	}
	return !status.IsClean(), nil
}

func (r *Repo) config() (*config.Config, error) {
	return r.repo.Config()
}

func (r *Repo) setConfig(cfg *config.Config) error {
	return r.repo.Storer.SetConfig(cfg)
}
