package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"

	laberrors "lab/internal/errors"
)

// TransferOptions selects the remote Fetch and Push talk to.
type TransferOptions struct {
	Remote string
	// URL replaces the remote's configured address when set.
	URL string
}

func (o TransferOptions) remote() string {
	if o.Remote == "" {
		return OriginRemote
	}
	return o.Remote
}

// FetchRef fetches the remote reference src into the local reference dst,
// overwriting dst, and returns the commit dst now points to.
func (r *Repo) FetchRef(ctx context.Context, opts TransferOptions, src string, dst plumbing.ReferenceName) (plumbing.Hash, error) {
	const op laberrors.Op = "repository.FetchRef"

	spec := config.RefSpec(fmt.Sprintf("+%s:%s", src, dst))
	if err := spec.Validate(); err != nil {
		return plumbing.ZeroHash, laberrors.E(op, laberrors.KindInvalid, fmt.Sprintf("invalid refspec %s", spec), err)
	}

	if r.logger != nil {
		r.logger.Debug("Fetching reference", "remote", opts.remote(), "refspec", spec.String())
	}
	err := r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: opts.remote(),
		RemoteURL:  opts.URL,
		RefSpecs:   []config.RefSpec{spec},
		Tags:       plumbing.NoTags,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return plumbing.ZeroHash, laberrors.E(op, laberrors.KindIO,
			fmt.Sprintf("Failed to fetch %s from %s", src, opts.remote()), err)
	}

	ref, err := r.repo.Reference(dst, true)
	if err != nil {
		return plumbing.ZeroHash, laberrors.E(op, laberrors.KindIO, fmt.Sprintf("%s was not fetched", src), err)
	}
	return ref.Hash(), nil
}

// PushBranch pushes the local branch to the branch of the same name on the
// remote. A remote that is already up to date is not an error.
func (r *Repo) PushBranch(ctx context.Context, opts TransferOptions, branch string) error {
	const op laberrors.Op = "repository.PushBranch"

	ref := plumbing.NewBranchReferenceName(branch)
	spec := config.RefSpec(fmt.Sprintf("%s:%s", ref, ref))

	if r.logger != nil {
		r.logger.Debug("Pushing branch", "remote", opts.remote(), "branch", branch)
	}
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: opts.remote(),
		RemoteURL:  opts.URL,
		RefSpecs:   []config.RefSpec{spec},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return laberrors.E(op, laberrors.KindIO, fmt.Sprintf("Failed to push %s to %s", branch, opts.remote()), err)
	}
	return nil
}

// AddRemote configures a new remote called name.
func (r *Repo) AddRemote(name, url string) error {
	const op laberrors.Op = "repository.AddRemote"

	_, err := r.repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}})
	if errors.Is(err, git.ErrRemoteExists) {
		return laberrors.E(op, laberrors.KindInvalid, fmt.Sprintf("A remote named %s already exists", name), err)
	}
	if err != nil {
		return laberrors.E(op, laberrors.KindIO, fmt.Sprintf("failed to add remote %s", name), err)
	}
	return nil
}

// HeadMessage returns the subject line and body of the commit HEAD points to.
func (r *Repo) HeadMessage() (subject, body string, err error) {
	hash, err := r.HeadCommit()
	if err != nil {
		return "", "", err
	}
	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return "", "", laberrors.E(laberrors.Op("repository.HeadMessage"), laberrors.KindIO, "failed to read HEAD commit", err)
	}

	subject, body, _ = strings.Cut(strings.TrimSpace(commit.Message), "\n")
	return strings.TrimSpace(subject), strings.TrimSpace(body), nil
}
