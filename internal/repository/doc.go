// Package repository gives git-lab read and write access to the local
// working copy through go-git.
//
// A Repo is opened from a root found by dotgit.Locate:
//
//	root, err := dotgit.Locate(cwd)
//	if err != nil { /* not inside a repository */ }
//	repo, err := repository.Open(root, logger)
//
// It covers the operations the commands need and nothing more:
//
//   - remotes: Remotes, RemoteURL, OriginURL, SetRemoteURL
//   - references: References, FindReference, CurrentBranch, Branches
//   - working tree: Checkout, CreateBranch, IsDirty
//   - the [lab] section of .git/config: Workflow, SetWorkflow
//
// Errors that a user should see are returned as *errors.Error values from
// lab/internal/errors. Checkout and CreateBranch return go-git's errors
// unchanged so callers can report git's own wording.
package repository
