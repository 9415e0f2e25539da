// Package feature implements "git lab feature": list branches, switch to an
// existing reference or start a new branch.
package feature

import (
	"fmt"
	"io"
	"strings"

	laberrors "lab/internal/errors"
	"lab/internal/logging"
	"lab/internal/repository"
)

// DefaultStart is where new branches start when no start point is given.
const DefaultStart = "HEAD"

// Run lists branches to out when name is empty and checks out name
// otherwise. Outcomes are reported through log.
//
// A failed checkout is returned as a KindBranchOperation error and the
// caller decides whether that is fatal. Failing to read the repository is
// a KindIO error.
func Run(repo *repository.Repo, start, name string, out io.Writer, log logging.Logger) error {
	if name == "" {
		return List(repo, out)
	}
	return Checkout(repo, start, name, log)
}

// List writes the local branches in `git branch` format: the checked out
// branch is marked with "* ", the others are indented by two spaces.
func List(repo *repository.Repo, out io.Writer) error {
	const op laberrors.Op = "feature.List"

	current, err := repo.CurrentBranch()
	if err != nil {
		return laberrors.E(op, laberrors.KindIO, err)
	}
	branches, err := repo.Branches()
	if err != nil {
		return laberrors.E(op, laberrors.KindIO, err)
	}

	var b strings.Builder
	if current == "" {
		hash, err := repo.HeadCommit()
		if err != nil {
			return laberrors.E(op, laberrors.KindIO, err)
		}
		fmt.Fprintf(&b, "* (HEAD detached at %s)\n", hash.String()[:7])
	}
	for _, branch := range branches {
		marker := "  "
		if branch == current {
			marker = "* "
		}
		b.WriteString(marker + branch + "\n")
	}

	_, err = io.WriteString(out, b.String())
	return err
}

// Checkout switches to the reference called name if one exists, or creates
// branch name at start and switches to it.
func Checkout(repo *repository.Repo, start, name string, log logging.Logger) error {
	const op laberrors.Op = "feature.Checkout"

	if start == "" {
		start = DefaultStart
	}
	if log == nil {
		log = logging.Discard
	}

	ref, exists, err := repo.FindReference(name)
	if err != nil {
		return branchError(op, err)
	}

	if exists {
		if err := repo.Checkout(ref); err != nil {
			return branchError(op, err)
		}
		log.Log(logging.SeverityInfo, fmt.Sprintf("Switched to branch '%s'", name))
		return nil
	}

	if err := repo.CreateBranch(name, start); err != nil {
		return branchError(op, err)
	}
	log.Log(logging.SeverityInfo, fmt.Sprintf("Switched to a new branch '%s'", name))
	return nil
}

func branchError(op laberrors.Op, err error) error {
	return laberrors.E(op, laberrors.KindBranchOperation, strings.TrimSpace(laberrors.UserMessage(err)), err)
}
