package main

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"lab/internal/connection"
	laberrors "lab/internal/errors"
	"lab/internal/forge"
	"lab/internal/remoteurl"
	"lab/internal/repository"
)

// forkRemote is the remote that points at the user's fork.
const forkRemote = "fork"

func (a *app) newForkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fork",
		Short: "Fork the project and add a fork remote",
		Long: `Fork the project behind origin into your namespace and add it as the
"fork" remote. An existing fork is reused.`,
		GroupID: groupProject,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rp, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			_, err = a.ensureFork(cmd.Context(), rp)
			return err
		},
	}
}

// ensureFork makes sure the user has a fork of the project and a fork
// remote pointing at it. It returns the fork's project identifier.
func (a *app) ensureFork(ctx context.Context, rp *connection.ResolvedProject) (string, error) {
	const op laberrors.Op = "main.ensureFork"

	repo := rp.Repository
	hasRemote := true
	if _, err := repo.RemoteURL(forkRemote); err != nil {
		if !errors.Is(err, repository.ErrRemoteNotFound) {
			return "", laberrors.E(op, laberrors.KindIO, err)
		}
		hasRemote = false
	}

	fork, err := rp.Client.ForkProject(ctx, rp.Identifier)
	switch {
	case err == nil:
		a.info("Created fork at " + fork.WebURL)
		if !hasRemote {
			if err := repo.AddRemote(forkRemote, fork.HTTPURL); err != nil {
				return "", err
			}
		}
	case errors.Is(err, forge.ErrConflict) && hasRemote:
		a.info("Fork already exists, continuing")
	case errors.Is(err, forge.ErrConflict):
		a.info("Fork exists, but no fork remote exists locally, trying to guess the url")
		guess := rp.User.WebURL + "/" + path.Base(rp.Project.PathWithNamespace)
		if err := repo.AddRemote(forkRemote, guess); err != nil {
			return "", err
		}
	default:
		return "", laberrors.E(op, laberrors.KindForge, fmt.Sprintf("Failed to fork %s", rp.Project.PathWithNamespace), err)
	}

	forkURL, err := repo.RemoteURL(forkRemote)
	if err != nil {
		return "", laberrors.E(op, laberrors.KindRemoteMissing, "No fork remote exists", err)
	}
	return remoteurl.ProjectIdentifier(forkURL)
}
