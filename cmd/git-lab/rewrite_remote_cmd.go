package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	laberrors "lab/internal/errors"
	"lab/internal/remoteurl"
	"lab/internal/repository"
)

func (a *app) newRewriteRemoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rewrite-remote <remote>",
		Short:   "Rewrite the remote url to ssh",
		Example: "  git lab rewrite-remote origin",
		GroupID: groupLocal,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op laberrors.Op = "main.rewriteRemote"
			name := args[0]

			repo, err := a.openRepo()
			if err != nil {
				return err
			}

			current, err := repo.RemoteURL(name)
			if err != nil {
				if errors.Is(err, repository.ErrRemoteNotFound) {
					return laberrors.E(op, laberrors.KindRemoteMissing, fmt.Sprintf("No remote named %s exists", name), err)
				}
				return err
			}

			normalized, err := remoteurl.Normalize(current)
			if err != nil {
				return err
			}
			rewritten := remoteurl.SSHURLFromHTTP(normalized)

			if rewritten == current {
				a.info(fmt.Sprintf("Remote %s already uses %s", name, current))
				return nil
			}
			if err := repo.SetRemoteURL(name, rewritten); err != nil {
				return err
			}
			if remoteurl.Equal(current, rewritten) {
				a.info(fmt.Sprintf("Normalized remote %s to %s", name, rewritten))
			} else {
				a.info(fmt.Sprintf("Rewrote remote %s to %s", name, rewritten))
			}
			return nil
		},
	}
}
