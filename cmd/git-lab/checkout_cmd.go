package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v6/plumbing"
	"github.com/spf13/cobra"

	laberrors "lab/internal/errors"
	"lab/internal/repository"
)

func (a *app) newCheckoutCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "checkout <number>",
		Aliases: []string{"patch"},
		Short:   "Check out a merge request locally",
		Long: `Fetch the head of merge request <number> from origin and check it out as a
local branch named after its source branch. An existing branch of that name
is only replaced with --force.`,
		GroupID: groupProject,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op laberrors.Op = "main.checkout"

			iid, err := strconv.ParseInt(strings.TrimPrefix(args[0], "!"), 10, 64)
			if err != nil || iid <= 0 {
				return laberrors.E(op, laberrors.KindInvalid, fmt.Sprintf("Invalid merge request id %s", args[0]))
			}

			rp, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			repo := rp.Repository

			mr, err := rp.Client.MergeRequest(cmd.Context(), rp.Identifier, iid)
			if err != nil {
				return laberrors.E(op, laberrors.KindForge, fmt.Sprintf("No merge request with ID %d", iid), err)
			}
			a.info(fmt.Sprintf("Checking out merge request %q", mr.Title))
			a.info("  branch: " + mr.SourceBranch)

			src := fmt.Sprintf("refs/merge-requests/%d/head", iid)
			dst := plumbing.NewRemoteReferenceName(repository.OriginRemote, fmt.Sprintf("merge-requests/%d", iid))
			hash, err := repo.FetchRef(cmd.Context(), a.transfer(repository.OriginRemote), src, dst)
			if err != nil {
				return err
			}

			branches, err := repo.Branches()
			if err != nil {
				return err
			}
			if slices.Contains(branches, mr.SourceBranch) {
				if !force {
					return laberrors.E(op, laberrors.KindInvalid,
						fmt.Sprintf("A branch named %s already exists; use --force to overwrite it", mr.SourceBranch))
				}
				// Detach first so the branch can be removed even when it is checked out.
				fetched := repository.Ref{Name: dst, Short: dst.Short(), Kind: repository.RefRemoteBranch}
				if err := repo.Checkout(fetched); err != nil {
					return laberrors.E(op, laberrors.KindIO, err.Error(), err)
				}
				if err := repo.DeleteBranch(mr.SourceBranch); err != nil {
					return laberrors.E(op, laberrors.KindIO, err.Error(), err)
				}
			}

			if err := repo.CreateBranch(mr.SourceBranch, hash.String()); err != nil {
				return laberrors.E(op, laberrors.KindIO, err.Error(), err)
			}
			a.info(fmt.Sprintf("Switched to branch '%s'", mr.SourceBranch))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing local branch of the same name")

	return cmd
}
