package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	laberrors "lab/internal/errors"
	"lab/internal/forge"
	"lab/internal/repository"
)

const fallbackTargetBranch = "master"

func (a *app) newMergeRequestCmd() *cobra.Command {
	var target, title, description string

	cmd := &cobra.Command{
		Use:   "mr",
		Short: "Push the current branch and open a merge request",
		Long: `Push the current branch and open a merge request for it.

With the fork workflow the branch goes to your fork, which is created when
needed, and the merge request targets the project behind origin. With the
workbranch workflow the branch is pushed to origin itself.

Title and description default to the subject and body of the last commit.`,
		GroupID: groupProject,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op laberrors.Op = "main.mr"

			rp, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			repo := rp.Repository

			branch, err := repo.CurrentBranch()
			if err != nil {
				return err
			}
			if branch == "" {
				return laberrors.E(op, laberrors.KindInvalid, "HEAD is detached; check out the branch to propose first")
			}

			if target == "" {
				target = rp.Project.DefaultBranch
			}
			if target == "" {
				target = fallbackTargetBranch
			}

			if title == "" {
				subject, body, err := repo.HeadMessage()
				if err != nil {
					return err
				}
				title = subject
				if description == "" {
					description = body
				}
			}

			workflow, err := repo.Workflow()
			if err != nil {
				return err
			}

			opts := forge.MergeRequestOptions{
				SourceBranch: branch,
				TargetBranch: target,
				Title:        title,
				Description:  description,
			}
			projectID := rp.Identifier
			remote := repository.OriginRemote

			if workflow == repository.WorkflowFork {
				forkID, err := a.ensureFork(cmd.Context(), rp)
				if err != nil {
					return err
				}
				projectID = forkID
				remote = forkRemote
				opts.TargetProjectID = rp.Project.ID
				opts.AllowCollaboration = true
			} else if branch == target {
				return laberrors.E(op, laberrors.KindInvalid,
					fmt.Sprintf("Cannot open a merge request from %s into itself; create a feature branch first", branch))
			}

			if err := repo.PushBranch(cmd.Context(), a.transfer(remote), branch); err != nil {
				return err
			}

			mr, err := rp.Client.CreateMergeRequest(cmd.Context(), projectID, opts)
			if errors.Is(err, forge.ErrConflict) {
				a.info("Merge request already exists")
				return nil
			}
			if err != nil {
				return laberrors.E(op, laberrors.KindForge, "Failed to create merge request", err)
			}
			a.info("Created merge request at " + mr.WebURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target-branch", "", "Branch to merge into (default: the project's default branch)")
	cmd.Flags().StringVar(&title, "title", "", "Merge request title (default: subject of the last commit)")
	cmd.Flags().StringVar(&description, "description", "", "Merge request description (default: body of the last commit)")

	return cmd
}
