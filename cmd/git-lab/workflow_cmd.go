package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lab/internal/repository"
)

func (a *app) newWorkflowCmd() *cobra.Command {
	var fork, workbranch bool

	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Set the workflow to use for a project",
		Long: `Store how merge requests are proposed for this repository:

  --workbranch  branches live in the upstream repository (default)
  --fork        branches live in a fork of the upstream repository

Without a flag, print the current workflow.`,
		GroupID: groupLocal,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openRepo()
			if err != nil {
				return err
			}

			switch {
			case fork:
				return a.setWorkflow(repo, repository.WorkflowFork)
			case workbranch:
				return a.setWorkflow(repo, repository.WorkflowWorkBranch)
			}

			current, err := repo.Workflow()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), current)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fork, "fork", false, "Set the fork workflow (branch in a fork of the upstream repository)")
	cmd.Flags().BoolVar(&workbranch, "workbranch", false, "Set the work branch workflow (branch in the upstream repository)")
	cmd.MarkFlagsMutuallyExclusive("fork", "workbranch")

	return cmd
}

func (a *app) setWorkflow(repo *repository.Repo, w repository.Workflow) error {
	if err := repo.SetWorkflow(w); err != nil {
		return err
	}
	a.info(fmt.Sprintf("Workflow set to %s", w))
	return nil
}
