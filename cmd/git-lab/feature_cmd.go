package main

import (
	"github.com/spf13/cobra"

	"lab/internal/feature"
)

func (a *app) newFeatureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feature [name] [start]",
		Short: "Create branches and list branches",
		Long: `Without arguments, list local branches.

With a name, switch to the branch, remote-tracking branch or tag of that
name, or create a new branch at start (default HEAD) when none exists.`,
		GroupID: groupLocal,
		Args:    cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			start := feature.DefaultStart
			if len(args) > 0 {
				name = args[0]
			}
			if len(args) > 1 {
				start = args[1]
			}

			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			return feature.Run(repo, start, name, cmd.OutOrStdout(), a.reporter)
		},
	}
}
