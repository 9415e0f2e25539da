package main

import (
	"fmt"

	"github.com/spf13/cobra"

	laberrors "lab/internal/errors"
	"lab/internal/ui/render"
	"lab/internal/ui/styles"
)

func (a *app) newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "search <query>",
		Short:   "Search projects on the instance",
		GroupID: groupProject,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rp, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			projects, err := rp.Client.SearchProjects(cmd.Context(), args[0])
			if err != nil {
				return laberrors.E(laberrors.Op("main.search"), laberrors.KindForge, "Project search failed", err)
			}
			if len(projects) == 0 {
				a.info("No projects found")
				return nil
			}

			out := cmd.OutOrStdout()
			s := styles.For(out)
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{s.Bold.Render(p.PathWithNamespace), render.Truncate(p.Description, 50), s.Info.Render(p.SSHURL)})
			}
			_, err = fmt.Fprint(out, render.Table(out, []string{"Project", "Description", "SSH URL"}, rows))
			return err
		},
	}
}
