package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lab/internal/ui/render"
	"lab/internal/ui/styles"
)

func (a *app) newProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "project",
		Short:   "Show the GitLab project of the current repository",
		GroupID: groupProject,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rp, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			s := styles.For(out)
			p := rp.Project

			fields := [][2]string{
				{"Project", p.PathWithNamespace},
				{"ID", strconv.FormatInt(p.ID, 10)},
				{"Web URL", p.WebURL},
				{"Default branch", p.DefaultBranch},
				{"Visibility", p.Visibility},
				{"Instance", rp.Instance.URL()},
				{"Logged in as", rp.User.Username},
			}
			if p.ForkedFrom != "" {
				fields = append(fields, [2]string{"Forked from", p.ForkedFrom})
			}
			if p.Archived {
				fields = append(fields, [2]string{"Archived", "yes"})
			}

			var b strings.Builder
			for _, f := range fields {
				if f[1] == "" {
					continue
				}
				fmt.Fprintf(&b, "%s %s\n", s.Bold.Render(fmt.Sprintf("%-15s", f[0]+":")), f[1])
			}
			if p.Description != "" {
				b.WriteString("\n" + render.Wrap(p.Description, width()) + "\n")
			}

			_, err = fmt.Fprint(out, b.String())
			return err
		},
	}
}
