package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lab/internal/forge"
	"lab/internal/ui/render"
	"lab/internal/ui/styles"
)

func (a *app) newMergeRequestsCmd() *cobra.Command {
	var (
		forProject             bool
		opened, merged, closed bool
		showURL                bool
	)

	cmd := &cobra.Command{
		Use:     "mrs",
		Short:   "List merge requests",
		Long:    "List your merge requests on the instance, or all merge requests of the current project with --project.",
		GroupID: groupProject,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rp, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			filter := forge.MergeRequestFilter{}
			switch {
			case opened:
				filter.State = forge.StateOpened
			case merged:
				filter.State = forge.StateMerged
			case closed:
				filter.State = forge.StateClosed
			}

			projectID := ""
			if forProject {
				projectID = rp.Identifier
			} else {
				filter.Scope = forge.ScopeCreatedByMe
			}

			mrs, err := rp.Client.MergeRequests(cmd.Context(), projectID, filter)
			if err != nil {
				return err
			}
			if len(mrs) == 0 {
				a.info("No merge requests found")
				return nil
			}

			out := cmd.OutOrStdout()
			s := styles.For(out)

			headers := []string{"Reference", "Title", "State"}
			if showURL {
				headers = append(headers, "URL")
			}
			rows := make([][]string, 0, len(mrs))
			for _, mr := range mrs {
				title := mr.Title
				if mr.Draft {
					title = s.Muted.Render("Draft: ") + title
				}
				row := []string{s.Bold.Render(mr.Reference), render.Truncate(title, 60), mergeRequestState(s, mr.State)}
				if showURL {
					row = append(row, mr.WebURL)
				}
				rows = append(rows, row)
			}

			_, err = fmt.Fprint(out, render.Table(out, headers, rows))
			return err
		},
	}

	cmd.Flags().BoolVar(&forProject, "project", false, "Show merge requests of the current project, not of the user")
	cmd.Flags().BoolVar(&opened, "opened", false, "Show opened merge requests")
	cmd.Flags().BoolVar(&merged, "merged", false, "Show merged merge requests")
	cmd.Flags().BoolVar(&closed, "closed", false, "Show closed merge requests")
	cmd.Flags().BoolVar(&showURL, "url", false, "Show web url of merge requests")
	cmd.MarkFlagsMutuallyExclusive("opened", "merged", "closed")

	return cmd
}

func mergeRequestState(s styles.Set, state string) string {
	switch state {
	case forge.StateMerged:
		return s.Success.Render(state)
	case forge.StateClosed:
		return s.Error.Render(state)
	default:
		return state
	}
}
