package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lab/internal/connection"
	laberrors "lab/internal/errors"
	"lab/internal/forge"
	"lab/internal/ui/render"
	"lab/internal/ui/styles"
)

func (a *app) newIssuesCmd() *cobra.Command {
	var opened, closed, assigned, forProject bool

	cmd := &cobra.Command{
		Use:   "issues [id]",
		Short: "List issues or show one issue",
		Long: `Without an id, list issues you created or are assigned to on the whole
instance. --assigned keeps only issues assigned to you; --project lists every
issue of the current project instead.

With an id, show that issue of the current project.`,
		GroupID: groupProject,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op laberrors.Op = "main.issues"

			var iid int64
			if len(args) == 1 {
				n, err := parseIssueID(op, args[0])
				if err != nil {
					return err
				}
				iid = n
			}

			rp, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			if iid != 0 {
				return showIssue(cmd.Context(), cmd.OutOrStdout(), rp, iid)
			}

			filter := forge.IssueFilter{}
			switch {
			case opened:
				filter.State = forge.StateOpened
			case closed:
				filter.State = forge.StateClosed
			}
			issues, err := listIssues(cmd.Context(), rp, filter, assigned, forProject)
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				a.info("No issues found")
				return nil
			}

			out := cmd.OutOrStdout()
			s := styles.For(out)
			rows := make([][]string, 0, len(issues))
			for _, is := range issues {
				rows = append(rows, []string{s.Bold.Render(is.Reference), render.Truncate(is.Title, 60), issueState(s, is.State)})
			}
			_, err = fmt.Fprint(out, render.Table(out, []string{"Reference", "Title", "State"}, rows))
			return err
		},
	}

	cmd.Flags().BoolVar(&opened, "opened", false, "Show opened issues")
	cmd.Flags().BoolVar(&closed, "closed", false, "Show closed issues")
	cmd.Flags().BoolVar(&assigned, "assigned", false, "Show only issues assigned to me")
	cmd.Flags().BoolVar(&forProject, "project", false, "Show all project issues and not only the ones you authored")
	cmd.MarkFlagsMutuallyExclusive("opened", "closed")
	cmd.MarkFlagsMutuallyExclusive("assigned", "project")

	cmd.AddCommand(a.newIssueEstimateCmd())
	cmd.AddCommand(a.newIssueSpendCmd())

	return cmd
}

// listIssues lists project issues with --project, issues assigned to the
// user with --assigned, and otherwise the union of issues the user created
// or is assigned to.
func listIssues(ctx context.Context, rp *connection.ResolvedProject, filter forge.IssueFilter, assigned, forProject bool) ([]forge.Issue, error) {
	if forProject {
		filter.Scope = forge.ScopeAll
		return rp.Client.Issues(ctx, rp.Identifier, filter)
	}

	filter.Scope = forge.ScopeAssignedToMe
	assignedIssues, err := rp.Client.Issues(ctx, "", filter)
	if err != nil || assigned {
		return assignedIssues, err
	}

	filter.Scope = forge.ScopeCreatedByMe
	created, err := rp.Client.Issues(ctx, "", filter)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(created))
	issues := make([]forge.Issue, 0, len(created)+len(assignedIssues))
	for _, is := range append(created, assignedIssues...) {
		if seen[is.Reference] {
			continue
		}
		seen[is.Reference] = true
		issues = append(issues, is)
	}
	return issues, nil
}

func showIssue(ctx context.Context, out io.Writer, rp *connection.ResolvedProject, iid int64) error {
	const op laberrors.Op = "main.showIssue"

	issue, err := rp.Client.Issue(ctx, rp.Identifier, iid)
	if err != nil {
		return laberrors.E(op, laberrors.KindForge, fmt.Sprintf("No issue with ID %d", iid), err)
	}

	s := styles.For(out)
	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d) %s\n", s.Bold.Render(issue.Title), issue.IID, issueState(s, issue.State))

	var meta []string
	if issue.Author != "" {
		meta = append(meta, "opened by "+issue.Author)
	}
	if len(issue.Assignees) > 0 {
		meta = append(meta, "assigned to "+strings.Join(issue.Assignees, ", "))
	}
	if len(issue.Labels) > 0 {
		meta = append(meta, "labels: "+strings.Join(issue.Labels, ", "))
	}
	if len(meta) > 0 {
		b.WriteString(s.Muted.Render(render.Wrap(strings.Join(meta, " · "), width())) + "\n")
	}

	if strings.TrimSpace(issue.Description) != "" {
		body, err := render.Markdown(issue.Description, render.MarkdownStyle(out), width())
		if err != nil {
			return err
		}
		b.WriteString("\n" + body + "\n")
	}

	_, err = fmt.Fprint(out, b.String())
	return err
}

func issueState(s styles.Set, state string) string {
	if state == forge.StateOpened {
		return s.Success.Render(state)
	}
	return s.Error.Render(state)
}

func parseIssueID(op laberrors.Op, arg string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || n <= 0 {
		return 0, laberrors.E(op, laberrors.KindInvalid, fmt.Sprintf("Invalid issue id %s", arg))
	}
	return n, nil
}
