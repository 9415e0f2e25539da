package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"lab/internal/connection"
	laberrors "lab/internal/errors"
	"lab/internal/forge"
	"lab/internal/ui/styles"
)

// noTime is shown for an estimate or spent time that was never set.
const noTime = "0h"

func (a *app) newIssueEstimateCmd() *cobra.Command {
	var (
		set   string
		reset bool
	)

	cmd := &cobra.Command{
		Use:   "estimate <id>",
		Short: "Show or change the time estimate of an issue",
		Long: `Show the time estimate of an issue. --set replaces it with a duration such
as 1w2d or 3h30m, --reset removes it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op laberrors.Op = "main.issueEstimate"

			iid, err := parseIssueID(op, args[0])
			if err != nil {
				return err
			}
			if set != "" && !forge.ValidDuration(set) {
				return invalidDuration(op, set)
			}

			rp, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			ctx, client := cmd.Context(), rp.Client

			switch {
			case reset:
				if _, err := client.ResetTimeEstimate(ctx, rp.Identifier, iid); err != nil {
					return timeError(op, iid, err)
				}
				a.info("Time estimate reset.")
			case set != "":
				if _, err := client.SetTimeEstimate(ctx, rp.Identifier, iid, set); err != nil {
					return timeError(op, iid, err)
				}
				a.info("Set estimate to " + set)
			default:
				issue, stats, err := issueTimes(ctx, rp, iid)
				if err != nil {
					return timeError(op, iid, err)
				}
				out := cmd.OutOrStdout()
				s := styles.For(out)
				_, err = fmt.Fprintf(out, "%s is estimated at %s (spent: %s)\n",
					s.Bold.Render(issue.Title), orNoTime(stats.HumanTimeEstimate), orNoTime(stats.HumanTotalTimeSpent))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&set, "set", "", "Set the estimate to a duration")
	cmd.Flags().BoolVar(&reset, "reset", false, "Remove the estimate")
	cmd.MarkFlagsMutuallyExclusive("set", "reset")

	return cmd
}

func (a *app) newIssueSpendCmd() *cobra.Command {
	var (
		add   string
		reset bool
	)

	cmd := &cobra.Command{
		Use:   "spend <id>",
		Short: "Show or track time spent on an issue",
		Long: `Show the time spent on an issue. --add records a duration such as 45m or
1d4h, --reset removes every entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op laberrors.Op = "main.issueSpend"

			iid, err := parseIssueID(op, args[0])
			if err != nil {
				return err
			}
			if add != "" && !forge.ValidDuration(add) {
				return invalidDuration(op, add)
			}

			rp, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			ctx, client := cmd.Context(), rp.Client

			switch {
			case reset:
				if _, err := client.ResetSpentTime(ctx, rp.Identifier, iid); err != nil {
					return timeError(op, iid, err)
				}
				a.info("Spent time reset.")
			case add != "":
				if _, err := client.AddSpentTime(ctx, rp.Identifier, iid, add); err != nil {
					return timeError(op, iid, err)
				}
				a.info("Added time entry of " + add)
			default:
				issue, stats, err := issueTimes(ctx, rp, iid)
				if err != nil {
					return timeError(op, iid, err)
				}
				out := cmd.OutOrStdout()
				s := styles.For(out)
				spent := s.Success
				if stats.Overdue() {
					spent = s.Error
				}
				_, err = fmt.Fprintf(out, "%s has %s tracked (estimated: %s)\n",
					s.Bold.Render(issue.Title), spent.Render(orNoTime(stats.HumanTotalTimeSpent)), orNoTime(stats.HumanTimeEstimate))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&add, "add", "", "Add a time entry of a duration")
	cmd.Flags().BoolVar(&reset, "reset", false, "Remove all time entries")
	cmd.MarkFlagsMutuallyExclusive("add", "reset")

	return cmd
}

func issueTimes(ctx context.Context, rp *connection.ResolvedProject, iid int64) (*forge.Issue, *forge.TimeStats, error) {
	issue, err := rp.Client.Issue(ctx, rp.Identifier, iid)
	if err != nil {
		return nil, nil, err
	}
	stats, err := rp.Client.TimeStats(ctx, rp.Identifier, iid)
	if err != nil {
		return nil, nil, err
	}
	return issue, stats, nil
}

func invalidDuration(op laberrors.Op, d string) error {
	return laberrors.E(op, laberrors.KindInvalid, fmt.Sprintf("%s is an invalid time string.", d))
}

func timeError(op laberrors.Op, iid int64, err error) error {
	return laberrors.E(op, laberrors.KindForge, fmt.Sprintf("Time tracking request for issue %d failed", iid), err)
}

func orNoTime(human string) string {
	if human == "" {
		return noTime
	}
	return human
}
