package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	laberrors "lab/internal/errors"
)

func (a *app) newLoginCmd() *cobra.Command {
	var host, token, command string

	cmd := &cobra.Command{
		Use:   "login --host <host> (--token <token> | --command <command>)",
		Short: "Save a token for a GitLab instance",
		Long: `Store the credential git-lab uses for a GitLab host.

--token saves a personal access token in the system keyring. --command saves
a shell command whose output is the token, e.g. "pass show gitlab".`,
		Example: `  git lab login --host invent.kde.org --token glpat-xxxxxxxx
  git lab login --host gitlab.com --command "pass show gitlab.com"`,
		GroupID: groupSetup,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			if command != "" {
				if err := store.SetAuthCommand(host, command); err != nil {
					return err
				}
			} else {
				if err := store.CheckKeyring(); err != nil {
					return laberrors.E(laberrors.Op("main.login"), laberrors.KindIO,
						"The system keyring is not available. Use --command to read the token from a password manager instead.", err)
				}
				if err := store.SetToken(host, token); err != nil {
					return err
				}
			}

			if err := store.Save(); err != nil {
				return err
			}
			a.info(fmt.Sprintf("Saved credentials for %s", host))
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "GitLab host (e.g invent.kde.org)")
	cmd.Flags().StringVar(&token, "token", "", "GitLab api private token")
	cmd.Flags().StringVar(&command, "command", "", "Command to run when a token is needed")
	_ = cmd.MarkFlagRequired("host")
	cmd.MarkFlagsMutuallyExclusive("token", "command")
	cmd.MarkFlagsOneRequired("token", "command")

	return cmd
}

func (a *app) newLogoutCmd() *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:     "logout --host <host>",
		Short:   "Forget the credential for a GitLab instance",
		GroupID: groupSetup,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			if !slices.Contains(store.Hosts(), host) {
				return laberrors.E(laberrors.Op("main.logout"), laberrors.KindCredentialMissing,
					fmt.Sprintf("No credentials stored for %s", host))
			}
			if err := store.Delete(host); err != nil {
				return err
			}
			if err := store.Save(); err != nil {
				return err
			}
			a.info(fmt.Sprintf("Removed credentials for %s", host))
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "GitLab host (e.g invent.kde.org)")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}
