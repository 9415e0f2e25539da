package main

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"lab/internal/connection"
	"lab/internal/credentials"
	"lab/internal/dotgit"
	"lab/internal/forge"
	"lab/internal/logging"
	"lab/internal/repository"
)

const (
	groupLocal   = "local"
	groupProject = "project"
	groupSetup   = "setup"

	defaultWidth = 80
)

// app carries what commands share. Tests replace the streams, the working
// directory, the dialer and the credential store.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	reporter logging.Logger
	logger   *logging.AppLogger

	// workDir is where repository discovery starts; empty means the
	// process working directory.
	workDir   string
	dial      forge.Dialer
	openStore func() (*credentials.Store, error)
	// remoteURLs overrides the address fetch and push use for a remote,
	// keyed by remote name.
	remoteURLs map[string]string
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	logger := logging.GetDefault()
	return &app{
		in:       in,
		out:      out,
		errOut:   errOut,
		reporter: logging.NewReporter(errOut),
		logger:   logger,
		dial:     forge.Dial,
		openStore: func() (*credentials.Store, error) {
			return credentials.Open(logger)
		},
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "git-lab",
		Short: "Work with GitLab projects from a git checkout",
		Long: `git-lab talks to the GitLab instance behind the origin remote of the
current repository. Run it as "git lab <command>".`,
		Version:                    versionString(),
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.AddGroup(
		&cobra.Group{ID: groupLocal, Title: "Local Commands:"},
		&cobra.Group{ID: groupProject, Title: "Project Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	root.AddCommand(a.newFeatureCmd())
	root.AddCommand(a.newWorkflowCmd())
	root.AddCommand(a.newRewriteRemoteCmd())
	root.AddCommand(a.newCheckoutCmd())

	root.AddCommand(a.newProjectCmd())
	root.AddCommand(a.newMergeRequestsCmd())
	root.AddCommand(a.newMergeRequestCmd())
	root.AddCommand(a.newForkCmd())
	root.AddCommand(a.newSearchCmd())
	root.AddCommand(a.newIssuesCmd())
	root.AddCommand(a.newSnippetCmd())

	root.AddCommand(a.newLoginCmd())
	root.AddCommand(a.newLogoutCmd())

	return root
}

// run executes args and returns the exit status.
func (a *app) run(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	return report(a.reporter, root.ExecuteContext(ctx))
}

// connect resolves the project behind the working copy.
func (a *app) connect(ctx context.Context) (*connection.ResolvedProject, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	return connection.Open(ctx, connection.Options{
		StartDir: a.workDir,
		Store:    store,
		Dial:     a.dial,
		Logger:   a.logger,
	})
}

// openRepo opens the working copy enclosing workDir.
func (a *app) openRepo() (*repository.Repo, error) {
	var (
		root string
		err  error
	)
	if a.workDir == "" {
		root, err = dotgit.LocateCwd()
	} else {
		root, err = dotgit.Locate(a.workDir)
	}
	if err != nil {
		return nil, err
	}
	return repository.Open(root, a.logger)
}

// transfer returns the options for fetching from or pushing to remote.
func (a *app) transfer(remote string) repository.TransferOptions {
	return repository.TransferOptions{Remote: remote, URL: a.remoteURLs[remote]}
}

func (a *app) info(msg string) {
	a.reporter.Log(logging.SeverityInfo, msg)
}

// width is the terminal width from $COLUMNS, or 80.
func width() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	return defaultWidth
}
