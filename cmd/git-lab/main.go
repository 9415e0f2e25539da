// Command git-lab is a git subcommand for working with GitLab projects from
// inside a checkout: branches, merge requests, issues and snippets.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// Set at build time with -ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	code := a.run(ctx, os.Args[1:])

	cancel()
	os.Exit(code)
}

func versionString() string {
	return fmt.Sprintf("git-lab %s (%s, %s)", version, commit[:min(7, len(commit))], runtime.Version())
}
