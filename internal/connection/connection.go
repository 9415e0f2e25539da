// Package connection resolves the forge project behind the current working
// copy.
//
// Open runs the whole chain once: find the repository, read its origin
// remote, derive the instance and project identifier, look up the
// credential, authenticate and fetch the project. It stops at the first
// failure and returns an error whose kind tells the caller what went wrong;
// nothing here exits the process.
package connection

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"lab/internal/credentials"
	"lab/internal/dotgit"
	laberrors "lab/internal/errors"
	"lab/internal/forge"
	"lab/internal/logging"
	"lab/internal/remoteurl"
	"lab/internal/repository"
)

// User-facing messages for the failures Open can report.
const (
	MsgNoOrigin      = "No origin remote exists"
	MsgNoHostname    = "Failed to detect GitLab hostname"
	MsgNoToken       = "No authentication token found."
	MsgLoginFailed   = "Could not log into GitLab"
	MsgConnectFailed = "Failed to connect to GitLab"
)

// CredentialLookup is the part of the credential store Open needs.
type CredentialLookup interface {
	Token(host string) (credentials.Credential, bool, error)
}

// Options configures Open.
type Options struct {
	// StartDir is where repository discovery begins. Empty means the
	// process working directory.
	StartDir string
	Store    CredentialLookup
	// Dial builds the forge client. Defaults to forge.Dial.
	Dial   forge.Dialer
	Logger *logging.AppLogger
}

// ResolvedProject is an authenticated session bound to the project the
// origin remote points at.
type ResolvedProject struct {
	Root       string
	Repository *repository.Repo
	Instance   remoteurl.Instance
	// Identifier is the query-escaped project path used for API calls.
	Identifier string
	Client     forge.Client
	Project    *forge.Project
	User       *forge.User
}

// Open resolves the project for opts.StartDir.
func Open(ctx context.Context, opts Options) (*ResolvedProject, error) {
	const op laberrors.Op = "connection.Open"

	logger := opts.Logger
	if logger == nil {
		logger = logging.GetDefault()
	}
	dial := opts.Dial
	if dial == nil {
		dial = forge.Dial
	}
	if opts.Store == nil {
		return nil, laberrors.E(op, laberrors.KindInvalid, "no credential store configured")
	}

	var (
		root string
		err  error
	)
	if opts.StartDir == "" {
		root, err = dotgit.LocateCwd()
	} else {
		root, err = dotgit.Locate(opts.StartDir)
	}
	if err != nil {
		return nil, err
	}
	logger.LogStep("connection", "locate", "root", root)

	repo, err := repository.Open(root, logger)
	if err != nil {
		return nil, laberrors.E(op, laberrors.KindDiscovery, dotgit.NotFoundMessage, err)
	}

	origin, err := repo.OriginURL()
	if err != nil {
		return nil, laberrors.E(op, laberrors.KindRemoteMissing, MsgNoOrigin, err)
	}
	logger.LogStep("connection", "origin", "url", origin)

	instance, err := remoteurl.InstanceURL(origin)
	if err != nil {
		return nil, err
	}

	host, err := hostname(instance)
	if err != nil {
		return nil, laberrors.E(op, laberrors.KindURLFormat, MsgNoHostname, err)
	}

	cred, ok, err := opts.Store.Token(host)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, laberrors.E(op, laberrors.KindCredentialMissing, missingTokenMessage(instance, host))
	}

	secret, err := cred.Secret(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	client, err := dial(instance.URL(), secret)
	if err != nil {
		return nil, laberrors.E(op, laberrors.KindAuthentication, loginFailedMessage(instance), err)
	}
	if client == nil {
		return nil, laberrors.E(op, laberrors.KindAuthentication, MsgConnectFailed)
	}
	user, err := client.Authenticate(ctx)
	if err != nil {
		return nil, laberrors.E(op, laberrors.KindAuthentication, loginFailedMessage(instance), err)
	}
	logger.LogPerformance("connection.authenticate", start)

	id, err := remoteurl.ProjectIdentifier(origin)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	project, err := client.Project(ctx, id)
	if err != nil {
		return nil, laberrors.E(op, laberrors.KindProjectLookup, err.Error(), err)
	}
	logger.LogPerformance("connection.project", start)
	logger.Debug("Resolved project", "project", project.PathWithNamespace, "instance", instance.URL(), "user", user.Username)
	logger.DebugObject("project", project)

	return &ResolvedProject{
		Root:       root,
		Repository: repo,
		Instance:   instance,
		Identifier: id,
		Client:     client,
		Project:    project,
		User:       user,
	}, nil
}

func hostname(instance remoteurl.Instance) (string, error) {
	u, err := url.Parse(instance.URL())
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("no hostname in %q", instance.URL())
	}
	return u.Hostname(), nil
}

func missingTokenMessage(instance remoteurl.Instance, host string) string {
	var b strings.Builder
	b.WriteString(MsgNoToken + "\n")
	fmt.Fprintf(&b, "Please create a token with the api and write_repository scopes on %s.\n", instance.TokenPage())
	fmt.Fprintf(&b, "Afterwards use \"git lab login --host %s --token t0k3n\"", host)
	return b.String()
}

func loginFailedMessage(instance remoteurl.Instance) string {
	return MsgLoginFailed + ": " + instance.URL()
}
