// Package forge is git-lab's view of the GitLab API.
//
// Commands talk to a Client; the production implementation wraps
// gitlab.com/gitlab-org/api/client-go, tests use Fake.
package forge

import (
	"context"
	"errors"
	"time"
)

// ErrConflict marks API errors caused by something that already exists,
// such as an existing fork or merge request.
var ErrConflict = errors.New("already exists")

// Scopes accepted by the list filters.
const (
	ScopeAll          = "all"
	ScopeCreatedByMe  = "created_by_me"
	ScopeAssignedToMe = "assigned_to_me"
)

// States accepted by the list filters. An empty state means all states.
const (
	StateOpened = "opened"
	StateClosed = "closed"
	StateMerged = "merged"
)

// Client is an authenticated session against one forge instance.
//
// Project IDs are the query-escaped identifiers produced by
// remoteurl.ProjectIdentifier, or a numeric ID in decimal.
type Client interface {
	// Authenticate checks the credential and returns the user it belongs to.
	Authenticate(ctx context.Context) (*User, error)
	Project(ctx context.Context, id string) (*Project, error)
	CreateSnippet(ctx context.Context, opts SnippetOptions) (*Snippet, error)
	// MergeRequests lists merge requests of projectID, or of the whole
	// instance when projectID is empty.
	MergeRequests(ctx context.Context, projectID string, filter MergeRequestFilter) ([]MergeRequest, error)
	// Issues lists issues of projectID, or of the whole instance when
	// projectID is empty.
	Issues(ctx context.Context, projectID string, filter IssueFilter) ([]Issue, error)
	Issue(ctx context.Context, projectID string, iid int64) (*Issue, error)

	MergeRequest(ctx context.Context, projectID string, iid int64) (*MergeRequest, error)
	// CreateMergeRequest opens a merge request from a branch of projectID.
	// Errors for a merge request that already exists wrap ErrConflict.
	CreateMergeRequest(ctx context.Context, projectID string, opts MergeRequestOptions) (*MergeRequest, error)
	// ForkProject forks projectID into the user's namespace. Errors for a
	// fork that already exists wrap ErrConflict.
	ForkProject(ctx context.Context, projectID string) (*Project, error)
	SearchProjects(ctx context.Context, query string) ([]Project, error)

	TimeStats(ctx context.Context, projectID string, iid int64) (*TimeStats, error)
	SetTimeEstimate(ctx context.Context, projectID string, iid int64, duration string) (*TimeStats, error)
	ResetTimeEstimate(ctx context.Context, projectID string, iid int64) (*TimeStats, error)
	AddSpentTime(ctx context.Context, projectID string, iid int64, duration string) (*TimeStats, error)
	ResetSpentTime(ctx context.Context, projectID string, iid int64) (*TimeStats, error)
}

// Dialer builds a Client for an instance base URL and a token.
type Dialer func(instanceURL, token string) (Client, error)

type User struct {
	ID       int64
	Username string
	Name     string
	WebURL   string
}

type Project struct {
	ID                int64
	Name              string
	PathWithNamespace string
	Description       string
	WebURL            string
	SSHURL            string
	HTTPURL           string
	DefaultBranch     string
	Visibility        string
	// ForkedFrom is the path of the parent project, empty for non-forks.
	ForkedFrom      string
	Archived        bool
	ForksCount      int
	StarCount       int
	OpenIssuesCount int
}

// Visibility levels for snippets.
const (
	VisibilityPublic   = "public"
	VisibilityInternal = "internal"
	VisibilityPrivate  = "private"
)

type SnippetOptions struct {
	Title      string
	FileName   string
	Content    string
	Visibility string
}

type Snippet struct {
	ID     int64
	Title  string
	WebURL string
	RawURL string
}

type MergeRequestFilter struct {
	State string
	Scope string
}

type MergeRequest struct {
	IID          int64
	Reference    string
	Title        string
	State        string
	Author       string
	SourceBranch string
	TargetBranch string
	WebURL       string
	Draft        bool
}

type MergeRequestOptions struct {
	SourceBranch string
	TargetBranch string
	Title        string
	Description  string
	// TargetProjectID is the project the merge request is opened against,
	// zero for the source project itself.
	TargetProjectID int64
	// AllowCollaboration lets maintainers of the target push to the source
	// branch.
	AllowCollaboration bool
}

type IssueFilter struct {
	State string
	Scope string
}

type Issue struct {
	IID         int64
	Reference   string
	Title       string
	State       string
	Author      string
	Assignees   []string
	Labels      []string
	Description string
	WebURL      string
	CreatedAt   time.Time
}

// TimeStats is the time tracking state of an issue. Human fields use
// GitLab's duration notation, e.g. "1d 2h".
type TimeStats struct {
	TimeEstimate        int64
	TotalTimeSpent      int64
	HumanTimeEstimate   string
	HumanTotalTimeSpent string
}

// Overdue reports whether at least the estimated time has been spent.
func (t TimeStats) Overdue() bool {
	return t.TimeEstimate <= t.TotalTimeSpent
}
