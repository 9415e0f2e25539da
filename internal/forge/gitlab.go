package forge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gl "gitlab.com/gitlab-org/api/client-go"
)

const (
	defaultTimeout = 30 * time.Second
	pageSize       = 100
)

// GitLab is the Client backed by the GitLab REST API.
type GitLab struct {
	client *gl.Client
}

// Option configures NewGitLab.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// NewGitLab returns a client for the instance at baseURL authenticating
// with a personal access token. Requests are never retried.
func NewGitLab(baseURL, token string, opts ...Option) (*GitLab, error) {
	const errCtx = "creating gitlab client"

	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%s: access token must be set", errCtx)
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("%s: base url must be set", errCtx)
	}

	o := options{httpClient: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(&o)
	}

	client, err := gl.NewClient(
		token,
		gl.WithBaseURL(baseURL),
		gl.WithHTTPClient(o.httpClient),
		gl.WithCustomRetryMax(0),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return &GitLab{client: client}, nil
}

// Dial is the production Dialer.
func Dial(instanceURL, token string) (Client, error) {
	return NewGitLab(instanceURL, token)
}

func (g *GitLab) Authenticate(ctx context.Context) (*User, error) {
	u, _, err := g.client.Users.CurrentUser(gl.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}
	return &User{
		ID:       int64(u.ID),
		Username: u.Username,
		Name:     u.Name,
		WebURL:   u.WebURL,
	}, nil
}

func (g *GitLab) Project(ctx context.Context, id string) (*Project, error) {
	pid, err := unescapeProjectID(id)
	if err != nil {
		return nil, err
	}

	p, _, err := g.client.Projects.GetProject(pid, nil, gl.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching project %s: %w", pid, err)
	}

	project := convertProject(p)
	return &project, nil
}

func (g *GitLab) CreateSnippet(ctx context.Context, opts SnippetOptions) (*Snippet, error) {
	visibility := gl.VisibilityValue(opts.Visibility)
	if visibility == "" {
		visibility = gl.PublicVisibility
	}

	s, _, err := g.client.Snippets.CreateSnippet(&gl.CreateSnippetOptions{
		Title:      gl.Ptr(opts.Title),
		FileName:   gl.Ptr(opts.FileName),
		Content:    gl.Ptr(opts.Content),
		Visibility: gl.Ptr(visibility),
	}, gl.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	return &Snippet{
		ID:     int64(s.ID),
		Title:  s.Title,
		WebURL: s.WebURL,
		RawURL: s.RawURL,
	}, nil
}

func (g *GitLab) MergeRequests(ctx context.Context, projectID string, filter MergeRequestFilter) ([]MergeRequest, error) {
	var (
		mrs []*gl.BasicMergeRequest
		err error
	)

	if projectID == "" {
		mrs, _, err = g.client.MergeRequests.ListMergeRequests(&gl.ListMergeRequestsOptions{
			ListOptions: gl.ListOptions{PerPage: pageSize},
			State:       optional(filter.State),
			Scope:       optional(filter.Scope),
		}, gl.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing merge requests: %w", err)
		}
	} else {
		pid, perr := unescapeProjectID(projectID)
		if perr != nil {
			return nil, perr
		}
		mrs, _, err = g.client.MergeRequests.ListProjectMergeRequests(pid, &gl.ListProjectMergeRequestsOptions{
			ListOptions: gl.ListOptions{PerPage: pageSize},
			State:       optional(filter.State),
			Scope:       optional(filter.Scope),
		}, gl.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing merge requests of %s: %w", pid, err)
		}
	}

	out := make([]MergeRequest, 0, len(mrs))
	for _, mr := range mrs {
		out = append(out, convertMergeRequest(mr))
	}
	return out, nil
}

func (g *GitLab) Issues(ctx context.Context, projectID string, filter IssueFilter) ([]Issue, error) {
	var (
		issues []*gl.Issue
		err    error
	)

	if projectID == "" {
		issues, _, err = g.client.Issues.ListIssues(&gl.ListIssuesOptions{
			ListOptions: gl.ListOptions{PerPage: pageSize},
			State:       optional(filter.State),
			Scope:       optional(filter.Scope),
		}, gl.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing issues: %w", err)
		}
	} else {
		pid, perr := unescapeProjectID(projectID)
		if perr != nil {
			return nil, perr
		}
		issues, _, err = g.client.Issues.ListProjectIssues(pid, &gl.ListProjectIssuesOptions{
			ListOptions: gl.ListOptions{PerPage: pageSize},
			State:       optional(filter.State),
			Scope:       optional(filter.Scope),
		}, gl.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing issues of %s: %w", pid, err)
		}
	}

	out := make([]Issue, 0, len(issues))
	for _, is := range issues {
		out = append(out, convertIssue(is))
	}
	return out, nil
}

func (g *GitLab) Issue(ctx context.Context, projectID string, iid int64) (*Issue, error) {
	pid, err := unescapeProjectID(projectID)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("projects/%s/issues/%d", url.PathEscape(pid), iid)
	req, err := g.client.NewRequest(http.MethodGet, path, nil, []gl.RequestOptionFunc{gl.WithContext(ctx)})
	if err != nil {
		return nil, fmt.Errorf("building issue request: %w", err)
	}

	var is gl.Issue
	if _, err := g.client.Do(req, &is); err != nil {
		return nil, fmt.Errorf("fetching issue #%d of %s: %w", iid, pid, err)
	}

	issue := convertIssue(&is)
	return &issue, nil
}

func (g *GitLab) MergeRequest(ctx context.Context, projectID string, iid int64) (*MergeRequest, error) {
	pid, err := unescapeProjectID(projectID)
	if err != nil {
		return nil, err
	}

	mr, _, err := g.client.MergeRequests.GetMergeRequest(pid, iid, nil, gl.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching merge request !%d of %s: %w", iid, pid, err)
	}

	out := convertMergeRequest(&mr.BasicMergeRequest)
	return &out, nil
}

func (g *GitLab) CreateMergeRequest(ctx context.Context, projectID string, opts MergeRequestOptions) (*MergeRequest, error) {
	pid, err := unescapeProjectID(projectID)
	if err != nil {
		return nil, err
	}

	create := &gl.CreateMergeRequestOptions{
		Title:        gl.Ptr(opts.Title),
		SourceBranch: gl.Ptr(opts.SourceBranch),
		TargetBranch: gl.Ptr(opts.TargetBranch),
		Description:  optional(opts.Description),
	}
	if opts.TargetProjectID != 0 {
		create.TargetProjectID = gl.Ptr(opts.TargetProjectID)
	}
	if opts.AllowCollaboration {
		create.AllowCollaboration = gl.Ptr(true)
	}

	mr, _, err := g.client.MergeRequests.CreateMergeRequest(pid, create, gl.WithContext(ctx))
	if err != nil {
		return nil, apiError(fmt.Sprintf("creating merge request in %s", pid), err)
	}

	out := convertMergeRequest(&mr.BasicMergeRequest)
	return &out, nil
}

func (g *GitLab) ForkProject(ctx context.Context, projectID string) (*Project, error) {
	pid, err := unescapeProjectID(projectID)
	if err != nil {
		return nil, err
	}

	p, _, err := g.client.Projects.ForkProject(pid, &gl.ForkProjectOptions{}, gl.WithContext(ctx))
	if err != nil {
		return nil, apiError(fmt.Sprintf("forking %s", pid), err)
	}

	project := convertProject(p)
	return &project, nil
}

func (g *GitLab) SearchProjects(ctx context.Context, query string) ([]Project, error) {
	projects, _, err := g.client.Search.Projects(query, &gl.SearchOptions{
		ListOptions: gl.ListOptions{PerPage: pageSize},
	}, gl.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("searching projects for %q: %w", query, err)
	}

	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, convertProject(p))
	}
	return out, nil
}

func (g *GitLab) TimeStats(ctx context.Context, projectID string, iid int64) (*TimeStats, error) {
	return g.timeStats(projectID, iid, "fetching time stats", func(pid string) (*gl.TimeStats, *gl.Response, error) {
		return g.client.Issues.GetTimeSpent(pid, iid, gl.WithContext(ctx))
	})
}

func (g *GitLab) SetTimeEstimate(ctx context.Context, projectID string, iid int64, duration string) (*TimeStats, error) {
	return g.timeStats(projectID, iid, "setting time estimate", func(pid string) (*gl.TimeStats, *gl.Response, error) {
		return g.client.Issues.SetTimeEstimate(pid, iid, &gl.SetTimeEstimateOptions{Duration: gl.Ptr(duration)}, gl.WithContext(ctx))
	})
}

func (g *GitLab) ResetTimeEstimate(ctx context.Context, projectID string, iid int64) (*TimeStats, error) {
	return g.timeStats(projectID, iid, "resetting time estimate", func(pid string) (*gl.TimeStats, *gl.Response, error) {
		return g.client.Issues.ResetTimeEstimate(pid, iid, gl.WithContext(ctx))
	})
}

func (g *GitLab) AddSpentTime(ctx context.Context, projectID string, iid int64, duration string) (*TimeStats, error) {
	return g.timeStats(projectID, iid, "adding spent time", func(pid string) (*gl.TimeStats, *gl.Response, error) {
		return g.client.Issues.AddSpentTime(pid, iid, &gl.AddSpentTimeOptions{Duration: gl.Ptr(duration)}, gl.WithContext(ctx))
	})
}

func (g *GitLab) ResetSpentTime(ctx context.Context, projectID string, iid int64) (*TimeStats, error) {
	return g.timeStats(projectID, iid, "resetting spent time", func(pid string) (*gl.TimeStats, *gl.Response, error) {
		return g.client.Issues.ResetSpentTime(pid, iid, gl.WithContext(ctx))
	})
}

func (g *GitLab) timeStats(projectID string, iid int64, what string, call func(pid string) (*gl.TimeStats, *gl.Response, error)) (*TimeStats, error) {
	pid, err := unescapeProjectID(projectID)
	if err != nil {
		return nil, err
	}

	ts, _, err := call(pid)
	if err != nil {
		return nil, fmt.Errorf("%s of issue #%d in %s: %w", what, iid, pid, err)
	}
	return &TimeStats{
		TimeEstimate:        ts.TimeEstimate,
		TotalTimeSpent:      ts.TotalTimeSpent,
		HumanTimeEstimate:   ts.HumanTimeEstimate,
		HumanTotalTimeSpent: ts.HumanTotalTimeSpent,
	}, nil
}

func convertProject(p *gl.Project) Project {
	project := Project{
		ID:                int64(p.ID),
		Name:              p.Name,
		PathWithNamespace: p.PathWithNamespace,
		Description:       p.Description,
		WebURL:            p.WebURL,
		SSHURL:            p.SSHURLToRepo,
		HTTPURL:           p.HTTPURLToRepo,
		DefaultBranch:     p.DefaultBranch,
		Visibility:        string(p.Visibility),
		Archived:          p.Archived,
		ForksCount:        int(p.ForksCount),
		StarCount:         int(p.StarCount),
		OpenIssuesCount:   int(p.OpenIssuesCount),
	}
	if p.ForkedFromProject != nil {
		project.ForkedFrom = p.ForkedFromProject.PathWithNamespace
	}
	return project
}

func convertIssue(is *gl.Issue) Issue {
	issue := Issue{
		IID:         int64(is.IID),
		Title:       is.Title,
		State:       is.State,
		Description: is.Description,
		WebURL:      is.WebURL,
		Labels:      append([]string(nil), is.Labels...),
	}
	if is.References != nil {
		issue.Reference = is.References.Full
	}
	if is.Author != nil {
		issue.Author = is.Author.Username
	}
	for _, a := range is.Assignees {
		if a != nil {
			issue.Assignees = append(issue.Assignees, a.Username)
		}
	}
	if is.CreatedAt != nil {
		issue.CreatedAt = *is.CreatedAt
	}
	return issue
}

func convertMergeRequest(mr *gl.BasicMergeRequest) MergeRequest {
	out := MergeRequest{
		IID:          int64(mr.IID),
		Title:        mr.Title,
		State:        mr.State,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		WebURL:       mr.WebURL,
		Draft:        mr.Draft,
	}
	if mr.References != nil {
		out.Reference = mr.References.Full
	}
	if mr.Author != nil {
		out.Author = mr.Author.Username
	}
	return out
}

// apiError wraps err, marking 409 responses with ErrConflict.
func apiError(msg string, err error) error {
	var resp *gl.ErrorResponse
	if errors.As(err, &resp) && resp.Response != nil && resp.Response.StatusCode == http.StatusConflict {
		return fmt.Errorf("%s: %w: %w", msg, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return gl.Ptr(s)
}

// unescapeProjectID turns a query-escaped identifier back into the plain
// "group/project" form; client-go escapes it again for the request path.
func unescapeProjectID(id string) (string, error) {
	pid, err := url.QueryUnescape(id)
	if err != nil {
		return "", fmt.Errorf("invalid project id %q: %w", id, err)
	}
	if pid == "" {
		return "", fmt.Errorf("invalid project id: empty")
	}
	return pid, nil
}
