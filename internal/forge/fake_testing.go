package forge

import (
	"context"
	"fmt"
	"sync"
)

// fake_testing.go provides an in-memory Client for tests of packages that
// sit on top of the forge (connection, cmd).

// Fake is a Client whose answers are set by the test. Every call is
// recorded in Calls.
type Fake struct {
	mu sync.Mutex

	User    *User
	AuthErr error

	// Projects maps query-escaped identifiers to projects.
	Projects   map[string]*Project
	ProjectErr error

	Snippets   []SnippetOptions
	SnippetErr error

	MRs       []MergeRequest
	IssueList []Issue
	ListErr   error

	// CreatedMRs records CreateMergeRequest calls by project.
	CreatedMRs  []CreatedMergeRequest
	CreateMRErr error

	// Fork is returned by ForkProject unless ForkErr is set.
	Fork    *Project
	ForkErr error

	SearchResults []Project

	// Times maps issue IIDs to their time tracking state.
	Times   map[int64]*TimeStats
	TimeErr error

	Calls []string
}

// CreatedMergeRequest is one recorded CreateMergeRequest call.
type CreatedMergeRequest struct {
	ProjectID string
	Options   MergeRequestOptions
}

var _ Client = (*Fake)(nil)

// FakeDialer returns a Dialer that hands out f and records the instance
// and token it was called with.
func FakeDialer(f *Fake) (Dialer, *DialRecord) {
	rec := &DialRecord{}
	return func(instanceURL, token string) (Client, error) {
		rec.InstanceURL = instanceURL
		rec.Token = token
		rec.Count++
		if f == nil {
			return nil, nil
		}
		return f, nil
	}, rec
}

// DialRecord captures the arguments of the last dial.
type DialRecord struct {
	InstanceURL string
	Token       string
	Count       int
}

func (f *Fake) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
}

func (f *Fake) Authenticate(ctx context.Context) (*User, error) {
	f.record("Authenticate")
	if f.AuthErr != nil {
		return nil, f.AuthErr
	}
	if f.User == nil {
		return &User{ID: 1, Username: "tester"}, nil
	}
	return f.User, nil
}

func (f *Fake) Project(ctx context.Context, id string) (*Project, error) {
	f.record("Project " + id)
	if f.ProjectErr != nil {
		return nil, f.ProjectErr
	}
	p, ok := f.Projects[id]
	if !ok {
		return nil, fmt.Errorf("fetching project %s: 404 Project Not Found", id)
	}
	return p, nil
}

func (f *Fake) CreateSnippet(ctx context.Context, opts SnippetOptions) (*Snippet, error) {
	f.record("CreateSnippet " + opts.Title)
	if f.SnippetErr != nil {
		return nil, f.SnippetErr
	}
	f.mu.Lock()
	f.Snippets = append(f.Snippets, opts)
	id := int64(len(f.Snippets))
	f.mu.Unlock()
	return &Snippet{
		ID:     id,
		Title:  opts.Title,
		WebURL: fmt.Sprintf("https://gitlab.example.com/-/snippets/%d", id),
		RawURL: fmt.Sprintf("https://gitlab.example.com/-/snippets/%d/raw", id),
	}, nil
}

func (f *Fake) MergeRequests(ctx context.Context, projectID string, filter MergeRequestFilter) ([]MergeRequest, error) {
	f.record(fmt.Sprintf("MergeRequests %s state=%s scope=%s", projectID, filter.State, filter.Scope))
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []MergeRequest
	for _, mr := range f.MRs {
		if filter.State == "" || mr.State == filter.State {
			out = append(out, mr)
		}
	}
	return out, nil
}

func (f *Fake) Issues(ctx context.Context, projectID string, filter IssueFilter) ([]Issue, error) {
	f.record(fmt.Sprintf("Issues %s state=%s scope=%s", projectID, filter.State, filter.Scope))
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []Issue
	for _, is := range f.IssueList {
		if filter.State == "" || is.State == filter.State {
			out = append(out, is)
		}
	}
	return out, nil
}

func (f *Fake) Issue(ctx context.Context, projectID string, iid int64) (*Issue, error) {
	f.record(fmt.Sprintf("Issue %s %d", projectID, iid))
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	for i := range f.IssueList {
		if f.IssueList[i].IID == iid {
			is := f.IssueList[i]
			return &is, nil
		}
	}
	return nil, fmt.Errorf("fetching issue #%d of %s: 404 Not Found", iid, projectID)
}

func (f *Fake) MergeRequest(ctx context.Context, projectID string, iid int64) (*MergeRequest, error) {
	f.record(fmt.Sprintf("MergeRequest %s %d", projectID, iid))
	for i := range f.MRs {
		if f.MRs[i].IID == iid {
			mr := f.MRs[i]
			return &mr, nil
		}
	}
	return nil, fmt.Errorf("fetching merge request !%d of %s: 404 Not Found", iid, projectID)
}

func (f *Fake) CreateMergeRequest(ctx context.Context, projectID string, opts MergeRequestOptions) (*MergeRequest, error) {
	f.record(fmt.Sprintf("CreateMergeRequest %s %s->%s", projectID, opts.SourceBranch, opts.TargetBranch))
	if f.CreateMRErr != nil {
		return nil, f.CreateMRErr
	}
	f.mu.Lock()
	f.CreatedMRs = append(f.CreatedMRs, CreatedMergeRequest{ProjectID: projectID, Options: opts})
	iid := int64(len(f.CreatedMRs))
	f.mu.Unlock()
	return &MergeRequest{
		IID:          iid,
		Title:        opts.Title,
		State:        StateOpened,
		SourceBranch: opts.SourceBranch,
		TargetBranch: opts.TargetBranch,
		WebURL:       fmt.Sprintf("https://gitlab.example.com/-/merge_requests/%d", iid),
	}, nil
}

func (f *Fake) ForkProject(ctx context.Context, projectID string) (*Project, error) {
	f.record("ForkProject " + projectID)
	if f.ForkErr != nil {
		return nil, f.ForkErr
	}
	if f.Fork == nil {
		return nil, fmt.Errorf("forking %s: 404 Not Found", projectID)
	}
	return f.Fork, nil
}

func (f *Fake) SearchProjects(ctx context.Context, query string) ([]Project, error) {
	f.record("SearchProjects " + query)
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.SearchResults, nil
}

func (f *Fake) TimeStats(ctx context.Context, projectID string, iid int64) (*TimeStats, error) {
	f.record(fmt.Sprintf("TimeStats %s %d", projectID, iid))
	return f.times(iid, nil)
}

func (f *Fake) SetTimeEstimate(ctx context.Context, projectID string, iid int64, duration string) (*TimeStats, error) {
	f.record(fmt.Sprintf("SetTimeEstimate %s %d %s", projectID, iid, duration))
	return f.times(iid, func(ts *TimeStats) { ts.HumanTimeEstimate = duration })
}

func (f *Fake) ResetTimeEstimate(ctx context.Context, projectID string, iid int64) (*TimeStats, error) {
	f.record(fmt.Sprintf("ResetTimeEstimate %s %d", projectID, iid))
	return f.times(iid, func(ts *TimeStats) { ts.TimeEstimate, ts.HumanTimeEstimate = 0, "" })
}

func (f *Fake) AddSpentTime(ctx context.Context, projectID string, iid int64, duration string) (*TimeStats, error) {
	f.record(fmt.Sprintf("AddSpentTime %s %d %s", projectID, iid, duration))
	return f.times(iid, func(ts *TimeStats) { ts.HumanTotalTimeSpent = duration })
}

func (f *Fake) ResetSpentTime(ctx context.Context, projectID string, iid int64) (*TimeStats, error) {
	f.record(fmt.Sprintf("ResetSpentTime %s %d", projectID, iid))
	return f.times(iid, func(ts *TimeStats) { ts.TotalTimeSpent, ts.HumanTotalTimeSpent = 0, "" })
}

func (f *Fake) times(iid int64, update func(*TimeStats)) (*TimeStats, error) {
	if f.TimeErr != nil {
		return nil, f.TimeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ts, ok := f.Times[iid]
	if !ok {
		return nil, fmt.Errorf("issue #%d: 404 Not Found", iid)
	}
	if update != nil {
		update(ts)
	}
	out := *ts
	return &out, nil
}
