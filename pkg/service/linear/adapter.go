package linear

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/utils/logging"
	"github.com/shurcooL/graphql"
)

const (
	DefaultEndpoint   = "https://api.linear.app/graphql"
	DefaultIssueLimit = 100

	SourceTypeTeam = "team"
)

// Adapter reads Linear teams and issues with a personal API key
type Adapter struct {
	gql        *graphql.Client
	issueLimit int
}

var _ interfaces.Adapter = &Adapter{}

type options struct {
	httpClient *http.Client
	endpoint   string
	issueLimit int
}

type Option func(*options)

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithBaseURL overrides the GraphQL endpoint
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.endpoint = u
	}
}

func WithIssueLimit(n int) Option {
	return func(o *options) {
		o.issueLimit = n
	}
}

// New creates a Linear adapter with the provided API key
func New(creds model.LinearCredentials, opts ...Option) (*Adapter, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	o := options{
		endpoint:   DefaultEndpoint,
		issueLimit: DefaultIssueLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}

	base := o.httpClient
	if base == nil {
		base = &http.Client{}
	}
	httpClient := *base
	httpClient.Transport = &apiKeyTransport{apiKey: creds.APIKey, base: base.Transport}

	return &Adapter{
		gql:        graphql.NewClient(o.endpoint, &httpClient),
		issueLimit: o.issueLimit,
	}, nil
}

func (a *Adapter) ServiceInfo() model.ServiceInfo {
	return Info
}

// Team is a Linear team
type Team struct {
	ID          string
	Name        string
	Key         string
	Description string
}

// ListSources returns every team visible to the API key
func (a *Adapter) ListSources(ctx context.Context) ([]model.ExternalSource, error) {
	var q struct {
		Teams struct {
			Nodes []Team
		} `graphql:"teams(first: 100)"`
	}
	if err := a.gql.Query(ctx, &q, nil); err != nil {
		return nil, wrapError("list teams", err)
	}

	sources := make([]model.ExternalSource, 0, len(q.Teams.Nodes))
	for _, team := range q.Teams.Nodes {
		sources = append(sources, model.ExternalSource{
			ID:   team.ID,
			Name: team.Name,
			Type: SourceTypeTeam,
			Metadata: map[string]any{
				"key": team.Key,
			},
		})
	}
	return sources, nil
}

type State struct {
	ID    string
	Name  string
	Type  string
	Color string
}

// Ref is a reference to another node by ID
type Ref struct {
	ID string
}

type Issue struct {
	ID          string
	Identifier  string
	Title       string
	Description string
	Priority    float64
	URL         string `graphql:"url"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	State       Ref
	Assignee    *Ref
	Creator     *Ref
}

type User struct {
	ID          string
	Name        string
	DisplayName string
	Email       string
}

// Raw is the native payload of one team
type Raw struct {
	Team   Team
	States []State
	Issues []Issue
	// Users maps every referenced user ID to its profile, nil when the lookup failed
	Users map[string]*User
}

func (r *Raw) Provider() model.Provider {
	return model.ProviderLinear
}

// FetchRaw reads team metadata, workflow states, recently updated issues and their people
func (a *Adapter) FetchRaw(ctx context.Context, sourceID string) (model.RawData, error) {
	var q struct {
		Team struct {
			ID          string
			Name        string
			Key         string
			Description string
			States      struct {
				Nodes []State
			} `graphql:"states(first: 100)"`
			Issues struct {
				Nodes []Issue
			} `graphql:"issues(first: $first, orderBy: updatedAt)"`
		} `graphql:"team(id: $id)"`
	}
	vars := map[string]any{
		"id":    graphql.String(sourceID),
		"first": graphql.Int(a.issueLimit),
	}
	if err := a.gql.Query(ctx, &q, vars); err != nil {
		return nil, wrapError("get team issues", err)
	}

	raw := &Raw{
		Team: Team{
			ID:          q.Team.ID,
			Name:        q.Team.Name,
			Key:         q.Team.Key,
			Description: q.Team.Description,
		},
		States: q.Team.States.Nodes,
		Issues: q.Team.Issues.Nodes,
		Users:  make(map[string]*User),
	}

	for _, userID := range referencedUsers(raw.Issues) {
		user, err := a.getUser(ctx, userID)
		if err != nil {
			if errors.Is(err, model.ErrAuth) {
				return nil, err
			}
			logging.From(ctx).Warn("failed to resolve linear user, using placeholder",
				"user_id", userID,
				"team_id", sourceID,
				"error", err.Error(),
			)
			raw.Users[userID] = nil
			continue
		}
		raw.Users[userID] = user
	}

	return raw, nil
}

func (a *Adapter) getUser(ctx context.Context, id string) (*User, error) {
	var q struct {
		User User `graphql:"user(id: $id)"`
	}
	if err := a.gql.Query(ctx, &q, map[string]any{"id": graphql.String(id)}); err != nil {
		return nil, wrapError("get user", err)
	}
	return &q.User, nil
}

func referencedUsers(issues []Issue) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, issue := range issues {
		for _, ref := range []*Ref{issue.Assignee, issue.Creator} {
			if ref == nil || ref.ID == "" || seen[ref.ID] {
				continue
			}
			seen[ref.ID] = true
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

// apiKeyTransport sets the Authorization header and turns 401/403 into errRejected
type apiKeyTransport struct {
	apiKey string
	base   http.RoundTripper
}

type errRejected struct {
	status int
}

func (e *errRejected) Error() string {
	return fmt.Sprintf("linear rejected API key: %d %s", e.status, http.StatusText(e.status))
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", t.apiKey)

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(r)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		_ = resp.Body.Close()
		return nil, &errRejected{status: resp.StatusCode}
	}
	return resp, nil
}

func wrapError(op string, err error) error {
	var rejected *errRejected
	if errors.As(err, &rejected) {
		return model.NewAuthError(model.ProviderLinear, op, err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "authentication") {
		return model.NewAuthError(model.ProviderLinear, op, err)
	}
	return model.NewUpstreamError(model.ProviderLinear, op, goerr.Wrap(err, "linear API call failed"))
}
