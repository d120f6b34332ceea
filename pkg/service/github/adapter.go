package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/utils/logging"
	"github.com/shurcooL/githubv4"
)

const (
	DefaultCommitLimit      = 50
	DefaultContributorLimit = 20

	SourceTypeRepository = "repository"
)

// errInvalidAppKey marks a GitHub App private key that cannot be used
var errInvalidAppKey = goerr.New("invalid GitHub App private key")

type options struct {
	httpClient       *http.Client
	baseURL          string
	commitLimit      int
	contributorLimit int
}

type Option func(*options)

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithBaseURL overrides the REST root; GraphQL is served at <base>/graphql
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimRight(u, "/")
	}
}

func WithCommitLimit(n int) Option {
	return func(o *options) {
		o.commitLimit = n
	}
}

// clients is one authenticated pair of REST and GraphQL clients
type clients struct {
	rest *github.Client
	gql  *githubv4.Client
	// installation is true when authenticated as a GitHub App installation
	installation bool
}

// Adapter reads GitHub repositories. A GitHub App installation is preferred;
// an OAuth token is used when no installation is configured or when the
// installation is rejected.
type Adapter struct {
	creds        model.GitHubCredentials
	o            options
	installation func() (*clients, error)
	oauth        func() (*clients, error)
}

var _ interfaces.Adapter = &Adapter{}

// New creates a GitHub adapter. privateKey in creds can be a PEM string or a path to a PEM file.
func New(creds model.GitHubCredentials, opts ...Option) (*Adapter, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	o := options{
		commitLimit:      DefaultCommitLimit,
		contributorLimit: DefaultContributorLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{}
	}

	a := &Adapter{creds: creds, o: o}
	a.installation = sync.OnceValues(a.newInstallationClients)
	a.oauth = sync.OnceValues(a.newOAuthClients)
	return a, nil
}

func (a *Adapter) ServiceInfo() model.ServiceInfo {
	return Info
}

func (a *Adapter) newInstallationClients() (*clients, error) {
	key := []byte(a.creds.PrivateKey)
	// #nosec G304 -- path comes from operator supplied credentials
	if data, err := os.ReadFile(a.creds.PrivateKey); err == nil {
		key = data
	}

	base := a.o.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	tr, err := ghinstallation.New(base, a.creds.AppID, a.creds.InstallationID, key)
	if err != nil {
		return nil, goerr.Wrap(errInvalidAppKey, "failed to create GitHub App transport",
			goerr.V("app_id", a.creds.AppID),
			goerr.V("error", err.Error()))
	}
	if a.o.baseURL != "" {
		tr.BaseURL = a.o.baseURL
	}

	httpClient := *a.o.httpClient
	httpClient.Transport = &rejectTransport{base: tr}
	return a.newClients(&httpClient, true)
}

func (a *Adapter) newOAuthClients() (*clients, error) {
	httpClient := *a.o.httpClient
	httpClient.Transport = &rejectTransport{
		base:  httpClient.Transport,
		token: a.creds.OAuthToken,
	}
	return a.newClients(&httpClient, false)
}

func (a *Adapter) newClients(httpClient *http.Client, installation bool) (*clients, error) {
	c := &clients{
		rest:         github.NewClient(httpClient),
		gql:          githubv4.NewClient(httpClient),
		installation: installation,
	}

	if a.o.baseURL != "" {
		restURL, err := url.Parse(a.o.baseURL + "/")
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub base URL", goerr.V("base_url", a.o.baseURL))
		}
		c.rest.BaseURL = restURL
		c.gql = githubv4.NewEnterpriseClient(a.o.baseURL+"/graphql", httpClient)
	}
	return c, nil
}

// call runs fn on the installation clients and falls back to the OAuth
// clients once when the installation is rejected
func (a *Adapter) call(ctx context.Context, op string, fn func(c *clients) error) error {
	if a.creds.HasInstallation() {
		c, err := a.installation()
		if err == nil {
			err = fn(c)
		}
		if err == nil {
			return nil
		}
		if a.creds.OAuthToken == "" || !isAuthFailure(err) {
			return wrapError(op, err)
		}

		logging.From(ctx).Warn("github installation rejected, falling back to OAuth token",
			"op", op,
			"app_id", a.creds.AppID,
			"error", err.Error(),
		)
	}

	c, err := a.oauth()
	if err != nil {
		return wrapError(op, err)
	}
	if err := fn(c); err != nil {
		return wrapError(op, err)
	}
	return nil
}

// ListSources returns repositories of the installation, or of the OAuth user
func (a *Adapter) ListSources(ctx context.Context) ([]model.ExternalSource, error) {
	var repos []*github.Repository

	err := a.call(ctx, "list repositories", func(c *clients) error {
		repos = nil
		opt := github.ListOptions{PerPage: 100}
		for {
			var page []*github.Repository
			var resp *github.Response
			var err error

			if c.installation {
				var list *github.ListRepositories
				list, resp, err = c.rest.Apps.ListRepos(ctx, &opt)
				if list != nil {
					page = list.Repositories
				}
			} else {
				page, resp, err = c.rest.Repositories.ListByAuthenticatedUser(ctx,
					&github.RepositoryListByAuthenticatedUserOptions{ListOptions: opt})
			}
			if err != nil {
				return err
			}

			repos = append(repos, page...)
			if resp == nil || resp.NextPage == 0 {
				return nil
			}
			opt.Page = resp.NextPage
		}
	})
	if err != nil {
		return nil, err
	}

	sources := make([]model.ExternalSource, 0, len(repos))
	for _, repo := range repos {
		sources = append(sources, model.ExternalSource{
			ID:   repo.GetFullName(),
			Name: repo.GetName(),
			Type: SourceTypeRepository,
			Metadata: map[string]any{
				"private":        repo.GetPrivate(),
				"default_branch": repo.GetDefaultBranch(),
				"url":            repo.GetHTMLURL(),
			},
		})
	}
	return sources, nil
}

// RepositoryInfo is the GraphQL view of a repository
type RepositoryInfo struct {
	ID               string
	Name             string
	NameWithOwner    string
	Description      string
	URL              string `graphql:"url"`
	IsPrivate        bool
	StargazerCount   int
	ForkCount        int
	PrimaryLanguage  *struct{ Name string }
	DefaultBranchRef *struct{ Name string }
	UpdatedAt        githubv4.DateTime
}

// Raw is the native payload of one repository
type Raw struct {
	Repository   RepositoryInfo
	Commits      []*github.RepositoryCommit
	Contributors []*github.Contributor
	// Users maps contributor logins to profiles, nil when the lookup failed
	Users map[string]*github.User
}

func (r *Raw) Provider() model.Provider {
	return model.ProviderGitHub
}

// FetchRaw reads repository metadata, recent commits and top contributors of "owner/repo"
func (a *Adapter) FetchRaw(ctx context.Context, sourceID string) (model.RawData, error) {
	owner, name, ok := strings.Cut(sourceID, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, goerr.Wrap(model.ErrValidation, "github source ID must be owner/repo",
			goerr.V(model.SourceIDKey, sourceID))
	}

	var raw *Raw
	err := a.call(ctx, "fetch repository", func(c *clients) error {
		raw = &Raw{Users: make(map[string]*github.User)}

		var q struct {
			Repository RepositoryInfo `graphql:"repository(owner: $owner, name: $name)"`
		}
		vars := map[string]any{
			"owner": githubv4.String(owner),
			"name":  githubv4.String(name),
		}
		if err := c.gql.Query(ctx, &q, vars); err != nil {
			return err
		}
		raw.Repository = q.Repository

		commits, _, err := c.rest.Repositories.ListCommits(ctx, owner, name, &github.CommitsListOptions{
			ListOptions: github.ListOptions{PerPage: a.o.commitLimit},
		})
		if err != nil {
			return err
		}
		raw.Commits = commits

		contributors, _, err := c.rest.Repositories.ListContributors(ctx, owner, name, &github.ListContributorsOptions{
			ListOptions: github.ListOptions{PerPage: a.o.contributorLimit},
		})
		if err != nil {
			return err
		}
		raw.Contributors = contributors

		for _, contributor := range contributors {
			login := contributor.GetLogin()
			if login == "" {
				continue
			}
			user, _, err := c.rest.Users.Get(ctx, login)
			if err != nil {
				if isAuthFailure(err) {
					return err
				}
				logging.From(ctx).Warn("failed to resolve github user, using placeholder",
					"login", login,
					"repository", sourceID,
					"error", err.Error(),
				)
				raw.Users[login] = nil
				continue
			}
			raw.Users[login] = user
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return raw, nil
}

// rejectTransport optionally sets an OAuth token and turns 401 responses into errRejected
type rejectTransport struct {
	base  http.RoundTripper
	token string
}

type errRejected struct {
	status int
}

func (e *errRejected) Error() string {
	return fmt.Sprintf("github rejected credentials: %d %s", e.status, http.StatusText(e.status))
}

func (t *rejectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		return nil, &errRejected{status: resp.StatusCode}
	}
	return resp, nil
}

// isAuthFailure reports whether err was caused by the credentials rather than the network
func isAuthFailure(err error) bool {
	if errors.Is(err, errInvalidAppKey) {
		return true
	}

	var rejected *errRejected
	if errors.As(err, &rejected) {
		return true
	}

	var tokenErr *ghinstallation.HTTPError
	if errors.As(err, &tokenErr) && tokenErr.Response != nil {
		code := tokenErr.Response.StatusCode
		return code == http.StatusUnauthorized || code == http.StatusForbidden || code == http.StatusNotFound
	}

	var apiErr *github.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return apiErr.Response.StatusCode == http.StatusUnauthorized
	}

	return false
}

func wrapError(op string, err error) error {
	if isAuthFailure(err) {
		return model.NewAuthError(model.ProviderGitHub, op, err)
	}
	return model.NewUpstreamError(model.ProviderGitHub, op, goerr.Wrap(err, "github API call failed"))
}
