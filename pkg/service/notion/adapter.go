package notion

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/utils/logging"
)

const (
	// DefaultPageLimit is the number of database rows fetched per sync
	DefaultPageLimit = 100

	SourceTypeDatabase = "database"
)

// Adapter reads Notion databases shared with an internal integration
type Adapter struct {
	api       *notionapi.Client
	pageLimit int
}

var _ interfaces.Adapter = &Adapter{}

type options struct {
	httpClient *http.Client
	baseURL    string
	pageLimit  int
}

type Option func(*options)

// WithHTTPClient sets the HTTP client used for every API call
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithBaseURL redirects API calls to another host, e.g. a test server
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithPageLimit sets how many database rows FetchRaw reads
func WithPageLimit(n int) Option {
	return func(o *options) {
		o.pageLimit = n
	}
}

// New creates a Notion adapter with the provided integration secret
func New(creds model.NotionCredentials, opts ...Option) (*Adapter, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	o := options{pageLimit: DefaultPageLimit}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if o.baseURL != "" {
		target, err := url.Parse(o.baseURL)
		if err != nil {
			return nil, goerr.Wrap(model.ErrValidation, "invalid notion base URL",
				goerr.V("base_url", o.baseURL), goerr.V("error", err.Error()))
		}
		rewritten := *httpClient
		rewritten.Transport = &hostRewriter{target: target, base: httpClient.Transport}
		httpClient = &rewritten
	}

	return &Adapter{
		api: notionapi.NewClient(
			notionapi.Token(creds.IntegrationSecret),
			notionapi.WithHTTPClient(httpClient),
			notionapi.WithRetry(1),
		),
		pageLimit: o.pageLimit,
	}, nil
}

func (a *Adapter) ServiceInfo() model.ServiceInfo {
	return Info
}

// ListSources returns the databases the integration can see
func (a *Adapter) ListSources(ctx context.Context) ([]model.ExternalSource, error) {
	sources := make([]model.ExternalSource, 0)
	var cursor notionapi.Cursor

	for {
		resp, err := a.api.Search.Do(ctx, &notionapi.SearchRequest{
			Filter:      notionapi.SearchFilter{Value: "database", Property: "object"},
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, wrapError("search databases", err)
		}

		for _, obj := range resp.Results {
			db, ok := obj.(*notionapi.Database)
			if !ok || db.Archived {
				continue
			}
			sources = append(sources, model.ExternalSource{
				ID:   db.ID.String(),
				Name: plainText(db.Title),
				Type: SourceTypeDatabase,
				Metadata: map[string]any{
					"url":              db.URL,
					"last_edited_time": db.LastEditedTime,
				},
			})
		}

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return sources, nil
}

// Raw is the native payload of one database
type Raw struct {
	Database notionapi.Database
	Pages    []notionapi.Page
	// Users maps every referenced user ID to its profile, nil when the lookup failed
	Users map[string]*notionapi.User
}

func (r *Raw) Provider() model.Provider {
	return model.ProviderNotion
}

// FetchRaw reads the database schema, its most recently edited rows and the people they reference
func (a *Adapter) FetchRaw(ctx context.Context, sourceID string) (model.RawData, error) {
	db, err := a.api.Database.Get(ctx, notionapi.DatabaseID(sourceID))
	if err != nil {
		return nil, wrapError("get database", err)
	}

	resp, err := a.api.Database.Query(ctx, notionapi.DatabaseID(sourceID), &notionapi.DatabaseQueryRequest{
		Sorts: []notionapi.SortObject{
			{Timestamp: notionapi.TimestampLastEdited, Direction: notionapi.SortOrderDESC},
		},
		PageSize: a.pageLimit,
	})
	if err != nil {
		return nil, wrapError("query database", err)
	}

	raw := &Raw{
		Database: *db,
		Pages:    resp.Results,
		Users:    make(map[string]*notionapi.User),
	}

	for _, userID := range referencedUsers(resp.Results) {
		user, err := a.api.User.Get(ctx, notionapi.UserID(userID))
		if err != nil {
			if wrapped := wrapError("get user", err); errors.Is(wrapped, model.ErrAuth) {
				return nil, wrapped
			}
			logging.From(ctx).Warn("failed to resolve notion user, using placeholder",
				"user_id", userID,
				"database_id", sourceID,
				"error", err.Error(),
			)
			raw.Users[userID] = nil
			continue
		}
		raw.Users[userID] = user
	}

	return raw, nil
}

func referencedUsers(pages []notionapi.Page) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id notionapi.UserID) {
		if id == "" || seen[id.String()] {
			return
		}
		seen[id.String()] = true
		ids = append(ids, id.String())
	}

	for _, page := range pages {
		add(page.CreatedBy.ID)
		add(page.LastEditedBy.ID)
		for _, prop := range page.Properties {
			if people, ok := prop.(*notionapi.PeopleProperty); ok {
				for _, u := range people.People {
					add(u.ID)
				}
			}
		}
	}
	return ids
}

// hostRewriter sends every request to target while keeping path and query
type hostRewriter struct {
	target *url.URL
	base   http.RoundTripper
}

func (h *hostRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = h.target.Scheme
	r.URL.Host = h.target.Host
	r.Host = h.target.Host

	base := h.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}

func wrapError(op string, err error) error {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) &&
		(apiErr.Status == http.StatusUnauthorized || apiErr.Code == "unauthorized") {
		return model.NewAuthError(model.ProviderNotion, op, err)
	}
	return model.NewUpstreamError(model.ProviderNotion, op, goerr.Wrap(err, "notion API call failed"))
}
