package adapter

import (
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/service/github"
	"github.com/secmon-lab/polyconn/pkg/service/google"
	"github.com/secmon-lab/polyconn/pkg/service/linear"
	"github.com/secmon-lab/polyconn/pkg/service/notion"
	"github.com/secmon-lab/polyconn/pkg/service/slack"
)

// DefaultTimeout bounds every outbound provider call
const DefaultTimeout = 30 * time.Second

// Constructor builds an adapter from a connection's credentials
type Constructor func(creds model.Credentials, httpClient *http.Client) (interfaces.Adapter, error)

type entry struct {
	construct  Constructor
	primaryKey string
}

// Factory maps providers to adapter constructors at runtime
type Factory struct {
	httpClient *http.Client
	entries    map[model.Provider]entry
}

var _ interfaces.AdapterFactory = &Factory{}

type Option func(*Factory)

// WithTimeout sets the per-call timeout of the shared HTTP client
func WithTimeout(d time.Duration) Option {
	return func(f *Factory) {
		f.httpClient.Timeout = d
	}
}

// WithTransport replaces the transport of the shared HTTP client
func WithTransport(tr http.RoundTripper) Option {
	return func(f *Factory) {
		f.httpClient.Transport = tr
	}
}

// WithConstructor registers or replaces the constructor of provider
func WithConstructor(provider model.Provider, primaryKey string, c Constructor) Option {
	return func(f *Factory) {
		f.entries[provider] = entry{construct: c, primaryKey: primaryKey}
	}
}

// New returns a factory with adapters for every provider that has one. Discord has none.
func New(opts ...Option) *Factory {
	f := &Factory{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		entries: map[model.Provider]entry{
			model.ProviderSlack:  {construct: newSlack, primaryKey: slack.PrimaryKey},
			model.ProviderNotion: {construct: newNotion, primaryKey: notion.PrimaryKey},
			model.ProviderLinear: {construct: newLinear, primaryKey: linear.PrimaryKey},
			model.ProviderGDrive: {construct: newDrive, primaryKey: google.DrivePrimaryKey},
			model.ProviderGmail:  {construct: newGmail, primaryKey: google.GmailPrimaryKey},
			model.ProviderGCal:   {construct: newCalendar, primaryKey: google.CalendarPrimaryKey},
			model.ProviderGitHub: {construct: newGitHub, primaryKey: github.PrimaryKey},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// New builds the adapter for conn. Providers without an adapter fail with ErrUnsupportedProvider.
func (f *Factory) New(conn *model.Connection) (interfaces.Adapter, error) {
	if conn == nil {
		return nil, goerr.Wrap(model.ErrValidation, "connection is required")
	}

	e, ok := f.entries[conn.Provider]
	if !ok {
		return nil, goerr.Wrap(model.ErrUnsupportedProvider, "no adapter for provider",
			goerr.V(model.ProviderKey, conn.Provider),
			goerr.V(model.ConnectionIDKey, conn.ID))
	}

	if err := model.ValidateCredentials(conn.Provider, conn.Credentials); err != nil {
		return nil, goerr.Wrap(err, "connection has invalid credentials",
			goerr.V(model.ConnectionIDKey, conn.ID))
	}

	adapter, err := e.construct(conn.Credentials, f.httpClient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create adapter",
			goerr.V(model.ProviderKey, conn.Provider),
			goerr.V(model.ConnectionIDKey, conn.ID))
	}
	return adapter, nil
}

// PrimaryKey returns the content list key of provider, empty when it has no adapter
func (f *Factory) PrimaryKey(provider model.Provider) string {
	return f.entries[provider].primaryKey
}

// Supported reports whether provider has a data adapter
func (f *Factory) Supported(provider model.Provider) bool {
	_, ok := f.entries[provider]
	return ok
}

func newSlack(creds model.Credentials, c *http.Client) (interfaces.Adapter, error) {
	return slack.New(creds.(model.SlackCredentials), slack.WithHTTPClient(c))
}

func newNotion(creds model.Credentials, c *http.Client) (interfaces.Adapter, error) {
	return notion.New(creds.(model.NotionCredentials), notion.WithHTTPClient(c))
}

func newLinear(creds model.Credentials, c *http.Client) (interfaces.Adapter, error) {
	return linear.New(creds.(model.LinearCredentials), linear.WithHTTPClient(c))
}

func newDrive(creds model.Credentials, c *http.Client) (interfaces.Adapter, error) {
	return google.NewDrive(creds.(model.GoogleCredentials), google.WithHTTPClient(c))
}

func newGmail(creds model.Credentials, c *http.Client) (interfaces.Adapter, error) {
	return google.NewGmail(creds.(model.GoogleCredentials), google.WithHTTPClient(c))
}

func newCalendar(creds model.Credentials, c *http.Client) (interfaces.Adapter, error) {
	return google.NewCalendar(creds.(model.GoogleCredentials), google.WithHTTPClient(c))
}

func newGitHub(creds model.Credentials, c *http.Client) (interfaces.Adapter, error) {
	return github.New(creds.(model.GitHubCredentials), github.WithHTTPClient(c))
}
