package google

import (
	"context"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type options struct {
	httpClient *http.Client
	baseURL    string
	limit      int64
}

// Option configures any of the Google adapters
type Option func(*options)

// WithHTTPClient sets the base HTTP client. OAuth2 credentials are layered on top of its transport.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithBaseURL overrides the API root, e.g. for a test server
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithLimit sets how many items (files, messages or events) FetchRaw reads
func WithLimit(n int64) Option {
	return func(o *options) {
		o.limit = n
	}
}

const defaultLimit = 50

func buildOptions(opts []Option) options {
	o := options{limit: defaultLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// clientOptions builds the API client options with an OAuth2 transport from creds
func clientOptions(creds model.GoogleCredentials, o options) []option.ClientOption {
	base := o.httpClient
	if base == nil {
		base = &http.Client{}
	}

	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     googleoauth.Endpoint,
	}
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.Expiry,
		TokenType:    "Bearer",
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	authed := *base
	authed.Transport = &oauth2.Transport{
		Source: cfg.TokenSource(tokenCtx, token),
		Base:   base.Transport,
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(&authed)}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(o.baseURL))
	}
	return clientOpts
}

func wrapError(provider model.Provider, op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) &&
		(apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden) {
		return model.NewAuthError(provider, op, err)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return model.NewAuthError(provider, op, err)
	}

	return model.NewUpstreamError(provider, op, goerr.Wrap(err, "google API call failed"))
}
