package slack

import (
	"context"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/utils/logging"
	"github.com/slack-go/slack"
)

const (
	// DefaultHistoryLimit is the number of messages fetched per channel
	DefaultHistoryLimit = 100

	SourceTypeChannel = "channel"
)

// Adapter reads Slack channels with a bot token
type Adapter struct {
	api          *slack.Client
	historyLimit int
}

var _ interfaces.Adapter = &Adapter{}

type options struct {
	httpClient   *http.Client
	baseURL      string
	historyLimit int
}

// Option is a functional option for Adapter configuration
type Option func(*options)

// WithHTTPClient sets the HTTP client used for every API call
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithBaseURL overrides the Web API endpoint, e.g. for a test server
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithHistoryLimit sets how many messages FetchRaw reads
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		o.historyLimit = n
	}
}

// New creates a Slack adapter with the provided credentials
func New(creds model.SlackCredentials, opts ...Option) (*Adapter, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	o := options{historyLimit: DefaultHistoryLimit}
	for _, opt := range opts {
		opt(&o)
	}

	var apiOpts []slack.Option
	if o.httpClient != nil {
		apiOpts = append(apiOpts, slack.OptionHTTPClient(o.httpClient))
	}
	if o.baseURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(o.baseURL))
	}

	return &Adapter{
		api:          slack.New(creds.BotToken, apiOpts...),
		historyLimit: o.historyLimit,
	}, nil
}

func (a *Adapter) ServiceInfo() model.ServiceInfo {
	return Info
}

// ListSources returns the public channels the bot has joined
func (a *Adapter) ListSources(ctx context.Context) ([]model.ExternalSource, error) {
	sources := make([]model.ExternalSource, 0)
	var cursor string

	for {
		params := &slack.GetConversationsParameters{
			Types:           []string{"public_channel"},
			ExcludeArchived: true,
			Limit:           200,
			Cursor:          cursor,
		}

		convs, nextCursor, err := a.api.GetConversationsContext(ctx, params)
		if err != nil {
			return nil, wrapError("list channels", err)
		}

		for _, conv := range convs {
			if !conv.IsMember {
				continue
			}
			sources = append(sources, model.ExternalSource{
				ID:   conv.ID,
				Name: conv.Name,
				Type: SourceTypeChannel,
				Metadata: map[string]any{
					"topic":       conv.Topic.Value,
					"num_members": conv.NumMembers,
				},
			})
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	return sources, nil
}

// Raw is the native payload of one channel
type Raw struct {
	Channel  slack.Channel
	Messages []slack.Message
	// Users maps every referenced user ID to its profile, nil when the lookup failed
	Users map[string]*slack.User
}

func (r *Raw) Provider() model.Provider {
	return model.ProviderSlack
}

// FetchRaw reads channel metadata, recent history and the authors of those messages
func (a *Adapter) FetchRaw(ctx context.Context, sourceID string) (model.RawData, error) {
	channel, err := a.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID:         sourceID,
		IncludeNumMembers: true,
	})
	if err != nil {
		return nil, wrapError("get channel info", err)
	}

	history, err := a.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: sourceID,
		Limit:     a.historyLimit,
	})
	if err != nil {
		return nil, wrapError("get channel history", err)
	}

	raw := &Raw{
		Channel:  *channel,
		Messages: history.Messages,
		Users:    make(map[string]*slack.User),
	}

	for _, msg := range history.Messages {
		if msg.User == "" {
			continue
		}
		if _, seen := raw.Users[msg.User]; seen {
			continue
		}

		user, err := a.api.GetUserInfoContext(ctx, msg.User)
		if err != nil {
			if wrapped := wrapError("get user info", err); errors.Is(wrapped, model.ErrAuth) {
				return nil, wrapped
			}
			logging.From(ctx).Warn("failed to resolve slack user, using placeholder",
				"user_id", msg.User,
				"channel_id", sourceID,
				"error", err.Error(),
			)
			raw.Users[msg.User] = nil
			continue
		}
		raw.Users[msg.User] = user
	}

	return raw, nil
}

// authErrorCodes are Web API error strings caused by the token itself
var authErrorCodes = map[string]bool{
	"invalid_auth":     true,
	"not_authed":       true,
	"token_revoked":    true,
	"token_expired":    true,
	"account_inactive": true,
	"missing_scope":    true,
}

func wrapError(op string, err error) error {
	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) && authErrorCodes[apiErr.Err] {
		return model.NewAuthError(model.ProviderSlack, op, err)
	}

	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) &&
		(statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden) {
		return model.NewAuthError(model.ProviderSlack, op, err)
	}

	return model.NewUpstreamError(model.ProviderSlack, op, goerr.Wrap(err, "slack API call failed"))
}
