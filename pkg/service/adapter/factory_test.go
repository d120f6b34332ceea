package adapter_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/service/adapter"
)

func TestFactoryNew(t *testing.T) {
	f := adapter.New()

	testCases := map[string]struct {
		conn   *model.Connection
		expect error
	}{
		"slack": {
			conn: &model.Connection{Provider: model.ProviderSlack, Credentials: model.SlackCredentials{BotToken: "xoxb"}},
		},
		"notion": {
			conn: &model.Connection{Provider: model.ProviderNotion, Credentials: model.NotionCredentials{IntegrationSecret: "s"}},
		},
		"linear": {
			conn: &model.Connection{Provider: model.ProviderLinear, Credentials: model.LinearCredentials{APIKey: "k"}},
		},
		"gmail": {
			conn: &model.Connection{Provider: model.ProviderGmail, Credentials: model.GoogleCredentials{
				ClientID: "id", ClientSecret: "secret", RefreshToken: "r",
			}},
		},
		"github oauth": {
			conn: &model.Connection{Provider: model.ProviderGitHub, Credentials: model.GitHubCredentials{OAuthToken: "t"}},
		},
		"discord is unsupported": {
			conn:   &model.Connection{Provider: model.ProviderDiscord, Credentials: model.DiscordCredentials{BotToken: "b"}},
			expect: model.ErrUnsupportedProvider,
		},
		"unknown provider is unsupported": {
			conn:   &model.Connection{Provider: "myspace"},
			expect: model.ErrUnsupportedProvider,
		},
		"mismatched credentials": {
			conn:   &model.Connection{Provider: model.ProviderSlack, Credentials: model.NotionCredentials{IntegrationSecret: "s"}},
			expect: model.ErrValidation,
		},
		"incomplete credentials": {
			conn:   &model.Connection{Provider: model.ProviderSlack, Credentials: model.SlackCredentials{}},
			expect: model.ErrValidation,
		},
		"nil connection": {
			expect: model.ErrValidation,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			a, err := f.New(tc.conn)
			if tc.expect != nil {
				gt.Error(t, err).Is(tc.expect)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, a).NotNil()
		})
	}
}

func TestFactoryPrimaryKey(t *testing.T) {
	f := adapter.New()
	gt.Value(t, f.PrimaryKey(model.ProviderSlack)).Equal("messages")
	gt.Value(t, f.PrimaryKey(model.ProviderGitHub)).Equal("commits")
	gt.Value(t, f.PrimaryKey(model.ProviderDiscord)).Equal("")
	gt.Bool(t, f.Supported(model.ProviderDiscord)).False()
	gt.Bool(t, f.Supported(model.ProviderGCal)).True()
}

func TestFactoryWithConstructor(t *testing.T) {
	var received *http.Client
	f := adapter.New(
		adapter.WithTimeout(5*time.Second),
		adapter.WithConstructor(model.ProviderDiscord, "messages",
			func(creds model.Credentials, c *http.Client) (interfaces.Adapter, error) {
				received = c
				return nil, nil
			}),
	)

	_, err := f.New(&model.Connection{
		Provider:    model.ProviderDiscord,
		Credentials: model.DiscordCredentials{BotToken: "b"},
	})
	gt.NoError(t, err).Required()
	gt.Value(t, received).NotNil()
	gt.Value(t, received.Timeout.Seconds()).Equal(5.0)
}
