package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/polyconn/pkg/controller/http"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/repository/memory"
	"github.com/secmon-lab/polyconn/pkg/service/adapter"
	"github.com/secmon-lab/polyconn/pkg/service/slack"
	"github.com/secmon-lab/polyconn/pkg/usecase"
)

func newFakeSlack(t *testing.T) *httptest.Server {
	t.Helper()

	write := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/conversations.info", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer xoxb-env" {
			write(w, `{"ok":false,"error":"invalid_auth"}`)
			return
		}
		write(w, `{"ok":true,"channel":{"id":"C001","name":"incident-room","num_members":2}}`)
	})
	mux.HandleFunc("/conversations.history", func(w http.ResponseWriter, r *http.Request) {
		write(w, `{"ok":true,"has_more":false,"messages":[]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSlackEndToEnd(t *testing.T) {
	ctx := context.Background()
	fake := newFakeSlack(t)

	factory := adapter.New(adapter.WithConstructor(model.ProviderSlack, slack.PrimaryKey,
		func(creds model.Credentials, c *http.Client) (interfaces.Adapter, error) {
			return slack.New(creds.(model.SlackCredentials),
				slack.WithHTTPClient(c),
				slack.WithBaseURL(fake.URL+"/"),
			)
		}))

	uc := usecase.New(memory.New(),
		usecase.WithAdapterFactory(factory),
		usecase.WithEnvironment(map[model.Provider]model.Credentials{
			model.ProviderSlack: model.SlackCredentials{BotToken: "xoxb-env", ChannelID: "C001"},
		}),
	)
	srv := httpctrl.New(uc)

	w := do(t, srv, http.MethodGet, "/environment/services", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	services := decode[map[string]bool](t, w)
	gt.Bool(t, services["slack"]).True()
	gt.Bool(t, services["notion"]).False()
	gt.Number(t, len(services)).Equal(len(model.Providers()))

	results := uc.Provisioner.Run(ctx)
	gt.A(t, results).Length(1).Required()
	gt.NoError(t, results[0].Err)

	w = do(t, srv, http.MethodGet, "/connections?ownerId=1", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	conns := decode[[]map[string]any](t, w)
	gt.A(t, conns).Length(1).Required()
	gt.Value(t, conns[0]["provider"]).Equal("slack")
	gt.Value(t, conns[0]["active"]).Equal(true)
	gt.Value(t, conns[0]["lastSyncedAt"]).Nil()

	w = do(t, srv, http.MethodGet, "/connections/1/data-sources", nil)
	gt.A(t, decode[[]map[string]any](t, w)).Length(1)

	w = do(t, srv, http.MethodGet, "/connections/1/data?sourceId=C001", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	data := decode[map[string]any](t, w)
	info := data["channel_info"].(map[string]any)
	gt.Value(t, info["name"]).Equal("incident-room")
	messages, ok := data["messages"].([]any)
	gt.Bool(t, ok).True()
	gt.A(t, messages).Length(0)

	w = do(t, srv, http.MethodGet, "/activities?userId=1&limit=1", nil)
	activities := decode[[]map[string]any](t, w)
	gt.A(t, activities).Length(1).Required()
	gt.Value(t, activities[0]["type"]).Equal(string(model.ActivityDataSync))

	w = do(t, srv, http.MethodGet, "/connections?ownerId=1", nil)
	conns = decode[[]map[string]any](t, w)
	gt.Value(t, conns[0]["lastSyncedAt"]).NotNil()

	// a second provisioning pass is a no-op
	uc.Provisioner.Run(ctx)
	w = do(t, srv, http.MethodGet, "/connections?ownerId=1", nil)
	gt.A(t, decode[[]map[string]any](t, w)).Length(1)
}

func TestSlackAuthFailureSurfaces(t *testing.T) {
	fake := newFakeSlack(t)

	factory := adapter.New(adapter.WithConstructor(model.ProviderSlack, slack.PrimaryKey,
		func(creds model.Credentials, c *http.Client) (interfaces.Adapter, error) {
			return slack.New(creds.(model.SlackCredentials),
				slack.WithHTTPClient(c),
				slack.WithBaseURL(fake.URL+"/"),
			)
		}))
	srv := httpctrl.New(usecase.New(memory.New(), usecase.WithAdapterFactory(factory)))

	w := do(t, srv, http.MethodPost, "/connections", map[string]any{
		"ownerId":     "1",
		"provider":    "slack",
		"displayName": "Slack",
		"credentials": map[string]any{"bot_token": "xoxb-revoked"},
	})
	gt.Number(t, w.Code).Equal(http.StatusCreated)

	w = do(t, srv, http.MethodGet, "/connections/1/data?sourceId=C001", nil)
	gt.Number(t, w.Code).Equal(http.StatusUnauthorized)
	resp := decode[errorResponse](t, w)
	gt.Value(t, resp.Error.Kind).Equal(model.KindAuth)
	gt.String(t, resp.Error.Message).Contains("slack")

	w = do(t, srv, http.MethodGet, "/activities?userId=1&limit=1", nil)
	activities := decode[[]map[string]any](t, w)
	gt.Value(t, activities[0]["type"]).Equal(string(model.ActivityError))
}
