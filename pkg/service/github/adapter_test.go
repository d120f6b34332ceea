package github_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/service/github"
)

const (
	installationToken = "ghs_installation"
	oauthToken        = "gho_oauth"
)

type fakeGitHub struct {
	*httptest.Server
	rejectInstallation bool
	installationCalls  atomic.Int32
	oauthCalls         atomic.Int32
}

func newFakeGitHub(t *testing.T, rejectInstallation bool) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{rejectInstallation: rejectInstallation}

	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}

	mux.HandleFunc("POST /app/installations/99/access_tokens", func(w http.ResponseWriter, r *http.Request) {
		if f.rejectInstallation {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Bad credentials"}`)
			return
		}
		expires := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
		writeJSON(w, http.StatusCreated, fmt.Sprintf(`{"token":%q,"expires_at":%q}`, installationToken, expires))
	})

	api := http.NewServeMux()
	api.HandleFunc("GET /installation/repositories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"total_count":1,"repositories":[{"full_name":"acme/app","name":"app","private":true}]}`)
	})
	api.HandleFunc("GET /user/repos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"full_name":"acme/app","name":"app"},{"full_name":"alice/dotfiles","name":"dotfiles"}]`)
	})
	api.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"repository":{
			"id":"R_1","name":"app","nameWithOwner":"acme/app","description":"demo","url":"https://github.com/acme/app",
			"isPrivate":true,"stargazerCount":5,"forkCount":1,
			"primaryLanguage":{"name":"Go"},"defaultBranchRef":{"name":"main"},
			"updatedAt":"2024-01-01T00:00:00Z"}}}`)
	})
	api.HandleFunc("GET /repos/acme/app/commits", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"sha":"abc123","html_url":"https://github.com/acme/app/commit/abc123",
			"commit":{"message":"initial","author":{"name":"Alice","email":"alice@example.com","date":"2024-01-01T00:00:00Z"}},
			"author":{"login":"alice"}}]`)
	})
	api.HandleFunc("GET /repos/acme/app/contributors", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"login":"alice","contributions":10},{"login":"ghost","contributions":1}]`)
	})
	api.HandleFunc("GET /repos/acme/empty/commits", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})
	api.HandleFunc("GET /repos/acme/empty/contributors", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})
	api.HandleFunc("GET /users/alice", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"login":"alice","name":"Alice","company":"Acme"}`)
	})
	api.HandleFunc("GET /users/ghost", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message":"Not Found"}`)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "token " + installationToken:
			f.installationCalls.Add(1)
		case "Bearer " + oauthToken:
			f.oauthCalls.Add(1)
		default:
			writeJSON(w, http.StatusUnauthorized, `{"message":"Requires authentication"}`)
			return
		}
		api.ServeHTTP(w, r)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func generatePrivateKey(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	gt.NoError(t, err).Required()
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
}

func newAdapter(t *testing.T, srv *fakeGitHub, creds model.GitHubCredentials) *github.Adapter {
	t.Helper()
	adapter, err := github.New(creds,
		github.WithBaseURL(srv.URL),
		github.WithHTTPClient(srv.Client()),
	)
	gt.NoError(t, err).Required()
	return adapter
}

func TestNew(t *testing.T) {
	_, err := github.New(model.GitHubCredentials{AppID: 1})
	gt.Error(t, err).Is(model.ErrValidation)
}

func TestInstallationPath(t *testing.T) {
	srv := newFakeGitHub(t, false)
	adapter := newAdapter(t, srv, model.GitHubCredentials{
		AppID:          1,
		InstallationID: 99,
		PrivateKey:     generatePrivateKey(t),
		OAuthToken:     oauthToken,
	})
	ctx := context.Background()

	sources, err := adapter.ListSources(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, sources).Length(1)
	gt.Value(t, sources[0].ID).Equal("acme/app")

	raw, err := adapter.FetchRaw(ctx, "acme/app")
	gt.NoError(t, err).Required()

	data, err := adapter.Normalize(raw)
	gt.NoError(t, err).Required()
	gt.NoError(t, data.Validate(github.PrimaryKey))

	info := data["repository_info"].(map[string]any)
	gt.Value(t, info["full_name"]).Equal("acme/app")
	gt.Value(t, info["primary_language"]).Equal("Go")

	commits := data["commits"].([]map[string]any)
	gt.Array(t, commits).Length(1)
	gt.Value(t, commits[0]["author_login"]).Equal("alice")

	contributors := data["contributors"].(map[string]any)
	gt.Value(t, contributors["alice"].(map[string]any)["company"]).Equal("Acme")
	gt.Value(t, contributors["ghost"].(map[string]any)["placeholder"]).Equal(true)

	gt.Bool(t, srv.installationCalls.Load() > 0).True()
	gt.Value(t, srv.oauthCalls.Load()).Equal(int32(0))
}

func TestFetchEmptyRepository(t *testing.T) {
	srv := newFakeGitHub(t, false)
	adapter := newAdapter(t, srv, model.GitHubCredentials{OAuthToken: oauthToken})

	raw, err := adapter.FetchRaw(context.Background(), "acme/empty")
	gt.NoError(t, err).Required()

	data, err := adapter.Normalize(raw)
	gt.NoError(t, err).Required()
	gt.NoError(t, data.Validate(github.PrimaryKey))

	gt.Value(t, data["repository_info"]).NotNil()
	commits, ok := data["commits"].([]map[string]any)
	gt.Bool(t, ok).True()
	gt.Value(t, commits).NotNil()
	gt.Array(t, commits).Length(0)
}

func TestFallbackToOAuth(t *testing.T) {
	t.Run("installation token rejected", func(t *testing.T) {
		srv := newFakeGitHub(t, true)
		adapter := newAdapter(t, srv, model.GitHubCredentials{
			AppID:          1,
			InstallationID: 99,
			PrivateKey:     generatePrivateKey(t),
			OAuthToken:     oauthToken,
		})

		sources, err := adapter.ListSources(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, sources).Length(2)
		gt.Value(t, srv.installationCalls.Load()).Equal(int32(0))
		gt.Bool(t, srv.oauthCalls.Load() > 0).True()
	})

	t.Run("invalid private key", func(t *testing.T) {
		srv := newFakeGitHub(t, false)
		adapter := newAdapter(t, srv, model.GitHubCredentials{
			AppID:          1,
			InstallationID: 99,
			PrivateKey:     "not a pem",
			OAuthToken:     oauthToken,
		})

		raw, err := adapter.FetchRaw(context.Background(), "acme/app")
		gt.NoError(t, err).Required()
		gt.Value(t, raw.Provider()).Equal(model.ProviderGitHub)
	})

	t.Run("no OAuth token surfaces auth error", func(t *testing.T) {
		srv := newFakeGitHub(t, true)
		adapter := newAdapter(t, srv, model.GitHubCredentials{
			AppID:          1,
			InstallationID: 99,
			PrivateKey:     generatePrivateKey(t),
		})

		_, err := adapter.ListSources(context.Background())
		gt.Error(t, err).Is(model.ErrAuth)
		gt.Value(t, srv.oauthCalls.Load()).Equal(int32(0))
	})
}

func TestOAuthOnly(t *testing.T) {
	srv := newFakeGitHub(t, false)

	t.Run("valid token", func(t *testing.T) {
		adapter := newAdapter(t, srv, model.GitHubCredentials{OAuthToken: oauthToken})
		sources, err := adapter.ListSources(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, sources).Length(2)
	})

	t.Run("invalid token", func(t *testing.T) {
		adapter := newAdapter(t, srv, model.GitHubCredentials{OAuthToken: "gho_wrong"})
		_, err := adapter.ListSources(context.Background())
		gt.Error(t, err).Is(model.ErrAuth)
	})
}

func TestFetchRawRejectsMalformedSourceID(t *testing.T) {
	adapter, err := github.New(model.GitHubCredentials{OAuthToken: oauthToken})
	gt.NoError(t, err).Required()

	for _, id := range []string{"", "acme", "/app", "acme/", "acme/app/extra"} {
		_, err := adapter.FetchRaw(context.Background(), id)
		gt.Error(t, err).Is(model.ErrValidation)
	}
}

func TestUpstreamErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	adapter, err := github.New(model.GitHubCredentials{
		AppID:          1,
		InstallationID: 99,
		PrivateKey:     generatePrivateKey(t),
		OAuthToken:     oauthToken,
	}, github.WithBaseURL(srv.URL), github.WithHTTPClient(srv.Client()))
	gt.NoError(t, err).Required()

	_, err = adapter.ListSources(context.Background())
	gt.Error(t, err).Is(model.ErrUpstream)
	gt.Value(t, calls.Load()).Equal(int32(1))
}
