package usecase_test

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/service/adapter"
)

type mockRaw struct {
	provider model.Provider
	sourceID string
}

func (r *mockRaw) Provider() model.Provider {
	return r.provider
}

// mockAdapter is a function-field implementation of interfaces.Adapter
type mockAdapter struct {
	provider      model.Provider
	listSourcesFn func(ctx context.Context) ([]model.ExternalSource, error)
	fetchRawFn    func(ctx context.Context, sourceID string) (model.RawData, error)
	normalizeFn   func(raw model.RawData) (model.CanonicalData, error)
	fetches       atomic.Int32
}

func (m *mockAdapter) ListSources(ctx context.Context) ([]model.ExternalSource, error) {
	if m.listSourcesFn != nil {
		return m.listSourcesFn(ctx)
	}
	return []model.ExternalSource{
		{ID: "C100", Name: "general", Type: "channel"},
		{ID: "C200", Name: "random", Type: "channel"},
	}, nil
}

func (m *mockAdapter) FetchRaw(ctx context.Context, sourceID string) (model.RawData, error) {
	m.fetches.Add(1)
	if m.fetchRawFn != nil {
		return m.fetchRawFn(ctx, sourceID)
	}
	return &mockRaw{provider: m.provider, sourceID: sourceID}, nil
}

func (m *mockAdapter) Normalize(raw model.RawData) (model.CanonicalData, error) {
	if m.normalizeFn != nil {
		return m.normalizeFn(raw)
	}
	r := raw.(*mockRaw)
	return model.CanonicalData{
		"channel_info": map[string]any{"id": r.sourceID, "name": "general"},
		"messages":     []map[string]any{},
		"users":        map[string]any{},
	}, nil
}

func (m *mockAdapter) ServiceInfo() model.ServiceInfo {
	return model.ServiceInfo{Name: "Mock", APIVersion: "v1", BaseURL: "https://mock.invalid"}
}

// mockFactory returns a factory whose slack and notion adapters are m
func mockFactory(m *mockAdapter) *adapter.Factory {
	construct := func(creds model.Credentials, _ *http.Client) (interfaces.Adapter, error) {
		return m, nil
	}
	return adapter.New(
		adapter.WithConstructor(model.ProviderSlack, "messages", construct),
		adapter.WithConstructor(model.ProviderNotion, "messages", construct),
	)
}
