package discovery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/service/discovery"
)

func TestDefault(t *testing.T) {
	r := discovery.Default()
	ctx := context.Background()

	providers := r.Providers()
	gt.Array(t, providers).Length(len(model.Providers()))
	for i := 1; i < len(providers); i++ {
		gt.Bool(t, providers[i-1] < providers[i]).True()
	}

	all := r.DiscoverAll(ctx)
	for _, p := range model.Providers() {
		gt.Bool(t, len(all[p]) > 0).True()
	}

	info, err := r.ServiceInfo(model.ProviderSlack)
	gt.NoError(t, err).Required()
	gt.Value(t, info.Name).Equal("Slack")
}

func TestDiscoverAllIsolatesFailures(t *testing.T) {
	r := discovery.New()
	ok := []model.DiscoveredEndpoint{{ID: "ok.one"}, {ID: "ok.two"}}

	r.Register(model.ProviderSlack, model.ServiceInfo{Name: "Slack"},
		func(ctx context.Context) ([]model.DiscoveredEndpoint, error) {
			return ok, nil
		})
	r.Register(model.ProviderNotion, model.ServiceInfo{Name: "Notion"},
		func(ctx context.Context) ([]model.DiscoveredEndpoint, error) {
			return nil, errors.New("boom")
		})
	r.Register(model.ProviderLinear, model.ServiceInfo{Name: "Linear"},
		func(ctx context.Context) ([]model.DiscoveredEndpoint, error) {
			panic("catalog bug")
		})

	all := r.DiscoverAll(context.Background())
	gt.Array(t, all[model.ProviderSlack]).Length(2)
	gt.Value(t, all[model.ProviderNotion]).NotNil()
	gt.Array(t, all[model.ProviderNotion]).Length(0)
	gt.Array(t, all[model.ProviderLinear]).Length(0)

	t.Run("result is a copy", func(t *testing.T) {
		all[model.ProviderSlack][0].ID = "mutated"
		gt.Value(t, ok[0].ID).Equal("ok.one")
	})

	t.Run("DiscoverOne surfaces the failure", func(t *testing.T) {
		_, err := r.DiscoverOne(context.Background(), model.ProviderLinear)
		gt.Value(t, err).NotNil()
	})
}

func TestUnknownProvider(t *testing.T) {
	r := discovery.Default()

	_, err := r.DiscoverOne(context.Background(), "myspace")
	gt.Error(t, err).Is(model.ErrNotFound)

	_, err = r.ServiceInfo("myspace")
	gt.Error(t, err).Is(model.ErrNotFound)
}

func TestEndpointIDsAreUnique(t *testing.T) {
	seen := make(map[string]model.Provider)
	for provider, endpoints := range discovery.Default().DiscoverAll(context.Background()) {
		for _, ep := range endpoints {
			_, dup := seen[ep.ID]
			gt.Bool(t, dup).False()
			seen[ep.ID] = provider
		}
	}
}
