package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/service/discovery"
)

type EndpointUseCase struct {
	registry *discovery.Registry
}

func NewEndpointUseCase(registry *discovery.Registry) *EndpointUseCase {
	return &EndpointUseCase{registry: registry}
}

// All returns the catalog of every registered provider. A failing
// provider yields an empty list.
func (uc *EndpointUseCase) All(ctx context.Context) map[model.Provider][]model.DiscoveredEndpoint {
	return uc.registry.DiscoverAll(ctx)
}

func (uc *EndpointUseCase) ByProvider(ctx context.Context, provider model.Provider) ([]model.DiscoveredEndpoint, error) {
	endpoints, err := uc.registry.DiscoverOne(ctx, provider)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to discover endpoints", goerr.V(model.ProviderKey, provider))
	}
	return endpoints, nil
}

func (uc *EndpointUseCase) ServiceInfo(provider model.Provider) (model.ServiceInfo, error) {
	return uc.registry.ServiceInfo(provider)
}
