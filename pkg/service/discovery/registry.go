package discovery

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// DiscoverFunc returns the endpoint catalog of one provider
type DiscoverFunc func(ctx context.Context) ([]model.DiscoveredEndpoint, error)

type entry struct {
	info     model.ServiceInfo
	discover DiscoverFunc
}

// Registry holds per provider endpoint catalogs and service metadata.
// It only describes endpoints and never calls them.
type Registry struct {
	mu      sync.RWMutex
	entries map[model.Provider]entry
}

func New() *Registry {
	return &Registry{entries: make(map[model.Provider]entry)}
}

// Register adds or replaces the catalog of provider
func (r *Registry) Register(provider model.Provider, info model.ServiceInfo, fn DiscoverFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[provider] = entry{info: info, discover: fn}
}

// Static wraps a fixed catalog as a DiscoverFunc
func Static(endpoints func() []model.DiscoveredEndpoint) DiscoverFunc {
	return func(ctx context.Context) ([]model.DiscoveredEndpoint, error) {
		return endpoints(), nil
	}
}

// Providers returns registered providers in lexical order
func (r *Registry) Providers() []model.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]model.Provider, 0, len(r.entries))
	for p := range r.entries {
		providers = append(providers, p)
	}
	slices.Sort(providers)
	return providers
}

func (r *Registry) lookup(provider model.Provider) (entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[provider]
	if !ok {
		return entry{}, goerr.Wrap(model.ErrNotFound, "unknown provider",
			goerr.V(model.ProviderKey, provider))
	}
	return e, nil
}

// ServiceInfo returns the static metadata of provider
func (r *Registry) ServiceInfo(provider model.Provider) (model.ServiceInfo, error) {
	e, err := r.lookup(provider)
	if err != nil {
		return model.ServiceInfo{}, err
	}
	return e.info, nil
}

// DiscoverOne runs the catalog of a single provider
func (r *Registry) DiscoverOne(ctx context.Context, provider model.Provider) ([]model.DiscoveredEndpoint, error) {
	e, err := r.lookup(provider)
	if err != nil {
		return nil, err
	}

	endpoints, err := safeDiscover(ctx, e.discover)
	if err != nil {
		return nil, goerr.Wrap(err, "endpoint discovery failed", goerr.V(model.ProviderKey, provider))
	}
	return endpoints, nil
}

// DiscoverAll runs every catalog concurrently. A provider whose catalog
// fails or panics maps to an empty list; others are unaffected.
func (r *Registry) DiscoverAll(ctx context.Context) map[model.Provider][]model.DiscoveredEndpoint {
	r.mu.RLock()
	snapshot := make(map[model.Provider]entry, len(r.entries))
	for p, e := range r.entries {
		snapshot[p] = e
	}
	r.mu.RUnlock()

	var (
		mu     sync.Mutex
		result = make(map[model.Provider][]model.DiscoveredEndpoint, len(snapshot))
		eg     errgroup.Group
	)

	for provider, e := range snapshot {
		eg.Go(func() error {
			endpoints, err := safeDiscover(ctx, e.discover)
			if err != nil {
				logging.From(ctx).Warn("endpoint discovery failed",
					"provider", provider,
					"error", err.Error(),
				)
				endpoints = []model.DiscoveredEndpoint{}
			}

			mu.Lock()
			result[provider] = endpoints
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	return result
}

func safeDiscover(ctx context.Context, fn DiscoverFunc) (endpoints []model.DiscoveredEndpoint, err error) {
	defer func() {
		if r := recover(); r != nil {
			endpoints = nil
			err = goerr.New("discovery panicked", goerr.V("panic", fmt.Sprint(r)))
		}
	}()

	found, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return []model.DiscoveredEndpoint{}, nil
	}
	return slices.Clone(found), nil
}
