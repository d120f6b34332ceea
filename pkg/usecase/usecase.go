package usecase

import (
	"time"

	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/domain/model/config"
	"github.com/secmon-lab/polyconn/pkg/service/adapter"
	"github.com/secmon-lab/polyconn/pkg/service/discovery"
)

type UseCases struct {
	repo        interfaces.Repository
	factory     interfaces.AdapterFactory
	registry    *discovery.Registry
	cacheTTL    time.Duration
	now         func() time.Time
	environment map[model.Provider]model.Credentials
	provision   *config.Provision

	Connection  *ConnectionUseCase
	DataSource  *DataSourceUseCase
	Data        *DataUseCase
	Endpoint    *EndpointUseCase
	Environment *EnvironmentUseCase
	Activity    *ActivityUseCase
	Pipeline    *PipelineUseCase
	Provisioner *Provisioner
}

type Option func(*UseCases)

func WithAdapterFactory(factory interfaces.AdapterFactory) Option {
	return func(uc *UseCases) {
		uc.factory = factory
	}
}

func WithRegistry(registry *discovery.Registry) Option {
	return func(uc *UseCases) {
		uc.registry = registry
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(uc *UseCases) {
		uc.cacheTTL = ttl
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

// WithEnvironment sets the credentials detected in the process environment.
// Incomplete credential sets are ignored.
func WithEnvironment(creds map[model.Provider]model.Credentials) Option {
	return func(uc *UseCases) {
		uc.environment = creds
	}
}

func WithProvision(cfg *config.Provision) Option {
	return func(uc *UseCases) {
		uc.provision = cfg
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		cacheTTL: connectionCacheTTL,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.factory == nil {
		uc.factory = adapter.New()
	}
	if uc.registry == nil {
		uc.registry = discovery.Default()
	}

	cache := newConnectionCache(repo.Connection(), uc.cacheTTL, uc.now)
	activities := newActivityRecorder(repo.Activity(), uc.now)

	uc.Activity = NewActivityUseCase(repo)
	uc.Connection = NewConnectionUseCase(repo, cache, activities)
	uc.DataSource = NewDataSourceUseCase(repo, uc.factory, activities)
	uc.Data = NewDataUseCase(repo, uc.factory, cache, activities, uc.now)
	uc.Endpoint = NewEndpointUseCase(uc.registry)
	uc.Environment = NewEnvironmentUseCase(uc.environment)
	uc.Pipeline = NewPipelineUseCase(repo, activities)
	uc.Provisioner = NewProvisioner(uc.Connection, uc.DataSource, uc.Environment, uc.provision)

	return uc
}
