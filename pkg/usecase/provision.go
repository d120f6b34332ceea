package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/domain/model/config"
	"github.com/secmon-lab/polyconn/pkg/utils/errutil"
	"github.com/secmon-lab/polyconn/pkg/utils/logging"
)

// ProvisionStatus is the outcome of provisioning one provider
type ProvisionStatus string

const (
	ProvisionCreated  ProvisionStatus = "created"
	ProvisionExisting ProvisionStatus = "existing"
	ProvisionFailed   ProvisionStatus = "failed"
)

type ProvisionResult struct {
	Provider     model.Provider
	Status       ProvisionStatus
	ConnectionID model.ConnectionID
	DataSource   *model.DataSource
	Fallback     bool
	Err          error
}

// Provisioner creates connections from credentials found in the process environment
type Provisioner struct {
	connections *ConnectionUseCase
	dataSources *DataSourceUseCase
	environment *EnvironmentUseCase
	config      *config.Provision
}

func NewProvisioner(connections *ConnectionUseCase, dataSources *DataSourceUseCase, environment *EnvironmentUseCase, cfg *config.Provision) *Provisioner {
	return &Provisioner{
		connections: connections,
		dataSources: dataSources,
		environment: environment,
		config:      cfg,
	}
}

// Run provisions every configured provider in the fixed provider order.
// Failures are logged and reported in the results, never returned.
func (p *Provisioner) Run(ctx context.Context) []ProvisionResult {
	ownerID := p.config.Owner()
	logger := logging.From(ctx)

	var results []ProvisionResult
	for _, provider := range p.environment.Configured() {
		result := p.provision(ctx, ownerID, provider)
		if result.Err != nil {
			errutil.Handle(ctx, result.Err, "failed to provision connection")
		} else {
			logger.Info("provisioned connection",
				"provider", provider,
				"status", result.Status,
				"connection_id", result.ConnectionID,
				"fallback", result.Fallback,
			)
		}
		results = append(results, result)
	}

	return results
}

func (p *Provisioner) provision(ctx context.Context, ownerID string, provider model.Provider) ProvisionResult {
	result := ProvisionResult{Provider: provider, Status: ProvisionFailed}

	existing, err := p.connections.FindActive(ctx, ownerID, provider)
	if err != nil {
		result.Err = goerr.Wrap(err, "failed to look up connections", goerr.V(model.ProviderKey, provider))
		return result
	}
	if existing != nil {
		result.Status = ProvisionExisting
		result.ConnectionID = existing.ID
		return result
	}

	creds, _ := p.environment.Credentials(provider)
	conn, err := p.connections.Create(ctx, &model.Connection{
		OwnerID:     ownerID,
		Provider:    provider,
		DisplayName: string(provider) + " (environment)",
		Active:      true,
		Credentials: creds,
	})
	if err != nil {
		result.Err = goerr.Wrap(err, "failed to create connection", goerr.V(model.ProviderKey, provider))
		return result
	}
	result.Status = ProvisionCreated
	result.ConnectionID = conn.ID

	ds, err := p.createDefaultSource(ctx, conn)
	if err != nil {
		errutil.Handle(ctx, err, "failed to create default data source, using fallback")

		ds, err = p.dataSources.Create(ctx, model.NewFallbackDataSource(conn.ID, provider))
		if err != nil {
			result.Err = goerr.Wrap(err, "failed to create fallback data source", goerr.V(model.ProviderKey, provider))
			return result
		}
		result.Fallback = true
	}
	result.DataSource = ds

	return result
}

func (p *Provisioner) createDefaultSource(ctx context.Context, conn *model.Connection) (*model.DataSource, error) {
	ds, err := p.resolveDefaultSource(ctx, conn)
	if err != nil {
		return nil, err
	}
	return p.dataSources.Create(ctx, ds)
}

// resolveDefaultSource prefers a credential hint, then a configured source,
// then the first source the provider lists
func (p *Provisioner) resolveDefaultSource(ctx context.Context, conn *model.Connection) (*model.DataSource, error) {
	if creds, ok := conn.Credentials.(model.SlackCredentials); ok && creds.ChannelID != "" {
		return &model.DataSource{
			ConnectionID: conn.ID,
			Name:         creds.ChannelID,
			SourceType:   "channel",
			SourceID:     creds.ChannelID,
		}, nil
	}

	if src, ok := p.config.SourceFor(conn.Provider); ok {
		name := src.Name
		if name == "" {
			name = src.SourceID
		}
		return &model.DataSource{
			ConnectionID: conn.ID,
			Name:         name,
			SourceType:   src.SourceType,
			SourceID:     src.SourceID,
		}, nil
	}

	sources, err := p.dataSources.discover(ctx, conn)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, goerr.Wrap(model.ErrNotFound, "provider listed no sources", goerr.V(model.ProviderKey, conn.Provider))
	}

	first := sources[0]
	name := first.Name
	if name == "" {
		name = first.ID
	}
	return &model.DataSource{
		ConnectionID: conn.ID,
		Name:         name,
		SourceType:   first.Type,
		SourceID:     first.ID,
		Config:       first.Metadata,
	}, nil
}
