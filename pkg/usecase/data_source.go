package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

type DataSourceUseCase struct {
	repo       interfaces.Repository
	factory    interfaces.AdapterFactory
	activities *activityRecorder
}

func NewDataSourceUseCase(repo interfaces.Repository, factory interfaces.AdapterFactory, activities *activityRecorder) *DataSourceUseCase {
	return &DataSourceUseCase{
		repo:       repo,
		factory:    factory,
		activities: activities,
	}
}

func (uc *DataSourceUseCase) Create(ctx context.Context, ds *model.DataSource) (*model.DataSource, error) {
	if ds == nil {
		return nil, goerr.Wrap(model.ErrValidation, "data source is required")
	}
	if err := ds.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid data source")
	}

	conn, err := uc.repo.Connection().Get(ctx, ds.ConnectionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get connection", goerr.V(model.ConnectionIDKey, ds.ConnectionID))
	}

	created, err := uc.repo.DataSource().Create(ctx, ds)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create data source",
			goerr.V(model.ConnectionIDKey, ds.ConnectionID),
			goerr.V(model.SourceIDKey, ds.SourceID))
	}

	uc.activities.record(ctx, conn.OwnerID, model.ActivityDataSourceCreated,
		fmt.Sprintf("Added %s source %q", conn.Provider, created.Name),
		map[string]any{
			"connection_id":  int64(conn.ID),
			"data_source_id": int64(created.ID),
			"source_id":      created.SourceID,
		})

	return created, nil
}

// List returns the data sources of connID. A missing connection is not found.
func (uc *DataSourceUseCase) List(ctx context.Context, connID model.ConnectionID) ([]*model.DataSource, error) {
	if _, err := uc.repo.Connection().Get(ctx, connID); err != nil {
		return nil, goerr.Wrap(err, "failed to get connection", goerr.V(model.ConnectionIDKey, connID))
	}

	sources, err := uc.repo.DataSource().ListByConnection(ctx, connID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list data sources", goerr.V(model.ConnectionIDKey, connID))
	}
	return sources, nil
}

// Delete removes dsID. It is not found unless it belongs to connID.
func (uc *DataSourceUseCase) Delete(ctx context.Context, connID model.ConnectionID, dsID model.DataSourceID) error {
	conn, err := uc.repo.Connection().Get(ctx, connID)
	if err != nil {
		return goerr.Wrap(err, "failed to get connection", goerr.V(model.ConnectionIDKey, connID))
	}

	ds, err := uc.repo.DataSource().Get(ctx, dsID)
	if err != nil {
		return goerr.Wrap(err, "failed to get data source", goerr.V(model.DataSourceIDKey, dsID))
	}
	if ds.ConnectionID != connID {
		return goerr.Wrap(model.ErrNotFound, "data source does not belong to connection",
			goerr.V(model.ConnectionIDKey, connID),
			goerr.V(model.DataSourceIDKey, dsID))
	}

	if err := uc.repo.DataSource().Delete(ctx, dsID); err != nil {
		return goerr.Wrap(err, "failed to delete data source", goerr.V(model.DataSourceIDKey, dsID))
	}

	uc.activities.record(ctx, conn.OwnerID, model.ActivityDataSourceDeleted,
		fmt.Sprintf("Removed %s source %q", conn.Provider, ds.Name),
		map[string]any{
			"connection_id":  int64(conn.ID),
			"data_source_id": int64(ds.ID),
			"source_id":      ds.SourceID,
		})

	return nil
}

// Discover lists the provider native sources reachable by the connection
func (uc *DataSourceUseCase) Discover(ctx context.Context, connID model.ConnectionID) ([]model.ExternalSource, error) {
	conn, err := uc.repo.Connection().Get(ctx, connID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get connection", goerr.V(model.ConnectionIDKey, connID))
	}
	return uc.discover(ctx, conn)
}

func (uc *DataSourceUseCase) discover(ctx context.Context, conn *model.Connection) ([]model.ExternalSource, error) {
	adapter, err := uc.factory.New(conn)
	if err != nil {
		return nil, err
	}

	sources, err := adapter.ListSources(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sources",
			goerr.V(model.ConnectionIDKey, conn.ID),
			goerr.V(model.ProviderKey, conn.Provider))
	}
	return sources, nil
}
