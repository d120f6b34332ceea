package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

type ConnectionUseCase struct {
	repo       interfaces.Repository
	cache      *connectionCache
	activities *activityRecorder
}

func NewConnectionUseCase(repo interfaces.Repository, cache *connectionCache, activities *activityRecorder) *ConnectionUseCase {
	return &ConnectionUseCase{
		repo:       repo,
		cache:      cache,
		activities: activities,
	}
}

func (uc *ConnectionUseCase) Create(ctx context.Context, conn *model.Connection) (*model.Connection, error) {
	if conn == nil {
		return nil, goerr.Wrap(model.ErrValidation, "connection is required")
	}
	if err := conn.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid connection")
	}

	created, err := uc.repo.Connection().Create(ctx, conn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create connection",
			goerr.V(model.OwnerIDKey, conn.OwnerID),
			goerr.V(model.ProviderKey, conn.Provider))
	}
	uc.cache.Invalidate(created.OwnerID)

	uc.activities.record(ctx, created.OwnerID, model.ActivityConnectionCreated,
		fmt.Sprintf("Connected %s as %q", created.Provider, created.DisplayName),
		map[string]any{
			"connection_id": int64(created.ID),
			"provider":      string(created.Provider),
		})

	return created, nil
}

func (uc *ConnectionUseCase) Get(ctx context.Context, id model.ConnectionID) (*model.Connection, error) {
	conn, err := uc.repo.Connection().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get connection", goerr.V(model.ConnectionIDKey, id))
	}
	return conn, nil
}

// List returns the connections of ownerID through the connection cache
func (uc *ConnectionUseCase) List(ctx context.Context, ownerID string) ([]*model.Connection, error) {
	if ownerID == "" {
		return nil, goerr.Wrap(model.ErrValidation, "owner ID is required")
	}
	return uc.cache.Get(ctx, ownerID)
}

// FindActive returns the first active connection of ownerID for provider, or nil
func (uc *ConnectionUseCase) FindActive(ctx context.Context, ownerID string, provider model.Provider) (*model.Connection, error) {
	conns, err := uc.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, conn := range conns {
		if conn.Provider == provider && conn.Active {
			return conn, nil
		}
	}
	return nil, nil
}

func (uc *ConnectionUseCase) Update(ctx context.Context, id model.ConnectionID, update *model.ConnectionUpdate) (*model.Connection, error) {
	if update == nil {
		return nil, goerr.Wrap(model.ErrValidation, "update is required")
	}

	conn, err := uc.repo.Connection().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get connection", goerr.V(model.ConnectionIDKey, id))
	}

	if err := update.Apply(conn); err != nil {
		return nil, goerr.Wrap(err, "invalid connection update", goerr.V(model.ConnectionIDKey, id))
	}

	updated, err := uc.repo.Connection().Update(ctx, conn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update connection", goerr.V(model.ConnectionIDKey, id))
	}
	uc.cache.Invalidate(updated.OwnerID)

	uc.activities.record(ctx, updated.OwnerID, model.ActivityConnectionUpdated,
		fmt.Sprintf("Updated %s connection %q", updated.Provider, updated.DisplayName),
		map[string]any{
			"connection_id": int64(updated.ID),
			"provider":      string(updated.Provider),
			"active":        updated.Active,
		})

	return updated, nil
}

// Delete removes the connection and its data sources
func (uc *ConnectionUseCase) Delete(ctx context.Context, id model.ConnectionID) error {
	conn, err := uc.repo.Connection().Get(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to get connection", goerr.V(model.ConnectionIDKey, id))
	}

	if err := uc.repo.Connection().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete connection", goerr.V(model.ConnectionIDKey, id))
	}
	uc.cache.Invalidate(conn.OwnerID)

	uc.activities.record(ctx, conn.OwnerID, model.ActivityConnectionDeleted,
		fmt.Sprintf("Disconnected %s connection %q", conn.Provider, conn.DisplayName),
		map[string]any{
			"connection_id": int64(conn.ID),
			"provider":      string(conn.Provider),
		})

	return nil
}
