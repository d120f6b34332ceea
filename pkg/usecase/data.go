package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/utils/logging"
)

type DataUseCase struct {
	repo       interfaces.Repository
	factory    interfaces.AdapterFactory
	cache      *connectionCache
	activities *activityRecorder
	now        func() time.Time
}

func NewDataUseCase(repo interfaces.Repository, factory interfaces.AdapterFactory, cache *connectionCache, activities *activityRecorder, now func() time.Time) *DataUseCase {
	return &DataUseCase{
		repo:       repo,
		factory:    factory,
		cache:      cache,
		activities: activities,
		now:        now,
	}
}

// Fetch reads sourceID through the connection's adapter and returns the
// canonical data. An empty sourceID selects the first data source of the
// connection. A successful fetch advances LastSyncedAt and records a
// data_sync activity. A failed one records an error activity.
func (uc *DataUseCase) Fetch(ctx context.Context, connID model.ConnectionID, sourceID string) (model.CanonicalData, error) {
	conn, err := uc.repo.Connection().Get(ctx, connID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get connection", goerr.V(model.ConnectionIDKey, connID))
	}
	if !conn.Active {
		return nil, goerr.Wrap(model.ErrValidation, "connection is not active",
			goerr.V(model.ConnectionIDKey, connID))
	}

	if sourceID == "" {
		sourceID, err = uc.defaultSourceID(ctx, connID)
		if err != nil {
			return nil, err
		}
	}

	data, err := uc.fetch(ctx, conn, sourceID)
	if err != nil {
		uc.activities.record(ctx, conn.OwnerID, model.ActivityError,
			fmt.Sprintf("Failed to sync %s source %s", conn.Provider, sourceID),
			map[string]any{
				"connection_id": int64(conn.ID),
				"provider":      string(conn.Provider),
				"source_id":     sourceID,
				"kind":          model.ErrorKind(err),
				"error":         err.Error(),
			})
		return nil, err
	}

	if err := uc.repo.Connection().TouchSynced(ctx, conn.ID, uc.now().UTC()); err != nil {
		return nil, goerr.Wrap(err, "failed to touch connection", goerr.V(model.ConnectionIDKey, conn.ID))
	}
	uc.cache.Invalidate(conn.OwnerID)

	uc.activities.record(ctx, conn.OwnerID, model.ActivityDataSync,
		fmt.Sprintf("Synced %s source %s", conn.Provider, sourceID),
		map[string]any{
			"connection_id": int64(conn.ID),
			"provider":      string(conn.Provider),
			"source_id":     sourceID,
		})

	return data, nil
}

func (uc *DataUseCase) defaultSourceID(ctx context.Context, connID model.ConnectionID) (string, error) {
	sources, err := uc.repo.DataSource().ListByConnection(ctx, connID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to list data sources", goerr.V(model.ConnectionIDKey, connID))
	}
	if len(sources) == 0 {
		return "", goerr.Wrap(model.ErrValidation, "source ID is required",
			goerr.V(model.ConnectionIDKey, connID))
	}
	return sources[0].SourceID, nil
}

func (uc *DataUseCase) fetch(ctx context.Context, conn *model.Connection, sourceID string) (model.CanonicalData, error) {
	adapter, err := uc.factory.New(conn)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Debug("fetching source",
		"provider", conn.Provider,
		"connection_id", conn.ID,
		"source_id", sourceID)

	raw, err := adapter.FetchRaw(ctx, sourceID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch source",
			goerr.V(model.ConnectionIDKey, conn.ID),
			goerr.V(model.SourceIDKey, sourceID))
	}

	data, err := adapter.Normalize(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to normalize source",
			goerr.V(model.ConnectionIDKey, conn.ID),
			goerr.V(model.SourceIDKey, sourceID))
	}

	if err := data.Validate(uc.factory.PrimaryKey(conn.Provider)); err != nil {
		return nil, goerr.Wrap(err, "adapter produced malformed data",
			goerr.V(model.ProviderKey, conn.Provider),
			goerr.V(model.SourceIDKey, sourceID))
	}

	return data, nil
}
