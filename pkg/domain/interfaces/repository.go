package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

// Repository defines the interface for data persistence
type Repository interface {
	Connection() ConnectionRepository
	DataSource() DataSourceRepository
	Activity() ActivityRepository
	Pipeline() PipelineRepository

	Close() error
}

// ConnectionRepository persists Connections. Every lookup of a missing id
// fails with an error wrapping model.ErrNotFound.
type ConnectionRepository interface {
	// Create assigns a new ID and timestamps
	Create(ctx context.Context, conn *model.Connection) (*model.Connection, error)

	Get(ctx context.Context, id model.ConnectionID) (*model.Connection, error)

	// List returns connections of ownerID ordered by ID
	List(ctx context.Context, ownerID string) ([]*model.Connection, error)

	Update(ctx context.Context, conn *model.Connection) (*model.Connection, error)

	// Delete removes the connection and every DataSource that belongs to it
	Delete(ctx context.Context, id model.ConnectionID) error

	// TouchSynced sets LastSyncedAt to at unless the stored value is already later
	TouchSynced(ctx context.Context, id model.ConnectionID, at time.Time) error
}

// DataSourceRepository persists DataSources
type DataSourceRepository interface {
	// Create fails with model.ErrNotFound when the parent connection does not exist
	Create(ctx context.Context, ds *model.DataSource) (*model.DataSource, error)

	Get(ctx context.Context, id model.DataSourceID) (*model.DataSource, error)

	ListByConnection(ctx context.Context, connID model.ConnectionID) ([]*model.DataSource, error)

	Delete(ctx context.Context, id model.DataSourceID) error
}

// ActivityRepository is an append-only audit log
type ActivityRepository interface {
	Append(ctx context.Context, activity *model.Activity) error

	// List returns activities of userID, newest first. limit <= 0 means no limit.
	List(ctx context.Context, userID string, limit int) ([]*model.Activity, error)
}

type PipelineRepository interface {
	Create(ctx context.Context, pipeline *model.Pipeline) (*model.Pipeline, error)
	Get(ctx context.Context, id model.PipelineID) (*model.Pipeline, error)
	List(ctx context.Context, ownerID string) ([]*model.Pipeline, error)
	Update(ctx context.Context, pipeline *model.Pipeline) (*model.Pipeline, error)
	Delete(ctx context.Context, id model.PipelineID) error
}
