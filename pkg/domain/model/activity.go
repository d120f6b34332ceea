package model

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

type ActivityID string

// NewActivityID generates a new UUID v4 ActivityID
func NewActivityID() ActivityID {
	return ActivityID(uuid.New().String())
}

type ActivityType string

const (
	ActivityConnectionCreated ActivityType = "connection_created"
	ActivityConnectionUpdated ActivityType = "connection_updated"
	ActivityConnectionDeleted ActivityType = "connection_deleted"
	ActivityDataSourceCreated ActivityType = "data_source_created"
	ActivityDataSourceDeleted ActivityType = "data_source_deleted"
	ActivityDataSync          ActivityType = "data_sync"
	ActivityPipelineCreated   ActivityType = "pipeline_created"
	ActivityPipelineUpdated   ActivityType = "pipeline_updated"
	ActivityPipelineDeleted   ActivityType = "pipeline_deleted"
	ActivityError             ActivityType = "error"
)

// Activity is an append-only audit record. Metadata references other
// entities by value only.
type Activity struct {
	ID          ActivityID
	UserID      string
	Type        ActivityType
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}

func (a *Activity) Clone() *Activity {
	if a == nil {
		return nil
	}
	copied := *a
	copied.Metadata = maps.Clone(a.Metadata)
	return &copied
}
