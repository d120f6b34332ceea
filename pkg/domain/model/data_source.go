package model

import (
	"maps"
	"time"
)

// DataSourceID is a monotonic identifier assigned by the store
type DataSourceID int64

// Generic fallback used when no provider specific source can be resolved
const (
	FallbackSourceType = "workspace"
	FallbackSourceID   = "default"
)

// DataSource is one addressable unit of data inside a Connection
type DataSource struct {
	ID           DataSourceID
	ConnectionID ConnectionID
	Name         string
	SourceType   string
	SourceID     string
	Config       map[string]any
	CreatedAt    time.Time
}

// Validate checks the fields required before the data source is stored
func (d *DataSource) Validate() error {
	if d.ConnectionID == 0 {
		return newValidationError("connection ID is required")
	}
	if d.SourceID == "" {
		return newValidationError("source ID is required")
	}
	if d.Name == "" {
		return newValidationError("name is required")
	}
	return nil
}

func (d *DataSource) Clone() *DataSource {
	if d == nil {
		return nil
	}
	copied := *d
	copied.Config = maps.Clone(d.Config)
	return &copied
}

// NewFallbackDataSource builds the generic data source used when provisioning cannot resolve a real one
func NewFallbackDataSource(connID ConnectionID, provider Provider) *DataSource {
	return &DataSource{
		ConnectionID: connID,
		Name:         string(provider) + " workspace",
		SourceType:   FallbackSourceType,
		SourceID:     FallbackSourceID,
		Config:       map[string]any{"fallback": true},
	}
}

// ExternalSource is a provider native addressable unit returned by an adapter
type ExternalSource struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
