package model

import (
	"maps"
	"slices"
	"time"
)

type PipelineID int64

// Pipeline groups data sources under a name. It carries no execution semantics.
type Pipeline struct {
	ID            PipelineID
	OwnerID       string
	Name          string
	Description   string
	DataSourceIDs []DataSourceID
	Config        map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Pipeline) Validate() error {
	if p.OwnerID == "" {
		return newValidationError("owner ID is required")
	}
	if p.Name == "" {
		return newValidationError("pipeline name is required")
	}
	return nil
}

func (p *Pipeline) Clone() *Pipeline {
	if p == nil {
		return nil
	}
	copied := *p
	copied.DataSourceIDs = slices.Clone(p.DataSourceIDs)
	copied.Config = maps.Clone(p.Config)
	return &copied
}
