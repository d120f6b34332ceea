package interfaces

import (
	"context"

	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

// Adapter translates one provider's API and authentication into the
// uniform capability set. One instance serves one Connection.
type Adapter interface {
	// ListSources enumerates provider native addressable units
	ListSources(ctx context.Context) ([]model.ExternalSource, error)

	// FetchRaw reads one source from the provider
	FetchRaw(ctx context.Context, sourceID string) (model.RawData, error)

	// Normalize converts FetchRaw output into canonical data. It performs no I/O.
	Normalize(raw model.RawData) (model.CanonicalData, error)

	// ServiceInfo returns static metadata without a network call
	ServiceInfo() model.ServiceInfo
}

// AdapterFactory builds the adapter serving a connection's provider
type AdapterFactory interface {
	New(conn *model.Connection) (Adapter, error)

	// PrimaryKey returns the canonical key holding the content list of provider
	PrimaryKey(provider model.Provider) string
}
