package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

type dataSourceRepository struct {
	mu          sync.RWMutex
	dataSources map[model.DataSourceID]*model.DataSource
	nextID      model.DataSourceID
	connections *connectionRepository
}

func newDataSourceRepository(connections *connectionRepository) *dataSourceRepository {
	return &dataSourceRepository{
		dataSources: make(map[model.DataSourceID]*model.DataSource),
		nextID:      1,
		connections: connections,
	}
}

func (r *dataSourceRepository) Create(ctx context.Context, ds *model.DataSource) (*model.DataSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connections.exists(ds.ConnectionID) {
		return nil, goerr.Wrap(ErrNotFound, "connection not found", goerr.V(model.ConnectionIDKey, ds.ConnectionID))
	}

	created := ds.Clone()
	created.ID = r.nextID
	created.CreatedAt = time.Now().UTC()
	r.nextID++

	r.dataSources[created.ID] = created
	return created.Clone(), nil
}

func (r *dataSourceRepository) Get(ctx context.Context, id model.DataSourceID) (*model.DataSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, exists := r.dataSources[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "data source not found", goerr.V(model.DataSourceIDKey, id))
	}
	return ds.Clone(), nil
}

func (r *dataSourceRepository) ListByConnection(ctx context.Context, connID model.ConnectionID) ([]*model.DataSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.DataSource, 0)
	for _, ds := range r.dataSources {
		if ds.ConnectionID == connID {
			result = append(result, ds.Clone())
		}
	}

	slices.SortFunc(result, func(a, b *model.DataSource) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (r *dataSourceRepository) Delete(ctx context.Context, id model.DataSourceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.dataSources[id]; !exists {
		return goerr.Wrap(ErrNotFound, "data source not found", goerr.V(model.DataSourceIDKey, id))
	}
	delete(r.dataSources, id)
	return nil
}

func (r *dataSourceRepository) deleteByConnection(connID model.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, ds := range r.dataSources {
		if ds.ConnectionID == connID {
			delete(r.dataSources, id)
		}
	}
}
