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

type connectionRepository struct {
	mu          sync.RWMutex
	connections map[model.ConnectionID]*model.Connection
	nextID      model.ConnectionID

	// set by New; Delete cascades into it
	dataSources *dataSourceRepository
}

func newConnectionRepository() *connectionRepository {
	return &connectionRepository{
		connections: make(map[model.ConnectionID]*model.Connection),
		nextID:      1,
	}
}

func (r *connectionRepository) Create(ctx context.Context, conn *model.Connection) (*model.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := conn.Clone()
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.connections[created.ID] = created
	return created.Clone(), nil
}

func (r *connectionRepository) Get(ctx context.Context, id model.ConnectionID) (*model.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, exists := r.connections[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "connection not found", goerr.V(model.ConnectionIDKey, id))
	}

	return conn.Clone(), nil
}

func (r *connectionRepository) exists(id model.ConnectionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.connections[id]
	return ok
}

func (r *connectionRepository) List(ctx context.Context, ownerID string) ([]*model.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*model.Connection, 0)
	for _, conn := range r.connections {
		if conn.OwnerID == ownerID {
			conns = append(conns, conn.Clone())
		}
	}

	slices.SortFunc(conns, func(a, b *model.Connection) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return conns, nil
}

func (r *connectionRepository) Update(ctx context.Context, conn *model.Connection) (*model.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.connections[conn.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "connection not found", goerr.V(model.ConnectionIDKey, conn.ID))
	}

	updated := conn.Clone()
	updated.Provider = existing.Provider
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	updated.LastSyncedAt = existing.LastSyncedAt
	updated.UpdatedAt = time.Now().UTC()

	r.connections[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *connectionRepository) Delete(ctx context.Context, id model.ConnectionID) error {
	r.mu.Lock()
	if _, exists := r.connections[id]; !exists {
		r.mu.Unlock()
		return goerr.Wrap(ErrNotFound, "connection not found", goerr.V(model.ConnectionIDKey, id))
	}
	delete(r.connections, id)
	r.mu.Unlock()

	// The connection is gone before the sweep starts, so a concurrent
	// DataSource Create either fails or is swept.
	if r.dataSources != nil {
		r.dataSources.deleteByConnection(id)
	}
	return nil
}

func (r *connectionRepository) TouchSynced(ctx context.Context, id model.ConnectionID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.connections[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "connection not found", goerr.V(model.ConnectionIDKey, id))
	}

	if conn.LastSyncedAt != nil && !at.After(*conn.LastSyncedAt) {
		return nil
	}
	synced := at.UTC()
	conn.LastSyncedAt = &synced
	return nil
}
