package usecase

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"golang.org/x/sync/singleflight"
)

const (
	connectionCacheTTL = 60 * time.Second
)

type cachedConnections struct {
	connections []*model.Connection
	expiresAt   time.Time
}

// connectionCache keeps a short lived per-owner snapshot of the connection list
type connectionCache struct {
	repo  interfaces.ConnectionRepository
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu          sync.Mutex
	entries     map[string]*cachedConnections
	generations map[string]uint64
}

func newConnectionCache(repo interfaces.ConnectionRepository, ttl time.Duration, now func() time.Time) *connectionCache {
	return &connectionCache{
		repo:        repo,
		ttl:         ttl,
		now:         now,
		entries:     make(map[string]*cachedConnections),
		generations: make(map[string]uint64),
	}
}

func (c *connectionCache) lookup(ownerID string) ([]*model.Connection, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.generations[ownerID]
	cached, ok := c.entries[ownerID]
	if !ok {
		return nil, gen, false
	}
	if !c.now().Before(cached.expiresAt) {
		delete(c.entries, ownerID)
		return nil, gen, false
	}
	return cached.connections, gen, true
}

// store keeps conns only if no invalidation happened since gen was read
func (c *connectionCache) store(ownerID string, gen uint64, conns []*model.Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[ownerID] != gen {
		return
	}
	c.entries[ownerID] = &cachedConnections{
		connections: conns,
		expiresAt:   c.now().Add(c.ttl),
	}
}

// Get returns the connections of ownerID from the cache or the store
func (c *connectionCache) Get(ctx context.Context, ownerID string) ([]*model.Connection, error) {
	conns, gen, ok := c.lookup(ownerID)
	if ok {
		return cloneConnections(conns), nil
	}

	key := ownerID + "\x00" + strconv.FormatUint(gen, 10)

	v, err, _ := c.group.Do(key, func() (any, error) {
		conns, err := c.repo.List(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		c.store(ownerID, gen, conns)
		return conns, nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list connections", goerr.V(model.OwnerIDKey, ownerID))
	}

	return cloneConnections(v.([]*model.Connection)), nil
}

// Invalidate drops the snapshot of ownerID. Reads in flight are not stored.
func (c *connectionCache) Invalidate(ownerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, ownerID)
	c.generations[ownerID]++
}

func cloneConnections(conns []*model.Connection) []*model.Connection {
	result := make([]*model.Connection, len(conns))
	for i, conn := range conns {
		result[i] = conn.Clone()
	}
	return result
}
