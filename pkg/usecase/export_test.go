package usecase

import (
	"time"

	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
)

type ConnectionCache = connectionCache

// NewConnectionCache is exported for testing
func NewConnectionCache(repo interfaces.ConnectionRepository, ttl time.Duration, now func() time.Time) *ConnectionCache {
	return newConnectionCache(repo, ttl, now)
}
