package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

type activityRepository struct {
	mu         sync.RWMutex
	activities []*model.Activity
}

func newActivityRepository() *activityRepository {
	return &activityRepository{}
}

func (r *activityRepository) Append(ctx context.Context, activity *model.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appended := activity.Clone()
	if appended.ID == "" {
		appended.ID = model.NewActivityID()
	}
	if appended.CreatedAt.IsZero() {
		appended.CreatedAt = time.Now().UTC()
	}

	r.activities = append(r.activities, appended)
	return nil
}

func (r *activityRepository) List(ctx context.Context, userID string, limit int) ([]*model.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Activity, 0)
	// walk backwards so ties keep the latest append first
	for i := len(r.activities) - 1; i >= 0; i-- {
		if r.activities[i].UserID == userID {
			result = append(result, r.activities[i].Clone())
		}
	}

	slices.SortStableFunc(result, func(a, b *model.Activity) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
