package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type activityDocument struct {
	ID          string         `firestore:"id"`
	UserID      string         `firestore:"user_id"`
	Type        string         `firestore:"type"`
	Description string         `firestore:"description"`
	Metadata    map[string]any `firestore:"metadata,omitempty"`
	CreatedAt   time.Time      `firestore:"created_at"`
}

type activityRepository struct {
	client *firestore.Client
	col    *collections
}

func (r *activityRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.col.name(CollectionActivities))
}

func (r *activityRepository) Append(ctx context.Context, activity *model.Activity) error {
	doc := &activityDocument{
		ID:          string(activity.ID),
		UserID:      activity.UserID,
		Type:        string(activity.Type),
		Description: activity.Description,
		Metadata:    activity.Metadata,
		CreatedAt:   activity.CreatedAt,
	}
	if doc.ID == "" {
		doc.ID = string(model.NewActivityID())
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	// Create fails on an existing ID, so records are never overwritten
	if _, err := r.collection().Doc(doc.ID).Create(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to append activity", goerr.V("id", doc.ID))
	}
	return nil
}

func (r *activityRepository) List(ctx context.Context, userID string, limit int) ([]*model.Activity, error) {
	q := r.collection().
		Where("user_id", "==", userID).
		OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	result := make([]*model.Activity, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate activities", goerr.V("user_id", userID))
		}

		var doc activityDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal activity")
		}
		result = append(result, &model.Activity{
			ID:          model.ActivityID(doc.ID),
			UserID:      doc.UserID,
			Type:        model.ActivityType(doc.Type),
			Description: doc.Description,
			Metadata:    doc.Metadata,
			CreatedAt:   doc.CreatedAt,
		})
	}

	return result, nil
}
