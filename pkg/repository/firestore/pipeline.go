package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type pipelineDocument struct {
	ID            int64          `firestore:"id"`
	OwnerID       string         `firestore:"owner_id"`
	Name          string         `firestore:"name"`
	Description   string         `firestore:"description"`
	DataSourceIDs []int64        `firestore:"data_source_ids"`
	Config        map[string]any `firestore:"config,omitempty"`
	CreatedAt     time.Time      `firestore:"created_at"`
	UpdatedAt     time.Time      `firestore:"updated_at"`
}

type pipelineRepository struct {
	client *firestore.Client
	col    *collections
}

func (r *pipelineRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.col.name(CollectionPipelines))
}

func pipelineToDocument(p *model.Pipeline) *pipelineDocument {
	ids := make([]int64, len(p.DataSourceIDs))
	for i, id := range p.DataSourceIDs {
		ids[i] = int64(id)
	}
	return &pipelineDocument{
		ID:            int64(p.ID),
		OwnerID:       p.OwnerID,
		Name:          p.Name,
		Description:   p.Description,
		DataSourceIDs: ids,
		Config:        p.Config,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func pipelineToModel(doc *pipelineDocument) *model.Pipeline {
	ids := make([]model.DataSourceID, len(doc.DataSourceIDs))
	for i, id := range doc.DataSourceIDs {
		ids[i] = model.DataSourceID(id)
	}
	return &model.Pipeline{
		ID:            model.PipelineID(doc.ID),
		OwnerID:       doc.OwnerID,
		Name:          doc.Name,
		Description:   doc.Description,
		DataSourceIDs: ids,
		Config:        doc.Config,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

func (r *pipelineRepository) Create(ctx context.Context, pipeline *model.Pipeline) (*model.Pipeline, error) {
	now := time.Now().UTC()
	created := pipeline.Clone()
	created.CreatedAt = now
	created.UpdatedAt = now

	counterRef := r.client.Collection(r.col.name(collectionCounters)).Doc("pipeline_counter")
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		id, err := allocateID(tx, counterRef)
		if err != nil {
			return err
		}
		created.ID = model.PipelineID(id)
		return tx.Create(r.collection().Doc(docID(id)), pipelineToDocument(created))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create pipeline")
	}

	return created.Clone(), nil
}

func (r *pipelineRepository) Get(ctx context.Context, id model.PipelineID) (*model.Pipeline, error) {
	snap, err := r.collection().Doc(docID(int64(id))).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "pipeline not found", goerr.V(model.PipelineIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get pipeline", goerr.V(model.PipelineIDKey, id))
	}

	var doc pipelineDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal pipeline", goerr.V(model.PipelineIDKey, id))
	}
	return pipelineToModel(&doc), nil
}

func (r *pipelineRepository) List(ctx context.Context, ownerID string) ([]*model.Pipeline, error) {
	iter := r.collection().
		Where("owner_id", "==", ownerID).
		OrderBy("id", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.Pipeline, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate pipelines", goerr.V(model.OwnerIDKey, ownerID))
		}

		var doc pipelineDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal pipeline")
		}
		result = append(result, pipelineToModel(&doc))
	}
	return result, nil
}

func (r *pipelineRepository) Update(ctx context.Context, pipeline *model.Pipeline) (*model.Pipeline, error) {
	ref := r.collection().Doc(docID(int64(pipeline.ID)))

	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "pipeline not found", goerr.V(model.PipelineIDKey, pipeline.ID))
		}
		return nil, goerr.Wrap(err, "failed to get pipeline", goerr.V(model.PipelineIDKey, pipeline.ID))
	}

	var existing pipelineDocument
	if err := snap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal pipeline", goerr.V(model.PipelineIDKey, pipeline.ID))
	}

	updated := pipeline.Clone()
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := ref.Set(ctx, pipelineToDocument(updated)); err != nil {
		return nil, goerr.Wrap(err, "failed to update pipeline", goerr.V(model.PipelineIDKey, pipeline.ID))
	}
	return updated, nil
}

func (r *pipelineRepository) Delete(ctx context.Context, id model.PipelineID) error {
	ref := r.collection().Doc(docID(int64(id)))

	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "pipeline not found", goerr.V(model.PipelineIDKey, id))
		}
		return goerr.Wrap(err, "failed to get pipeline", goerr.V(model.PipelineIDKey, id))
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete pipeline", goerr.V(model.PipelineIDKey, id))
	}
	return nil
}
