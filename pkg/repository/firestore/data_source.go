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

type dataSourceDocument struct {
	ID           int64          `firestore:"id"`
	ConnectionID int64          `firestore:"connection_id"`
	Name         string         `firestore:"name"`
	SourceType   string         `firestore:"source_type"`
	SourceID     string         `firestore:"source_id"`
	Config       map[string]any `firestore:"config,omitempty"`
	CreatedAt    time.Time      `firestore:"created_at"`
}

type dataSourceRepository struct {
	client *firestore.Client
	col    *collections
}

func (r *dataSourceRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.col.name(CollectionDataSources))
}

func dataSourceToDocument(ds *model.DataSource) *dataSourceDocument {
	return &dataSourceDocument{
		ID:           int64(ds.ID),
		ConnectionID: int64(ds.ConnectionID),
		Name:         ds.Name,
		SourceType:   ds.SourceType,
		SourceID:     ds.SourceID,
		Config:       ds.Config,
		CreatedAt:    ds.CreatedAt,
	}
}

func dataSourceToModel(doc *dataSourceDocument) *model.DataSource {
	return &model.DataSource{
		ID:           model.DataSourceID(doc.ID),
		ConnectionID: model.ConnectionID(doc.ConnectionID),
		Name:         doc.Name,
		SourceType:   doc.SourceType,
		SourceID:     doc.SourceID,
		Config:       doc.Config,
		CreatedAt:    doc.CreatedAt,
	}
}

// Create checks the parent connection inside the same transaction that
// allocates the ID, so a concurrent connection Delete either sees the new
// document or makes Create fail.
func (r *dataSourceRepository) Create(ctx context.Context, ds *model.DataSource) (*model.DataSource, error) {
	created := ds.Clone()
	created.CreatedAt = time.Now().UTC()

	connRef := r.client.Collection(r.col.name(CollectionConnections)).Doc(docID(int64(ds.ConnectionID)))
	counterRef := r.client.Collection(r.col.name(collectionCounters)).Doc("data_source_counter")

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(connRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "connection not found", goerr.V(model.ConnectionIDKey, ds.ConnectionID))
			}
			return goerr.Wrap(err, "failed to get connection", goerr.V(model.ConnectionIDKey, ds.ConnectionID))
		}

		id, err := allocateID(tx, counterRef)
		if err != nil {
			return err
		}
		created.ID = model.DataSourceID(id)

		return tx.Create(r.collection().Doc(docID(id)), dataSourceToDocument(created))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create data source")
	}

	return created.Clone(), nil
}

func (r *dataSourceRepository) Get(ctx context.Context, id model.DataSourceID) (*model.DataSource, error) {
	snap, err := r.collection().Doc(docID(int64(id))).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "data source not found", goerr.V(model.DataSourceIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get data source", goerr.V(model.DataSourceIDKey, id))
	}

	var doc dataSourceDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal data source", goerr.V(model.DataSourceIDKey, id))
	}
	return dataSourceToModel(&doc), nil
}

func (r *dataSourceRepository) ListByConnection(ctx context.Context, connID model.ConnectionID) ([]*model.DataSource, error) {
	iter := r.collection().
		Where("connection_id", "==", int64(connID)).
		OrderBy("id", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.DataSource, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate data sources", goerr.V(model.ConnectionIDKey, connID))
		}

		var doc dataSourceDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal data source")
		}
		result = append(result, dataSourceToModel(&doc))
	}

	return result, nil
}

func (r *dataSourceRepository) Delete(ctx context.Context, id model.DataSourceID) error {
	ref := r.collection().Doc(docID(int64(id)))

	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "data source not found", goerr.V(model.DataSourceIDKey, id))
		}
		return goerr.Wrap(err, "failed to get data source", goerr.V(model.DataSourceIDKey, id))
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete data source", goerr.V(model.DataSourceIDKey, id))
	}
	return nil
}
