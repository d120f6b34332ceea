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

type connectionDocument struct {
	ID           int64          `firestore:"id"`
	OwnerID      string         `firestore:"owner_id"`
	Provider     string         `firestore:"provider"`
	DisplayName  string         `firestore:"display_name"`
	Active       bool           `firestore:"active"`
	Credentials  map[string]any `firestore:"credentials"`
	CreatedAt    time.Time      `firestore:"created_at"`
	UpdatedAt    time.Time      `firestore:"updated_at"`
	LastSyncedAt *time.Time     `firestore:"last_synced_at"`
}

type connectionRepository struct {
	client *firestore.Client
	col    *collections
}

func (r *connectionRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.col.name(CollectionConnections))
}

func (r *connectionRepository) counterRef() *firestore.DocumentRef {
	return r.client.Collection(r.col.name(collectionCounters)).Doc("connection_counter")
}

func connectionToDocument(conn *model.Connection) (*connectionDocument, error) {
	creds, err := model.CredentialsToMap(conn.Credentials)
	if err != nil {
		return nil, err
	}
	return &connectionDocument{
		ID:           int64(conn.ID),
		OwnerID:      conn.OwnerID,
		Provider:     string(conn.Provider),
		DisplayName:  conn.DisplayName,
		Active:       conn.Active,
		Credentials:  creds,
		CreatedAt:    conn.CreatedAt,
		UpdatedAt:    conn.UpdatedAt,
		LastSyncedAt: conn.LastSyncedAt,
	}, nil
}

func connectionToModel(doc *connectionDocument) (*model.Connection, error) {
	provider := model.Provider(doc.Provider)
	creds, err := model.CredentialsFromMap(provider, doc.Credentials)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode stored credentials", goerr.V(model.ConnectionIDKey, doc.ID))
	}
	return &model.Connection{
		ID:           model.ConnectionID(doc.ID),
		OwnerID:      doc.OwnerID,
		Provider:     provider,
		DisplayName:  doc.DisplayName,
		Active:       doc.Active,
		Credentials:  creds,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
		LastSyncedAt: doc.LastSyncedAt,
	}, nil
}

func (r *connectionRepository) Create(ctx context.Context, conn *model.Connection) (*model.Connection, error) {
	now := time.Now().UTC()
	created := conn.Clone()
	created.CreatedAt = now
	created.UpdatedAt = now

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		id, err := allocateID(tx, r.counterRef())
		if err != nil {
			return err
		}
		created.ID = model.ConnectionID(id)

		doc, err := connectionToDocument(created)
		if err != nil {
			return err
		}
		return tx.Create(r.collection().Doc(docID(id)), doc)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create connection")
	}

	return created.Clone(), nil
}

func (r *connectionRepository) Get(ctx context.Context, id model.ConnectionID) (*model.Connection, error) {
	snap, err := r.collection().Doc(docID(int64(id))).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "connection not found", goerr.V(model.ConnectionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get connection", goerr.V(model.ConnectionIDKey, id))
	}

	var doc connectionDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal connection", goerr.V(model.ConnectionIDKey, id))
	}
	return connectionToModel(&doc)
}

func (r *connectionRepository) List(ctx context.Context, ownerID string) ([]*model.Connection, error) {
	iter := r.collection().
		Where("owner_id", "==", ownerID).
		OrderBy("id", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	conns := make([]*model.Connection, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate connections", goerr.V(model.OwnerIDKey, ownerID))
		}

		var doc connectionDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal connection")
		}
		conn, err := connectionToModel(&doc)
		if err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}

	return conns, nil
}

func (r *connectionRepository) Update(ctx context.Context, conn *model.Connection) (*model.Connection, error) {
	var updated *model.Connection
	ref := r.collection().Doc(docID(int64(conn.ID)))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "connection not found", goerr.V(model.ConnectionIDKey, conn.ID))
			}
			return goerr.Wrap(err, "failed to get connection", goerr.V(model.ConnectionIDKey, conn.ID))
		}

		var existing connectionDocument
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal connection", goerr.V(model.ConnectionIDKey, conn.ID))
		}

		updated = conn.Clone()
		updated.OwnerID = existing.OwnerID
		updated.Provider = model.Provider(existing.Provider)
		updated.CreatedAt = existing.CreatedAt
		updated.LastSyncedAt = existing.LastSyncedAt
		updated.UpdatedAt = time.Now().UTC()

		doc, err := connectionToDocument(updated)
		if err != nil {
			return err
		}
		return tx.Set(ref, doc)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update connection", goerr.V(model.ConnectionIDKey, conn.ID))
	}

	return updated, nil
}

// Delete removes the connection and its data sources in one transaction
func (r *connectionRepository) Delete(ctx context.Context, id model.ConnectionID) error {
	ref := r.collection().Doc(docID(int64(id)))
	dsQuery := r.client.Collection(r.col.name(CollectionDataSources)).Where("connection_id", "==", int64(id))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "connection not found", goerr.V(model.ConnectionIDKey, id))
			}
			return goerr.Wrap(err, "failed to get connection", goerr.V(model.ConnectionIDKey, id))
		}

		children, err := tx.Documents(dsQuery).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to list data sources", goerr.V(model.ConnectionIDKey, id))
		}

		for _, child := range children {
			if err := tx.Delete(child.Ref); err != nil {
				return goerr.Wrap(err, "failed to delete data source", goerr.V("ref", child.Ref.ID))
			}
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete connection", goerr.V(model.ConnectionIDKey, id))
	}
	return nil
}

func (r *connectionRepository) TouchSynced(ctx context.Context, id model.ConnectionID, at time.Time) error {
	ref := r.collection().Doc(docID(int64(id)))
	at = at.UTC()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "connection not found", goerr.V(model.ConnectionIDKey, id))
			}
			return goerr.Wrap(err, "failed to get connection", goerr.V(model.ConnectionIDKey, id))
		}

		var doc connectionDocument
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to unmarshal connection", goerr.V(model.ConnectionIDKey, id))
		}
		if doc.LastSyncedAt != nil && !at.After(*doc.LastSyncedAt) {
			return nil
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "last_synced_at", Value: at},
		})
	})
	if err != nil {
		return goerr.Wrap(err, "failed to touch connection", goerr.V(model.ConnectionIDKey, id))
	}
	return nil
}
