package firestore

import (
	"context"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = model.ErrNotFound

type Firestore struct {
	client     *firestore.Client
	collection *collections
	connection *connectionRepository
	dataSource *dataSourceRepository
	activity   *activityRepository
	pipeline   *pipelineRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix isolates every collection under prefix, used by tests
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collection.prefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	cols := &collections{}
	f := &Firestore{
		client:     client,
		collection: cols,
		connection: &connectionRepository{client: client, col: cols},
		dataSource: &dataSourceRepository{client: client, col: cols},
		activity:   &activityRepository{client: client, col: cols},
		pipeline:   &pipelineRepository{client: client, col: cols},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Connection() interfaces.ConnectionRepository {
	return f.connection
}

func (f *Firestore) DataSource() interfaces.DataSourceRepository {
	return f.dataSource
}

func (f *Firestore) Activity() interfaces.ActivityRepository {
	return f.activity
}

func (f *Firestore) Pipeline() interfaces.PipelineRepository {
	return f.pipeline
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// Collection names, shared with the index migration
const (
	CollectionConnections = "connections"
	CollectionDataSources = "data_sources"
	CollectionActivities  = "activities"
	CollectionPipelines   = "pipelines"
	collectionCounters    = "counters"
)

type collections struct {
	prefix string
}

func (c *collections) name(base string) string {
	if c.prefix != "" {
		return c.prefix + "_" + base
	}
	return base
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// allocateID increments the named counter inside tx. It reads before it
// writes, so callers must issue every other read of tx first.
func allocateID(tx *firestore.Transaction, counterRef *firestore.DocumentRef) (int64, error) {
	var nextID int64

	doc, err := tx.Get(counterRef)
	if err != nil {
		if status.Code(err) != codes.NotFound {
			return 0, goerr.Wrap(err, "failed to get counter")
		}
		nextID = 1
	} else {
		currentValue, err := doc.DataAt("value")
		if err != nil {
			return 0, goerr.Wrap(err, "failed to get counter value")
		}
		val, ok := currentValue.(int64)
		if !ok {
			return 0, goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextID = val + 1
	}

	if err := tx.Set(counterRef, map[string]any{"value": nextID}); err != nil {
		return 0, goerr.Wrap(err, "failed to update counter")
	}
	return nextID, nil
}
