package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

func runDataSourceRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create requires a live connection", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.DataSource().Create(context.Background(), &model.DataSource{
			ConnectionID: 987654321,
			Name:         "orphan",
			SourceID:     "X",
		})
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("Create and Get round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		conn, err := repo.Connection().Create(ctx, newSlackConnection(uniqueOwner(t)))
		gt.NoError(t, err).Required()

		created, err := repo.DataSource().Create(ctx, &model.DataSource{
			ConnectionID: conn.ID,
			Name:         "general",
			SourceType:   "channel",
			SourceID:     "C001",
			Config:       map[string]any{"limit": "50"},
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, created.ID > 0).True()

		got, err := repo.DataSource().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("general")
		gt.Value(t, got.SourceID).Equal("C001")
		gt.Value(t, got.ConnectionID).Equal(conn.ID)
		gt.Value(t, got.Config["limit"]).Equal(any("50"))
	})

	t.Run("ListByConnection only returns children", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		owner := uniqueOwner(t)

		c1, err := repo.Connection().Create(ctx, newSlackConnection(owner))
		gt.NoError(t, err).Required()
		c2, err := repo.Connection().Create(ctx, newSlackConnection(owner))
		gt.NoError(t, err).Required()

		_, err = repo.DataSource().Create(ctx, &model.DataSource{ConnectionID: c1.ID, Name: "a", SourceID: "A"})
		gt.NoError(t, err).Required()
		_, err = repo.DataSource().Create(ctx, &model.DataSource{ConnectionID: c2.ID, Name: "b", SourceID: "B"})
		gt.NoError(t, err).Required()

		sources, err := repo.DataSource().ListByConnection(ctx, c1.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, sources).Length(1)
		gt.Value(t, sources[0].SourceID).Equal("A")
	})

	t.Run("Delete removes a single data source", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		conn, err := repo.Connection().Create(ctx, newSlackConnection(uniqueOwner(t)))
		gt.NoError(t, err).Required()
		ds, err := repo.DataSource().Create(ctx, &model.DataSource{ConnectionID: conn.ID, Name: "a", SourceID: "A"})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.DataSource().Delete(ctx, ds.ID)).Required()
		_, err = repo.DataSource().Get(ctx, ds.ID)
		gt.Error(t, err).Is(model.ErrNotFound)

		gt.Error(t, repo.DataSource().Delete(ctx, ds.ID)).Is(model.ErrNotFound)
	})
}

func TestDataSourceRepository_Memory(t *testing.T) {
	runDataSourceRepositoryTest(t, newMemoryRepository)
}

func TestDataSourceRepository_Firestore(t *testing.T) {
	runDataSourceRepositoryTest(t, newFirestoreRepository)
}
