package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/repository/memory"
	"github.com/secmon-lab/polyconn/pkg/usecase"
)

func TestDataSource(t *testing.T) {
	ctx := context.Background()

	t.Run("create and list", func(t *testing.T) {
		uc := usecase.New(memory.New())
		conn, err := uc.Connection.Create(ctx, newSlackConnection("1"))
		gt.NoError(t, err).Required()

		created, err := uc.DataSource.Create(ctx, &model.DataSource{
			ConnectionID: conn.ID,
			Name:         "general",
			SourceType:   "channel",
			SourceID:     "C100",
			Config:       map[string]any{"limit": 10},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).NotEqual(model.DataSourceID(0))

		sources, err := uc.DataSource.List(ctx, conn.ID)
		gt.NoError(t, err).Required()
		gt.A(t, sources).Length(1)
		gt.Value(t, sources[0].SourceID).Equal("C100")

		activities, err := uc.Activity.List(ctx, "1", 1)
		gt.NoError(t, err).Required()
		gt.Value(t, activities[0].Type).Equal(model.ActivityDataSourceCreated)
	})

	t.Run("create against a missing connection", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.DataSource.Create(ctx, &model.DataSource{
			ConnectionID: 7,
			Name:         "general",
			SourceID:     "C100",
		})
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("create without source id", func(t *testing.T) {
		uc := usecase.New(memory.New())
		conn, err := uc.Connection.Create(ctx, newSlackConnection("1"))
		gt.NoError(t, err).Required()

		_, err = uc.DataSource.Create(ctx, &model.DataSource{ConnectionID: conn.ID, Name: "general"})
		gt.Error(t, err).Is(model.ErrValidation)
	})

	t.Run("list of a missing connection", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.DataSource.List(ctx, 7)
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("delete checks ownership", func(t *testing.T) {
		uc := usecase.New(memory.New())
		a, err := uc.Connection.Create(ctx, newSlackConnection("1"))
		gt.NoError(t, err).Required()
		b, err := uc.Connection.Create(ctx, newSlackConnection("1"))
		gt.NoError(t, err).Required()

		ds, err := uc.DataSource.Create(ctx, &model.DataSource{
			ConnectionID: a.ID,
			Name:         "general",
			SourceID:     "C100",
		})
		gt.NoError(t, err).Required()

		gt.Error(t, uc.DataSource.Delete(ctx, b.ID, ds.ID)).Is(model.ErrNotFound)
		gt.NoError(t, uc.DataSource.Delete(ctx, a.ID, ds.ID)).Required()

		sources, err := uc.DataSource.List(ctx, a.ID)
		gt.NoError(t, err).Required()
		gt.A(t, sources).Length(0)

		activities, err := uc.Activity.List(ctx, "1", 1)
		gt.NoError(t, err).Required()
		gt.Value(t, activities[0].Type).Equal(model.ActivityDataSourceDeleted)
	})

	t.Run("discover lists provider sources", func(t *testing.T) {
		mock := &mockAdapter{provider: model.ProviderSlack}
		uc := usecase.New(memory.New(), usecase.WithAdapterFactory(mockFactory(mock)))
		conn, err := uc.Connection.Create(ctx, newSlackConnection("1"))
		gt.NoError(t, err).Required()

		sources, err := uc.DataSource.Discover(ctx, conn.ID)
		gt.NoError(t, err).Required()
		gt.A(t, sources).Length(2)
		gt.Value(t, sources[1].Name).Equal("random")
	})
}
