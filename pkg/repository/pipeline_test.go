package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

func runPipelineRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("CRUD", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		owner := uniqueOwner(t)

		created, err := repo.Pipeline().Create(ctx, &model.Pipeline{
			OwnerID:       owner,
			Name:          "weekly digest",
			DataSourceIDs: []model.DataSourceID{1, 2},
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, created.ID > 0).True()

		list, err := repo.Pipeline().List(ctx, owner)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
		gt.Array(t, list[0].DataSourceIDs).Length(2)

		created.Name = "daily digest"
		updated, err := repo.Pipeline().Update(ctx, created)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Name).Equal("daily digest")

		gt.NoError(t, repo.Pipeline().Delete(ctx, created.ID)).Required()
		_, err = repo.Pipeline().Get(ctx, created.ID)
		gt.Error(t, err).Is(model.ErrNotFound)
	})
}

func TestPipelineRepository_Memory(t *testing.T) {
	runPipelineRepositoryTest(t, newMemoryRepository)
}

func TestPipelineRepository_Firestore(t *testing.T) {
	runPipelineRepositoryTest(t, newFirestoreRepository)
}
