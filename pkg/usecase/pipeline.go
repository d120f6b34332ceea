package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

// PipelineUseCase manages named groups of data sources. Pipelines are
// never executed.
type PipelineUseCase struct {
	repo       interfaces.Repository
	activities *activityRecorder
}

func NewPipelineUseCase(repo interfaces.Repository, activities *activityRecorder) *PipelineUseCase {
	return &PipelineUseCase{
		repo:       repo,
		activities: activities,
	}
}

// PipelineUpdate is a partial update. Nil fields are left untouched.
type PipelineUpdate struct {
	Name          *string
	Description   *string
	DataSourceIDs []model.DataSourceID
	Config        map[string]any
}

func (uc *PipelineUseCase) Create(ctx context.Context, pipeline *model.Pipeline) (*model.Pipeline, error) {
	if pipeline == nil {
		return nil, goerr.Wrap(model.ErrValidation, "pipeline is required")
	}
	if err := pipeline.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid pipeline")
	}
	if err := uc.checkDataSources(ctx, pipeline.DataSourceIDs); err != nil {
		return nil, err
	}

	created, err := uc.repo.Pipeline().Create(ctx, pipeline)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create pipeline", goerr.V(model.OwnerIDKey, pipeline.OwnerID))
	}

	uc.activities.record(ctx, created.OwnerID, model.ActivityPipelineCreated,
		fmt.Sprintf("Created pipeline %q", created.Name),
		map[string]any{"pipeline_id": int64(created.ID)})

	return created, nil
}

func (uc *PipelineUseCase) Get(ctx context.Context, id model.PipelineID) (*model.Pipeline, error) {
	pipeline, err := uc.repo.Pipeline().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get pipeline", goerr.V(model.PipelineIDKey, id))
	}
	return pipeline, nil
}

func (uc *PipelineUseCase) List(ctx context.Context, ownerID string) ([]*model.Pipeline, error) {
	if ownerID == "" {
		return nil, goerr.Wrap(model.ErrValidation, "owner ID is required")
	}

	pipelines, err := uc.repo.Pipeline().List(ctx, ownerID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list pipelines", goerr.V(model.OwnerIDKey, ownerID))
	}
	return pipelines, nil
}

func (uc *PipelineUseCase) Update(ctx context.Context, id model.PipelineID, update *PipelineUpdate) (*model.Pipeline, error) {
	if update == nil {
		return nil, goerr.Wrap(model.ErrValidation, "update is required")
	}

	pipeline, err := uc.repo.Pipeline().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get pipeline", goerr.V(model.PipelineIDKey, id))
	}

	if update.Name != nil {
		pipeline.Name = *update.Name
	}
	if update.Description != nil {
		pipeline.Description = *update.Description
	}
	if update.DataSourceIDs != nil {
		if err := uc.checkDataSources(ctx, update.DataSourceIDs); err != nil {
			return nil, err
		}
		pipeline.DataSourceIDs = update.DataSourceIDs
	}
	if update.Config != nil {
		pipeline.Config = update.Config
	}
	if err := pipeline.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid pipeline update", goerr.V(model.PipelineIDKey, id))
	}

	updated, err := uc.repo.Pipeline().Update(ctx, pipeline)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update pipeline", goerr.V(model.PipelineIDKey, id))
	}

	uc.activities.record(ctx, updated.OwnerID, model.ActivityPipelineUpdated,
		fmt.Sprintf("Updated pipeline %q", updated.Name),
		map[string]any{"pipeline_id": int64(updated.ID)})

	return updated, nil
}

func (uc *PipelineUseCase) Delete(ctx context.Context, id model.PipelineID) error {
	pipeline, err := uc.repo.Pipeline().Get(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to get pipeline", goerr.V(model.PipelineIDKey, id))
	}

	if err := uc.repo.Pipeline().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete pipeline", goerr.V(model.PipelineIDKey, id))
	}

	uc.activities.record(ctx, pipeline.OwnerID, model.ActivityPipelineDeleted,
		fmt.Sprintf("Deleted pipeline %q", pipeline.Name),
		map[string]any{"pipeline_id": int64(pipeline.ID)})

	return nil
}

// checkDataSources fails with ErrNotFound when any id does not exist
func (uc *PipelineUseCase) checkDataSources(ctx context.Context, ids []model.DataSourceID) error {
	for _, id := range ids {
		if _, err := uc.repo.DataSource().Get(ctx, id); err != nil {
			return goerr.Wrap(err, "pipeline references unknown data source", goerr.V(model.DataSourceIDKey, id))
		}
	}
	return nil
}
