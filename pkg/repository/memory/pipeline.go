package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

type pipelineRepository struct {
	mu        sync.RWMutex
	pipelines map[model.PipelineID]*model.Pipeline
	nextID    model.PipelineID
}

func newPipelineRepository() *pipelineRepository {
	return &pipelineRepository{
		pipelines: make(map[model.PipelineID]*model.Pipeline),
		nextID:    1,
	}
}

func (r *pipelineRepository) Create(ctx context.Context, pipeline *model.Pipeline) (*model.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := pipeline.Clone()
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.pipelines[created.ID] = created
	return created.Clone(), nil
}

func (r *pipelineRepository) Get(ctx context.Context, id model.PipelineID) (*model.Pipeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.pipelines[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "pipeline not found", goerr.V(model.PipelineIDKey, id))
	}
	return p.Clone(), nil
}

func (r *pipelineRepository) List(ctx context.Context, ownerID string) ([]*model.Pipeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Pipeline, 0)
	for _, p := range r.pipelines {
		if p.OwnerID == ownerID {
			result = append(result, p.Clone())
		}
	}
	slices.SortFunc(result, func(a, b *model.Pipeline) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (r *pipelineRepository) Update(ctx context.Context, pipeline *model.Pipeline) (*model.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.pipelines[pipeline.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "pipeline not found", goerr.V(model.PipelineIDKey, pipeline.ID))
	}

	updated := pipeline.Clone()
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.pipelines[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *pipelineRepository) Delete(ctx context.Context, id model.PipelineID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pipelines[id]; !exists {
		return goerr.Wrap(ErrNotFound, "pipeline not found", goerr.V(model.PipelineIDKey, id))
	}
	delete(r.pipelines, id)
	return nil
}
