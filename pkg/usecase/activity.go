package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/utils/errutil"
)

type ActivityUseCase struct {
	repo interfaces.Repository
}

func NewActivityUseCase(repo interfaces.Repository) *ActivityUseCase {
	return &ActivityUseCase{repo: repo}
}

// List returns activities of userID, newest first
func (uc *ActivityUseCase) List(ctx context.Context, userID string, limit int) ([]*model.Activity, error) {
	if userID == "" {
		return nil, goerr.Wrap(model.ErrValidation, "user ID is required")
	}
	if limit < 0 {
		return nil, goerr.Wrap(model.ErrValidation, "limit must not be negative", goerr.V("limit", limit))
	}

	activities, err := uc.repo.Activity().List(ctx, userID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list activities", goerr.V(model.OwnerIDKey, userID))
	}
	return activities, nil
}

// activityRecorder appends audit records. A failed append is logged and
// never fails the operation being recorded.
type activityRecorder struct {
	repo interfaces.ActivityRepository
	now  func() time.Time
}

func newActivityRecorder(repo interfaces.ActivityRepository, now func() time.Time) *activityRecorder {
	return &activityRecorder{repo: repo, now: now}
}

func (r *activityRecorder) record(ctx context.Context, userID string, typ model.ActivityType, description string, metadata map[string]any) {
	activity := &model.Activity{
		ID:          model.NewActivityID(),
		UserID:      userID,
		Type:        typ,
		Description: description,
		Metadata:    metadata,
		CreatedAt:   r.now().UTC(),
	}

	if err := r.repo.Append(ctx, activity); err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to append activity",
			goerr.V("type", typ),
			goerr.V(model.OwnerIDKey, userID)), "activity not recorded")
	}
}
