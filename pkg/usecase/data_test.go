package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/repository/memory"
	"github.com/secmon-lab/polyconn/pkg/usecase"
)

func TestDataFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("success touches the connection and records a sync", func(t *testing.T) {
		clock := newFakeClock()
		mock := &mockAdapter{provider: model.ProviderSlack}
		uc := usecase.New(memory.New(),
			usecase.WithAdapterFactory(mockFactory(mock)),
			usecase.WithClock(clock.Now),
		)

		conn, err := uc.Connection.Create(ctx, newSlackConnection("1"))
		gt.NoError(t, err).Required()

		data, err := uc.Data.Fetch(ctx, conn.ID, "C100")
		gt.NoError(t, err).Required()
		info := data["channel_info"].(map[string]any)
		gt.Value(t, info["id"]).Equal("C100")

		got, err := uc.Connection.Get(ctx, conn.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.LastSyncedAt).NotNil()
		gt.Bool(t, got.LastSyncedAt.Equal(clock.Now())).True()

		listed, err := uc.Connection.List(ctx, "1")
		gt.NoError(t, err).Required()
		gt.Value(t, listed[0].LastSyncedAt).NotNil()

		activities, err := uc.Activity.List(ctx, "1", 1)
		gt.NoError(t, err).Required()
		gt.Value(t, activities[0].Type).Equal(model.ActivityDataSync)
		gt.Value(t, activities[0].Metadata["source_id"]).Equal("C100")
	})

	t.Run("an earlier sync does not move lastSyncedAt back", func(t *testing.T) {
		clock := newFakeClock()
		mock := &mockAdapter{provider: model.ProviderSlack}
		repo := memory.New()
		uc := usecase.New(repo,
			usecase.WithAdapterFactory(mockFactory(mock)),
			usecase.WithClock(clock.Now),
		)

		conn, err := uc.Connection.Create(ctx, newSlackConnection("1"))
		gt.NoError(t, err).Required()

		later := clock.Now().Add(time.Hour)
		gt.NoError(t, repo.Connection().TouchSynced(ctx, conn.ID, later)).Required()

		_, err = uc.Data.Fetch(ctx, conn.ID, "C100")
		gt.NoError(t, err).Required()

		got, err := uc.Connection.Get(ctx, conn.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.LastSyncedAt.Equal(later)).True()
	})

	t.Run("empty source uses the first data source", func(t *testing.T) {
		var fetched string
		mock := &mockAdapter{provider: model.ProviderSlack}
		mock.fetchRawFn = func(ctx context.Context, sourceID string) (model.RawData, error) {
			fetched = sourceID
			return &mockRaw{provider: model.ProviderSlack, sourceID: sourceID}, nil
		}
		uc := usecase.New(memory.New(), usecase.WithAdapterFactory(mockFactory(mock)))

		conn, err := uc.Connection.Create(ctx, newSlackConnection("1"))
		gt.NoError(t, err).Required()
		_, err = uc.DataSource.Create(ctx, &model.DataSource{
			ConnectionID: conn.ID,
			Name:         "random",
			SourceType:   "channel",
			SourceID:     "C200",
		})
		gt.NoError(t, err).Required()

		_, err = uc.Data.Fetch(ctx, conn.ID, "")
		gt.NoError(t, err).Required()
		gt.Value(t, fetched).Equal("C200")
	})

	t.Run("empty source without data sources", func(t *testing.T) {
		mock := &mockAdapter{provider: model.ProviderSlack}
		uc := usecase.New(memory.New(), usecase.WithAdapterFactory(mockFactory(mock)))

		conn, err := uc.Connection.Create(ctx, newSlackConnection("1"))
		gt.NoError(t, err).Required()

		_, err = uc.Data.Fetch(ctx, conn.ID, "")
		gt.Error(t, err).Is(model.ErrValidation)
		gt.Number(t, mock.fetches.Load()).Equal(0)
	})

	t.Run("inactive connection is rejected", func(t *testing.T) {
		mock := &mockAdapter{provider: model.ProviderSlack}
		uc := usecase.New(memory.New(), usecase.WithAdapterFactory(mockFactory(mock)))

		c := newSlackConnection("1")
		c.Active = false
		conn, err := uc.Connection.Create(ctx, c)
		gt.NoError(t, err).Required()

		_, err = uc.Data.Fetch(ctx, conn.ID, "C100")
		gt.Error(t, err).Is(model.ErrValidation)
		gt.Number(t, mock.fetches.Load()).Equal(0)
	})

	t.Run("missing connection", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.Data.Fetch(ctx, 99, "C100")
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("provider without adapter", func(t *testing.T) {
		uc := usecase.New(memory.New())
		conn, err := uc.Connection.Create(ctx, &model.Connection{
			OwnerID:     "1",
			Provider:    model.ProviderDiscord,
			DisplayName: "Discord",
			Active:      true,
			Credentials: model.DiscordCredentials{BotToken: "bot"},
		})
		gt.NoError(t, err).Required()

		_, err = uc.Data.Fetch(ctx, conn.ID, "guild")
		gt.Error(t, err).Is(model.ErrUnsupportedProvider)
	})

	t.Run("provider failure records an error activity", func(t *testing.T) {
		cause := errors.New("invalid_auth")
		mock := &mockAdapter{provider: model.ProviderSlack}
		mock.fetchRawFn = func(ctx context.Context, sourceID string) (model.RawData, error) {
			return nil, model.NewAuthError(model.ProviderSlack, "conversations.info", cause)
		}
		uc := usecase.New(memory.New(), usecase.WithAdapterFactory(mockFactory(mock)))

		conn, err := uc.Connection.Create(ctx, newSlackConnection("1"))
		gt.NoError(t, err).Required()

		_, err = uc.Data.Fetch(ctx, conn.ID, "C100")
		gt.Error(t, err).Is(model.ErrAuth)
		gt.Error(t, err).Is(cause)

		got, err := uc.Connection.Get(ctx, conn.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.LastSyncedAt).Nil()

		activities, err := uc.Activity.List(ctx, "1", 1)
		gt.NoError(t, err).Required()
		gt.Value(t, activities[0].Type).Equal(model.ActivityError)
		gt.Value(t, activities[0].Metadata["kind"]).Equal(model.KindAuth)
	})

	t.Run("malformed canonical data is an error", func(t *testing.T) {
		mock := &mockAdapter{provider: model.ProviderSlack}
		mock.normalizeFn = func(raw model.RawData) (model.CanonicalData, error) {
			return model.CanonicalData{"channel_info": map[string]any{"id": "C100"}}, nil
		}
		uc := usecase.New(memory.New(), usecase.WithAdapterFactory(mockFactory(mock)))

		conn, err := uc.Connection.Create(ctx, newSlackConnection("1"))
		gt.NoError(t, err).Required()

		_, err = uc.Data.Fetch(ctx, conn.ID, "C100")
		gt.Value(t, err).NotNil()

		got, err := uc.Connection.Get(ctx, conn.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.LastSyncedAt).Nil()
	})
}
