package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/relaymill/towncrier/pkg/domain/interfaces"
	"github.com/relaymill/towncrier/pkg/domain/model"
	"github.com/relaymill/towncrier/pkg/repository/memory"
)

func TestCheckpointRoundTrip(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	_, err := repo.Checkpoint().Get(ctx)
	gt.Error(t, err).Is(interfaces.ErrCheckpointNotFound)

	cp := &model.Checkpoint{
		Position: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		SyncedAt: time.Date(2026, 8, 1, 12, 5, 0, 0, time.UTC),
	}
	gt.NoError(t, repo.Checkpoint().Put(ctx, cp)).Required()

	got, err := repo.Checkpoint().Get(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Position).Equal(cp.Position)
	gt.Value(t, got.SyncedAt).Equal(cp.SyncedAt)

	// The stored copy is isolated from later mutation of the input
	cp.Position = cp.Position.Add(time.Hour)
	again, err := repo.Checkpoint().Get(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, again.Position).Equal(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	gt.NoError(t, repo.Close())
}
