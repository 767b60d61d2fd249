package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/internal/core/services"
	"github.com/Netboss008/yacoolo/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newModeratorService(t *testing.T) ports.ModeratorService {
	t.Helper()

	streamRepo := memory.NewMemoryStreamRepository()
	require.NoError(t, streamRepo.Create(context.Background(), &domain.Stream{
		ID:         "stream_a",
		Title:      "a",
		StreamerID: "user_host",
		StreamKey:  "key_a",
		CreatedAt:  time.Now(),
	}))
	require.NoError(t, streamRepo.Create(context.Background(), &domain.Stream{
		ID:         "stream_b",
		Title:      "b",
		StreamerID: "user_other",
		StreamKey:  "key_b",
		CreatedAt:  time.Now(),
	}))
	return services.NewModeratorService(memory.NewMemoryModeratorRepository(), streamRepo, zap.NewNop().Sugar())
}

func TestAddModeratorHostOnly(t *testing.T) {
	svc := newModeratorService(t)
	ctx := context.Background()

	_, err := svc.AddModerator(ctx, "user_other", "stream_a", "user_mod", domain.RankSilver, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.AddModerator(ctx, "user_host", "stream_a", "user_mod", "platinum", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	mod, err := svc.AddModerator(ctx, "user_host", "stream_a", "user_mod", domain.RankGold, []string{domain.PermChatModeration})
	require.NoError(t, err)
	assert.Equal(t, domain.RankGold, mod.Rank)

	mods, err := svc.ListModerators(ctx, "stream_a")
	require.NoError(t, err)
	assert.Len(t, mods, 1)
}

func TestUpdateModeratorScopedToStream(t *testing.T) {
	svc := newModeratorService(t)
	ctx := context.Background()

	mod, err := svc.AddModerator(ctx, "user_host", "stream_a", "user_mod", domain.RankSilver, nil)
	require.NoError(t, err)

	// A moderator record belongs to one stream; addressing it through
	// another stream fails even for that stream's host.
	_, err = svc.UpdateModerator(ctx, "user_other", "stream_b", mod.ID, domain.RankGold, nil)
	assert.ErrorIs(t, err, domain.ErrModeratorNotFound)

	updated, err := svc.UpdateModerator(ctx, "user_host", "stream_a", mod.ID, domain.RankGold, []string{domain.PermStreamTakeover})
	require.NoError(t, err)
	assert.Equal(t, domain.RankGold, updated.Rank)
	assert.Equal(t, []string{domain.PermStreamTakeover}, updated.Permissions)
}

func TestRemoveModerator(t *testing.T) {
	svc := newModeratorService(t)
	ctx := context.Background()

	mod, err := svc.AddModerator(ctx, "user_host", "stream_a", "user_mod", domain.RankSilver, nil)
	require.NoError(t, err)

	err = svc.RemoveModerator(ctx, "user_mod", "stream_a", mod.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, svc.RemoveModerator(ctx, "user_host", "stream_a", mod.ID))

	mods, err := svc.ListModerators(ctx, "stream_a")
	require.NoError(t, err)
	assert.Empty(t, mods)
}
