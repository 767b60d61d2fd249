package services_test

import (
	"context"
	"testing"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/internal/core/services"
	"github.com/Netboss008/yacoolo/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStreamService(t *testing.T) (ports.StreamService, ports.StreamRepository, *recordingPublisher) {
	t.Helper()

	streamRepo := memory.NewMemoryStreamRepository()
	room := &recordingPublisher{}
	registry := services.NewSessionRegistry(streamRepo, services.NewStreamGuard(), room, nil, zap.NewNop().Sugar())
	return services.NewStreamService(streamRepo, registry, zap.NewNop().Sugar()), streamRepo, room
}

func TestCreateStreamGeneratesCredentials(t *testing.T) {
	svc, _, _ := newStreamService(t)
	ctx := context.Background()

	a, err := svc.CreateStream(ctx, "user_host", "first", "desc", "irl", []string{"talk"})
	require.NoError(t, err)
	b, err := svc.CreateStream(ctx, "user_host", "second", "", "", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, a.StreamKey)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.StreamKey, b.StreamKey)
	assert.False(t, a.Live)
}

func TestUpdateStreamHostOnlyAndMetadataOnly(t *testing.T) {
	svc, streamRepo, _ := newStreamService(t)
	ctx := context.Background()

	created, err := svc.CreateStream(ctx, "user_host", "title", "desc", "irl", nil)
	require.NoError(t, err)

	_, err = svc.UpdateStream(ctx, "user_other", &domain.Stream{ID: created.ID, Title: "hijack"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Updates never touch liveness, counters or the publish key.
	updated, err := svc.UpdateStream(ctx, "user_host", &domain.Stream{
		ID:        created.ID,
		Title:     "new title",
		Category:  "music",
		StreamKey: "attacker-chosen",
		Live:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, created.StreamKey, updated.StreamKey)
	assert.False(t, updated.Live)

	stored, err := streamRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "music", stored.Category)
}

func TestEndStreamNotifiesAndDeletes(t *testing.T) {
	svc, streamRepo, room := newStreamService(t)
	ctx := context.Background()

	created, err := svc.CreateStream(ctx, "user_host", "title", "", "", nil)
	require.NoError(t, err)
	require.NoError(t, streamRepo.Update(ctx, &domain.Stream{
		ID: created.ID, Title: created.Title, StreamerID: created.StreamerID,
		StreamKey: created.StreamKey, Live: true, CreatedAt: created.CreatedAt,
	}))

	err = svc.EndStream(ctx, "user_other", created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, svc.EndStream(ctx, "user_host", created.ID))
	assert.Len(t, room.byType(domain.EventStreamEnded), 1)

	_, err = streamRepo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)
}

func TestListLiveSortedByViewers(t *testing.T) {
	svc, streamRepo, _ := newStreamService(t)
	ctx := context.Background()

	seed := []struct {
		id      domain.StreamID
		viewers int
		live    bool
	}{
		{"stream_a", 3, true},
		{"stream_b", 10, true},
		{"stream_c", 7, false},
	}
	for _, s := range seed {
		require.NoError(t, streamRepo.Create(ctx, &domain.Stream{
			ID:          s.id,
			Title:       string(s.id),
			StreamerID:  "user_host",
			StreamKey:   "key_" + string(s.id),
			Live:        s.live,
			ViewerCount: s.viewers,
		}))
	}

	live, err := svc.ListLive(ctx)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, domain.StreamID("stream_b"), live[0].ID)
	assert.Equal(t, domain.StreamID("stream_a"), live[1].ID)
}
