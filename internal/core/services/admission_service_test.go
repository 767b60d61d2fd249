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

func newTestGate(t *testing.T) (ports.AdmissionGate, ports.StreamRepository, ports.SessionRegistry) {
	t.Helper()

	streamRepo := memory.NewMemoryStreamRepository()
	registry := services.NewSessionRegistry(streamRepo, services.NewStreamGuard(), &recordingPublisher{}, nil, zap.NewNop().Sugar())
	gate := services.NewAdmissionGate(streamRepo, registry, zap.NewNop().Sugar())

	require.NoError(t, streamRepo.Create(context.Background(), &domain.Stream{
		ID:         "stream_gate",
		Title:      "gate test",
		StreamerID: "user_host",
		StreamKey:  "pubkey1",
		CreatedAt:  time.Now(),
	}))
	return gate, streamRepo, registry
}

func TestAdmitBroadcast(t *testing.T) {
	gate, streamRepo, _ := newTestGate(t)
	ctx := context.Background()

	stream, err := gate.AdmitBroadcast(ctx, "pubkey1")
	require.NoError(t, err)
	assert.Equal(t, domain.StreamID("stream_gate"), stream.ID)

	stored, err := streamRepo.GetByID(ctx, "stream_gate")
	require.NoError(t, err)
	assert.True(t, stored.Live)

	// A second encoder with the same key is rejected while the first
	// session is live.
	_, err = gate.AdmitBroadcast(ctx, "pubkey1")
	assert.ErrorIs(t, err, domain.ErrStreamAlreadyLive)
}

func TestAdmitBroadcastUnknownKey(t *testing.T) {
	gate, _, _ := newTestGate(t)

	_, err := gate.AdmitBroadcast(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)
}

func TestReleaseBroadcastIgnoresUnknownKey(t *testing.T) {
	gate, _, _ := newTestGate(t)

	assert.NoError(t, gate.ReleaseBroadcast(context.Background(), "nope"))
}

func TestGuestAdmissionRequiresLive(t *testing.T) {
	gate, _, _ := newTestGate(t)
	ctx := context.Background()

	_, err := gate.AdmitGuest(ctx, "pubkey1")
	assert.ErrorIs(t, err, domain.ErrStreamNotLive)

	_, err = gate.AdmitBroadcast(ctx, "pubkey1")
	require.NoError(t, err)

	count, err := gate.AdmitGuest(ctx, "pubkey1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReleaseGuestFreesSlot(t *testing.T) {
	gate, streamRepo, _ := newTestGate(t)
	ctx := context.Background()

	_, err := gate.AdmitBroadcast(ctx, "pubkey1")
	require.NoError(t, err)

	for i := 0; i < domain.GuestCapacity; i++ {
		_, err := gate.AdmitGuest(ctx, "pubkey1")
		require.NoError(t, err)
	}
	_, err = gate.AdmitGuest(ctx, "pubkey1")
	assert.ErrorIs(t, err, domain.ErrGuestCapacity)

	require.NoError(t, gate.ReleaseGuest(ctx, "pubkey1"))

	count, err := gate.AdmitGuest(ctx, "pubkey1")
	require.NoError(t, err)
	assert.Equal(t, domain.GuestCapacity, count)

	stored, err := streamRepo.GetByID(ctx, "stream_gate")
	require.NoError(t, err)
	assert.Equal(t, domain.GuestCapacity, stored.GuestCount)

	// A dangling disconnect for an unknown key is a no-op.
	assert.NoError(t, gate.ReleaseGuest(ctx, "nope"))
}
