package services_test

import (
	"context"
	"sync"
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

type controlFixture struct {
	control          ports.ControlAuthority
	registry         *services.Registry
	streamRepo       ports.StreamRepository
	interventionRepo ports.InterventionRepository
	takeoverRepo     ports.TakeoverRepository
	moderatorRepo    ports.ModeratorRepository
	room             *recordingPublisher
	stats            *recordingStats
}

func newControlFixture(t *testing.T) *controlFixture {
	t.Helper()

	streamRepo := memory.NewMemoryStreamRepository()
	interventionRepo := memory.NewMemoryInterventionRepository()
	takeoverRepo := memory.NewMemoryTakeoverRepository()
	moderatorRepo := memory.NewMemoryModeratorRepository()
	room := &recordingPublisher{}
	stats := &recordingStats{}
	guard := services.NewStreamGuard()
	log := zap.NewNop().Sugar()

	registry := services.NewSessionRegistry(streamRepo, guard, room, stats, log)
	control := services.NewControlAuthority(interventionRepo, takeoverRepo, moderatorRepo, streamRepo, guard, room, stats, log)
	registry.SetControlAuthority(control)

	return &controlFixture{
		control:          control,
		registry:         registry,
		streamRepo:       streamRepo,
		interventionRepo: interventionRepo,
		takeoverRepo:     takeoverRepo,
		moderatorRepo:    moderatorRepo,
		room:             room,
		stats:            stats,
	}
}

func (f *controlFixture) seedLiveStream(t *testing.T) *domain.Stream {
	t.Helper()
	stream := &domain.Stream{
		ID:         "stream_ctl",
		Title:      "control test",
		StreamerID: "user_host",
		StreamKey:  "def456",
		Live:       true,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, f.streamRepo.Create(context.Background(), stream))
	return stream
}

func (f *controlFixture) seedGoldModerator(t *testing.T, userID domain.UserID) {
	t.Helper()
	require.NoError(t, f.moderatorRepo.Create(context.Background(), &domain.Moderator{
		ID:          "mod_gold",
		StreamID:    "stream_ctl",
		UserID:      userID,
		Rank:        domain.RankGold,
		Permissions: []string{domain.PermChatModeration, domain.PermStreamTakeover},
		CreatedAt:   time.Now(),
	}))
}

func TestStartInterventionRequiresLive(t *testing.T) {
	f := newControlFixture(t)
	stream := f.seedLiveStream(t)
	ctx := context.Background()

	stream.Live = false
	require.NoError(t, f.streamRepo.Update(ctx, stream))

	_, err := f.control.StartIntervention(ctx, "user_admin", "stream_ctl", "rule violation")
	assert.ErrorIs(t, err, domain.ErrStreamNotLive)
}

func TestSecondInterventionRejected(t *testing.T) {
	f := newControlFixture(t)
	f.seedLiveStream(t)
	ctx := context.Background()

	_, err := f.control.StartIntervention(ctx, "user_admin", "stream_ctl", "first")
	require.NoError(t, err)

	_, err = f.control.StartIntervention(ctx, "user_admin2", "stream_ctl", "second")
	assert.ErrorIs(t, err, domain.ErrInterventionActive)
}

func TestSecondTakeoverRejected(t *testing.T) {
	f := newControlFixture(t)
	f.seedLiveStream(t)
	f.seedGoldModerator(t, "user_gold")
	ctx := context.Background()

	_, err := f.control.StartTakeover(ctx, "user_gold", "stream_ctl", "host afk")
	require.NoError(t, err)

	_, err = f.control.StartTakeover(ctx, "user_gold", "stream_ctl", "again")
	assert.ErrorIs(t, err, domain.ErrTakeoverActive)
}

func TestTakeoverDuringInterventionConflicts(t *testing.T) {
	f := newControlFixture(t)
	f.seedLiveStream(t)
	f.seedGoldModerator(t, "user_gold")
	ctx := context.Background()

	_, err := f.control.StartIntervention(ctx, "user_admin", "stream_ctl", "incident")
	require.NoError(t, err)

	_, err = f.control.StartTakeover(ctx, "user_gold", "stream_ctl", "host afk")
	assert.ErrorIs(t, err, domain.ErrAuthorityConflict)
}

func TestInterventionCancelsActiveTakeover(t *testing.T) {
	f := newControlFixture(t)
	f.seedLiveStream(t)
	f.seedGoldModerator(t, "user_gold")
	ctx := context.Background()

	tk, err := f.control.StartTakeover(ctx, "user_gold", "stream_ctl", "host afk")
	require.NoError(t, err)

	_, err = f.control.StartIntervention(ctx, "user_admin", "stream_ctl", "incident")
	require.NoError(t, err)

	cancelled, err := f.takeoverRepo.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TakeoverCancelled, cancelled.Status)
	require.NotNil(t, cancelled.EndTime)

	// Subscribers saw the takeover end before the intervention start.
	ends := f.room.byType(domain.EventTakeoverEnd)
	require.Len(t, ends, 1)
	assert.Len(t, f.room.byType(domain.EventInterventionStart), 1)
}

func TestTakeoverPermissionChecks(t *testing.T) {
	f := newControlFixture(t)
	f.seedLiveStream(t)
	ctx := context.Background()

	// Not a moderator at all.
	_, err := f.control.StartTakeover(ctx, "user_random", "stream_ctl", "because")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Silver rank is not enough, even with the permission.
	require.NoError(t, f.moderatorRepo.Create(ctx, &domain.Moderator{
		ID:          "mod_silver",
		StreamID:    "stream_ctl",
		UserID:      "user_silver",
		Rank:        domain.RankSilver,
		Permissions: []string{domain.PermStreamTakeover},
		CreatedAt:   time.Now(),
	}))
	_, err = f.control.StartTakeover(ctx, "user_silver", "stream_ctl", "because")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Gold without the takeover permission is also rejected.
	require.NoError(t, f.moderatorRepo.Create(ctx, &domain.Moderator{
		ID:          "mod_gold_nop",
		StreamID:    "stream_ctl",
		UserID:      "user_gold_nop",
		Rank:        domain.RankGold,
		Permissions: []string{domain.PermChatModeration},
		CreatedAt:   time.Now(),
	}))
	_, err = f.control.StartTakeover(ctx, "user_gold_nop", "stream_ctl", "because")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEndTakeoverPermissions(t *testing.T) {
	f := newControlFixture(t)
	f.seedLiveStream(t)
	f.seedGoldModerator(t, "user_gold")
	ctx := context.Background()

	tk, err := f.control.StartTakeover(ctx, "user_gold", "stream_ctl", "host afk")
	require.NoError(t, err)

	_, err = f.control.EndTakeover(ctx, tk.ID, "user_random")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// The host may end it.
	ended, err := f.control.EndTakeover(ctx, tk.ID, "user_host")
	require.NoError(t, err)
	assert.Equal(t, domain.TakeoverCompleted, ended.Status)

	// Ending twice fails.
	_, err = f.control.EndTakeover(ctx, tk.ID, "user_host")
	assert.ErrorIs(t, err, domain.ErrTakeoverNotActive)
}

func TestConcurrentTakeoverStartsAdmitOne(t *testing.T) {
	f := newControlFixture(t)
	f.seedLiveStream(t)
	ctx := context.Background()

	const moderators = 10
	for i := 0; i < moderators; i++ {
		require.NoError(t, f.moderatorRepo.Create(ctx, &domain.Moderator{
			ID:          domain.ModeratorID("mod_" + string(rune('a'+i))),
			StreamID:    "stream_ctl",
			UserID:      domain.UserID("user_" + string(rune('a'+i))),
			Rank:        domain.RankGold,
			Permissions: []string{domain.PermStreamTakeover},
			CreatedAt:   time.Now(),
		}))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	wg.Add(moderators)
	for i := 0; i < moderators; i++ {
		userID := domain.UserID("user_" + string(rune('a'+i)))
		go func() {
			defer wg.Done()
			if _, err := f.control.StartTakeover(ctx, userID, "stream_ctl", "race"); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}

func TestEndLiveReleasesControl(t *testing.T) {
	f := newControlFixture(t)
	f.seedLiveStream(t)
	f.seedGoldModerator(t, "user_gold")
	ctx := context.Background()

	tk, err := f.control.StartTakeover(ctx, "user_gold", "stream_ctl", "host afk")
	require.NoError(t, err)

	require.NoError(t, f.registry.EndLive(ctx, "stream_ctl"))

	released, err := f.takeoverRepo.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.NotEqual(t, domain.TakeoverActive, released.Status)

	// The stream is free for control once it goes live again.
	stream, err := f.streamRepo.GetByID(ctx, "stream_ctl")
	require.NoError(t, err)
	stream.Live = true
	require.NoError(t, f.streamRepo.Update(ctx, stream))

	_, err = f.control.StartIntervention(ctx, "user_admin", "stream_ctl", "fresh session")
	assert.NoError(t, err)
}

func TestEndInterventionTwiceFails(t *testing.T) {
	f := newControlFixture(t)
	f.seedLiveStream(t)
	ctx := context.Background()

	iv, err := f.control.StartIntervention(ctx, "user_admin", "stream_ctl", "incident")
	require.NoError(t, err)

	ended, err := f.control.EndIntervention(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InterventionEnded, ended.Status)
	require.NotNil(t, ended.EndTime)

	_, err = f.control.EndIntervention(ctx, iv.ID)
	assert.ErrorIs(t, err, domain.ErrInterventionNotActive)
}

func TestControlTransitionsRecorded(t *testing.T) {
	f := newControlFixture(t)
	f.seedLiveStream(t)
	f.seedGoldModerator(t, "user_gold")
	ctx := context.Background()

	tk, err := f.control.StartTakeover(ctx, "user_gold", "stream_ctl", "host afk")
	require.NoError(t, err)
	_, err = f.control.EndTakeover(ctx, tk.ID, "user_host")
	require.NoError(t, err)

	iv, err := f.control.StartIntervention(ctx, "user_admin", "stream_ctl", "incident")
	require.NoError(t, err)
	_, err = f.control.EndIntervention(ctx, iv.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"takeover", "intervention"}, f.stats.controlStart)
	assert.Equal(t, []string{"takeover", "intervention"}, f.stats.controlEnd)
}

func TestEndLiveRecordsControlEnd(t *testing.T) {
	f := newControlFixture(t)
	f.seedLiveStream(t)
	ctx := context.Background()

	_, err := f.control.StartIntervention(ctx, "user_admin", "stream_ctl", "incident")
	require.NoError(t, err)

	require.NoError(t, f.registry.EndLive(ctx, "stream_ctl"))

	assert.Equal(t, []string{"intervention"}, f.stats.controlEnd)
	assert.Equal(t, []domain.StreamID{"stream_ctl"}, f.stats.ended)
}
