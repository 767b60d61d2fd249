package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/services"
	"github.com/Netboss008/yacoolo/internal/infrastructure/repositories/memory"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// idleJudgment never moderates; websocket tests exercise the connection
// handling, not the judgment pipeline.
type idleJudgment struct{}

func (idleJudgment) JudgeMessage(context.Context, string, []string, int) (*domain.ModerationVerdict, error) {
	return &domain.ModerationVerdict{ShouldModerate: false}, nil
}

func (idleJudgment) AnnotateTranscript(context.Context, string) ([]domain.LegalAnnotation, error) {
	return nil, nil
}

type wsFixture struct {
	hub      *Hub
	registry *services.Registry
	server   *httptest.Server
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	log := zap.NewNop().Sugar()

	streamRepo := memory.NewMemoryStreamRepository()
	messageRepo := memory.NewMemoryChatMessageRepository()
	hub := NewHub(subscriberBuffer, log)
	registry := services.NewSessionRegistry(streamRepo, services.NewStreamGuard(), hub, nil, log)

	moderation := services.NewModerationService(
		memory.NewMemoryModerationLogRepository(), messageRepo,
		memory.NewMemoryLegalAnalysisRepository(), memory.NewMemorySettingsRepository(),
		streamRepo, idleJudgment{}, services.NewStreamGuard(), nil, log,
	)
	auth := services.NewAuthService(memory.NewMemoryUserRepository(), "test-secret", time.Hour, time.Hour)

	srv := NewServer(hub, hub, registry, streamRepo, messageRepo, moderation, auth, ServerConfig{
		PingInterval:    50 * time.Millisecond,
		PongTimeout:     time.Second,
		WriteTimeout:    time.Second,
		MaxMessageBytes: 4096,
	}, log)

	require.NoError(t, streamRepo.Create(context.Background(), &domain.Stream{
		ID:         "stream_ws",
		Title:      "ws test",
		StreamerID: "user_host",
		StreamKey:  "jkl012",
		Live:       true,
		CreatedAt:  time.Now(),
	}))

	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWebSocket))
	t.Cleanup(ts.Close)

	return &wsFixture{hub: hub, registry: registry, server: ts}
}

func (f *wsFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/?stream_id=stream_ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestWebSocketViewerLifecycle(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t)
	defer conn.Close()

	// Joining publishes the new viewer count to the room.
	var ev domain.RoomEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, domain.EventViewerCount, ev.Type)
	assert.JSONEq(t, `{"count":1}`, string(ev.Payload))

	// Ending the session notifies the viewer, then the server hangs up.
	require.NoError(t, f.registry.EndLive(context.Background(), "stream_ws"))
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		if ev.Type == domain.EventStreamEnded {
			break
		}
	}
}

func TestReaderStopsWhenRoomCloses(t *testing.T) {
	f := newWSFixture(t)
	baseline := runtime.NumGoroutine()

	conn := f.dial(t)
	defer conn.Close()

	var ev domain.RoomEvent
	require.NoError(t, conn.ReadJSON(&ev))

	// Tear the room down, then keep sending without reading so the
	// server-side inbound buffer fills while its event loop is gone.
	f.hub.CloseRoom("stream_ws")
	for i := 0; i < 64; i++ {
		if err := conn.WriteJSON(clientMessage{Type: "sendMessage", Content: "x"}); err != nil {
			break
		}
	}
	conn.Close()

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline+2
	}, 2*time.Second, 10*time.Millisecond, "reader goroutine survived the connection")
}
