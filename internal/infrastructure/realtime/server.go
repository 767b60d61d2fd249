package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/internal/core/services"
	"github.com/Netboss008/yacoolo/pkg/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServerConfig carries the connection timeouts for viewer websockets.
type ServerConfig struct {
	PingInterval    time.Duration
	PongTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxMessageBytes int64
}

// Server handles the viewer-facing websocket endpoint. Each connection
// joins exactly one stream's room for its lifetime. Publishes go through
// room so they replicate across instances; subscriptions are local.
type Server struct {
	hub         *Hub
	room        ports.RoomPublisher
	registry    ports.SessionRegistry
	streamRepo  ports.StreamRepository
	messageRepo ports.ChatMessageRepository
	moderation  ports.ModerationService
	auth        services.AuthService
	cfg         ServerConfig

	logger *zap.SugaredLogger
}

type clientMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

func NewServer(
	hub *Hub,
	room ports.RoomPublisher,
	registry ports.SessionRegistry,
	streamRepo ports.StreamRepository,
	messageRepo ports.ChatMessageRepository,
	moderation ports.ModerationService,
	auth services.AuthService,
	cfg ServerConfig,
	logger *zap.SugaredLogger,
) *Server {
	return &Server{
		hub:         hub,
		room:        room,
		registry:    registry,
		streamRepo:  streamRepo,
		messageRepo: messageRepo,
		moderation:  moderation,
		auth:        auth,
		cfg:         cfg,
		logger:      logger,
	}
}

// HandleWebSocket upgrades the connection, joins the stream's room and
// counts the viewer until disconnect.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	streamID := domain.StreamID(r.URL.Query().Get("stream_id"))
	if streamID == "" {
		http.Error(w, "stream_id is required", http.StatusBadRequest)
		return
	}

	stream, err := s.streamRepo.GetByID(r.Context(), streamID)
	if err != nil {
		http.Error(w, "stream not found", http.StatusNotFound)
		return
	}
	if !stream.Live {
		http.Error(w, "stream not live", http.StatusConflict)
		return
	}

	// Anonymous viewers are counted; only identified users may chat.
	var userID domain.UserID
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := s.auth.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID = claims.UserID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	subID := utils.GenerateRequestID()
	sub := s.hub.Subscribe(streamID, subID, userID)
	defer s.hub.Unsubscribe(streamID, subID)

	count, err := s.registry.JoinViewer(r.Context(), streamID)
	if err != nil {
		s.logger.Warnw("viewer join rejected", "stream_id", streamID, "error", err)
		return
	}
	defer func() {
		if _, err := s.registry.LeaveViewer(context.Background(), streamID); err != nil {
			s.logger.Warnw("viewer leave failed", "stream_id", streamID, "error", err)
		}
	}()

	s.logger.Infow("viewer connected", "stream_id", streamID, "viewers", count, "user_id", userID)

	conn.SetReadLimit(s.cfg.MaxMessageBytes)
	conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		return nil
	})

	pingTicker := time.NewTicker(s.cfg.PingInterval)
	defer pingTicker.Stop()

	messageChan := make(chan clientMessage, 10)
	errorChan := make(chan error, 1)
	// Closed when the event loop returns so a reader blocked on a full
	// messageChan does not outlive the connection.
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			var msg clientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				errorChan <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
			select {
			case messageChan <- msg:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				s.logger.Infow("error writing event", "stream_id", streamID, "error", err)
				return
			}
			// The session is over; notify then close.
			if event.Type == domain.EventStreamEnded {
				return
			}

		case msg := <-messageChan:
			if err := s.handleMessage(r.Context(), streamID, userID, msg); err != nil {
				s.sendError(conn, err.Error())
			}

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Infow("error reading message", "stream_id", streamID, "error", err)
			}
			return
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, streamID domain.StreamID, userID domain.UserID, msg clientMessage) error {
	switch msg.Type {
	case "sendMessage":
		return s.handleChatMessage(ctx, streamID, userID, msg.Content)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// handleChatMessage persists the message, fans it out, then hands it to
// the judgment pipeline in the background.
func (s *Server) handleChatMessage(ctx context.Context, streamID domain.StreamID, userID domain.UserID, content string) error {
	if userID == "" {
		return fmt.Errorf("authentication required to chat")
	}
	if content == "" {
		return fmt.Errorf("message content is required")
	}

	msg := &domain.ChatMessage{
		ID:        domain.MessageID(utils.GenerateMessageID()),
		StreamID:  streamID,
		UserID:    userID,
		Content:   content,
		Timestamp: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return err
	}

	s.room.Publish(streamID, domain.NewRoomEvent(domain.EventNewMessage, streamID, map[string]interface{}{
		"message_id": msg.ID,
		"user_id":    msg.UserID,
		"content":    msg.Content,
		"timestamp":  msg.Timestamp,
	}))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.moderation.ModerateMessage(ctx, streamID, msg.ID); err != nil {
			s.logger.Warnw("message moderation failed",
				"stream_id", streamID, "message_id", msg.ID, "error", err)
		}
	}()

	return nil
}

func (s *Server) sendError(conn *websocket.Conn, message string) {
	conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	payload, _ := json.Marshal(map[string]string{"error": message})
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		s.logger.Debugw("error sending error message", "error", err)
	}
}
