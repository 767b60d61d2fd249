package realtime

import (
	"sync"

	"github.com/Netboss008/yacoolo/internal/core/domain"

	"go.uber.org/zap"
)

const subscriberBuffer = 64

// Subscriber receives a stream room's events over a buffered channel. A
// subscriber that cannot keep up has events dropped rather than stalling
// the room.
type Subscriber struct {
	ID     string
	UserID domain.UserID
	events chan domain.RoomEvent
}

// Events is the receive side for the connection writer.
func (s *Subscriber) Events() <-chan domain.RoomEvent {
	return s.events
}

type room struct {
	subscribers map[string]*Subscriber
}

// Hub owns the per-stream fan-out rooms. All membership changes and
// publishes for one room go through the hub mutex, so every subscriber
// observes one room's events in the same order.
type Hub struct {
	mu      sync.Mutex
	rooms   map[domain.StreamID]*room
	buffer  int
	dropped uint64
	logger  *zap.SugaredLogger
}

func NewHub(bufferSize int, logger *zap.SugaredLogger) *Hub {
	if bufferSize <= 0 {
		bufferSize = subscriberBuffer
	}
	return &Hub{
		rooms:  make(map[domain.StreamID]*room),
		buffer: bufferSize,
		logger: logger,
	}
}

// Subscribe adds a connection to a stream's room, creating the room on
// first join.
func (h *Hub) Subscribe(streamID domain.StreamID, subID string, userID domain.UserID) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[streamID]
	if !ok {
		r = &room{subscribers: make(map[string]*Subscriber)}
		h.rooms[streamID] = r
	}

	sub := &Subscriber{
		ID:     subID,
		UserID: userID,
		events: make(chan domain.RoomEvent, h.buffer),
	}
	r.subscribers[subID] = sub
	return sub
}

// Unsubscribe removes a connection and closes its event channel. Empty
// rooms are evicted.
func (h *Hub) Unsubscribe(streamID domain.StreamID, subID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[streamID]
	if !ok {
		return
	}
	sub, ok := r.subscribers[subID]
	if !ok {
		return
	}
	delete(r.subscribers, subID)
	close(sub.events)

	if len(r.subscribers) == 0 {
		delete(h.rooms, streamID)
	}
}

// Publish delivers an event to every current subscriber of the stream's
// room. Delivery is at most once; a full subscriber buffer drops the event
// for that subscriber only. Implements ports.RoomPublisher.
func (h *Hub) Publish(streamID domain.StreamID, event domain.RoomEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[streamID]
	if !ok {
		return
	}

	for _, sub := range r.subscribers {
		select {
		case sub.events <- event:
		default:
			h.dropped++
			h.logger.Debugw("subscriber buffer full, dropping event",
				"stream_id", streamID, "subscriber", sub.ID, "type", event.Type)
		}
	}
}

// CloseRoom disconnects every subscriber of a stream's room.
func (h *Hub) CloseRoom(streamID domain.StreamID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[streamID]
	if !ok {
		return
	}
	for id, sub := range r.subscribers {
		delete(r.subscribers, id)
		close(sub.events)
	}
	delete(h.rooms, streamID)
}

// RoomSize reports the number of subscribers in a stream's room.
func (h *Hub) RoomSize(streamID domain.StreamID) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[streamID]
	if !ok {
		return 0
	}
	return len(r.subscribers)
}

// DroppedEvents reports how many events were dropped on full buffers.
func (h *Hub) DroppedEvents() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}
