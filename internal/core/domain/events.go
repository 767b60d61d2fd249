package domain

import "encoding/json"

// EventType identifies a fan-out room event.
type EventType string

const (
	EventViewerCount       EventType = "viewerCount"
	EventNewMessage        EventType = "newMessage"
	EventInterventionStart EventType = "adminIntervention:start"
	EventInterventionEnd   EventType = "adminIntervention:end"
	EventTakeoverStart     EventType = "takeover:start"
	EventTakeoverEnd       EventType = "takeover:end"
	EventStreamEnded       EventType = "streamEnded"
)

// RoomEvent is delivered to every subscriber of a stream's room, best-effort
// and at most once per subscriber.
type RoomEvent struct {
	Type     EventType       `json:"type"`
	StreamID StreamID        `json:"stream_id"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

func NewRoomEvent(t EventType, streamID StreamID, payload interface{}) RoomEvent {
	data, _ := json.Marshal(payload)
	return RoomEvent{Type: t, StreamID: streamID, Payload: data}
}

type ViewerCountPayload struct {
	Count int `json:"count"`
}

type InterventionPayload struct {
	InterventionID InterventionID `json:"intervention_id"`
	AdminID        UserID         `json:"admin_id,omitempty"`
	Reason         string         `json:"reason,omitempty"`
}

type TakeoverPayload struct {
	TakeoverID  TakeoverID `json:"takeover_id"`
	ModeratorID UserID     `json:"moderator_id,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}
