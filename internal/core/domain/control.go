package domain

import "time"

type InterventionID string
type TakeoverID string

type InterventionStatus string

const (
	InterventionActive InterventionStatus = "active"
	InterventionEnded  InterventionStatus = "ended"
)

// Intervention is a platform-admin override of a live stream. At most one
// may be active per stream at any instant.
type Intervention struct {
	ID        InterventionID
	AdminID   UserID
	StreamID  StreamID
	Reason    string
	Status    InterventionStatus
	StartTime time.Time
	EndTime   *time.Time
}

type TakeoverStatus string

const (
	TakeoverActive    TakeoverStatus = "active"
	TakeoverCompleted TakeoverStatus = "completed"
	TakeoverCancelled TakeoverStatus = "cancelled"
)

// Takeover is a gold-rank moderator assuming control of a stream. At most
// one may be active per stream, and never alongside an active Intervention;
// an admin intervention force-cancels it.
type Takeover struct {
	ID          TakeoverID
	ModeratorID UserID
	StreamID    StreamID
	Reason      string
	Status      TakeoverStatus
	StartTime   time.Time
	EndTime     *time.Time
}
