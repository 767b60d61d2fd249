package domain

import (
	"time"
)

type StreamID string
type UserID string
type MessageID string

// GuestCapacity is the fixed number of guest slots per stream.
const GuestCapacity = 8

type Stream struct {
	ID          StreamID
	Title       string
	Description string
	Category    string
	Tags        []string
	StreamerID  UserID
	StreamKey   string
	Live        bool
	ViewerCount int
	GuestCount  int
	CreatedAt   time.Time
}

type User struct {
	ID           UserID
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

type ChatMessage struct {
	ID               MessageID
	StreamID         StreamID
	UserID           UserID
	Content          string
	IsModerated      bool
	ModerationAction ModerationAction
	ModerationReason string
	Timestamp        time.Time
}
