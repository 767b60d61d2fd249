package ports

import (
	"context"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
)

type StreamRepository interface {
	Create(ctx context.Context, stream *domain.Stream) error
	GetByID(ctx context.Context, id domain.StreamID) (*domain.Stream, error)
	GetByKey(ctx context.Context, streamKey string) (*domain.Stream, error)
	Update(ctx context.Context, stream *domain.Stream) error
	Delete(ctx context.Context, id domain.StreamID) error
	ListLive(ctx context.Context) ([]*domain.Stream, error)
}

type InterventionRepository interface {
	Create(ctx context.Context, iv *domain.Intervention) error
	GetByID(ctx context.Context, id domain.InterventionID) (*domain.Intervention, error)
	Update(ctx context.Context, iv *domain.Intervention) error
	FindActiveByStream(ctx context.Context, streamID domain.StreamID) (*domain.Intervention, error)
}

type TakeoverRepository interface {
	Create(ctx context.Context, tk *domain.Takeover) error
	GetByID(ctx context.Context, id domain.TakeoverID) (*domain.Takeover, error)
	Update(ctx context.Context, tk *domain.Takeover) error
	FindActiveByStream(ctx context.Context, streamID domain.StreamID) (*domain.Takeover, error)
}

type ModeratorRepository interface {
	Create(ctx context.Context, mod *domain.Moderator) error
	GetByID(ctx context.Context, id domain.ModeratorID) (*domain.Moderator, error)
	Update(ctx context.Context, mod *domain.Moderator) error
	Delete(ctx context.Context, id domain.ModeratorID) error
	FindByStream(ctx context.Context, streamID domain.StreamID) ([]*domain.Moderator, error)
	FindByStreamAndUser(ctx context.Context, streamID domain.StreamID, userID domain.UserID) (*domain.Moderator, error)
}

type ModerationLogRepository interface {
	Append(ctx context.Context, entry *domain.ModerationLogEntry) error
	FindByStream(ctx context.Context, streamID domain.StreamID, since time.Time) ([]*domain.ModerationLogEntry, error)
}

type ChatMessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	GetByID(ctx context.Context, id domain.MessageID) (*domain.ChatMessage, error)
	MarkModerated(ctx context.Context, id domain.MessageID, action domain.ModerationAction, reason string) error
	FindByStream(ctx context.Context, streamID domain.StreamID, limit int) ([]*domain.ChatMessage, error)
}

type LegalAnalysisRepository interface {
	Create(ctx context.Context, analysis *domain.LegalAnalysis) error
	FindByStream(ctx context.Context, streamID domain.StreamID, since time.Time) ([]*domain.LegalAnalysis, error)
}

type SettingsRepository interface {
	Get(ctx context.Context, streamerID domain.UserID) (*domain.StreamerSettings, error)
	Upsert(ctx context.Context, settings *domain.StreamerSettings) error
	AddBlockedWord(ctx context.Context, word *domain.BlockedWord) error
	RemoveBlockedWord(ctx context.Context, id string) error
	ListBlockedWords(ctx context.Context, streamerID domain.UserID) ([]*domain.BlockedWord, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
