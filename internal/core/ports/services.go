package ports

import (
	"context"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
)

// SessionRegistry is the sole writer of a stream's live flag and its
// viewer/guest counters. All mutations on one stream are serialized.
type SessionRegistry interface {
	BeginLive(ctx context.Context, streamID domain.StreamID) error
	EndLive(ctx context.Context, streamID domain.StreamID) error
	JoinViewer(ctx context.Context, streamID domain.StreamID) (int, error)
	LeaveViewer(ctx context.Context, streamID domain.StreamID) (int, error)
	JoinGuest(ctx context.Context, streamID domain.StreamID) (int, error)
	LeaveGuest(ctx context.Context, streamID domain.StreamID) (int, error)
}

// AdmissionGate decides whether inbound broadcast/guest connections may
// start. Rejections are terminal for the connection attempt.
type AdmissionGate interface {
	AdmitBroadcast(ctx context.Context, streamKey string) (*domain.Stream, error)
	ReleaseBroadcast(ctx context.Context, streamKey string) error
	AdmitGuest(ctx context.Context, streamKey string) (int, error)
	ReleaseGuest(ctx context.Context, streamKey string) error
}

// ControlAuthority enforces single-active-controller semantics over admin
// interventions and moderator takeovers.
type ControlAuthority interface {
	StartIntervention(ctx context.Context, adminID domain.UserID, streamID domain.StreamID, reason string) (*domain.Intervention, error)
	EndIntervention(ctx context.Context, id domain.InterventionID) (*domain.Intervention, error)
	StartTakeover(ctx context.Context, userID domain.UserID, streamID domain.StreamID, reason string) (*domain.Takeover, error)
	EndTakeover(ctx context.Context, id domain.TakeoverID, requesterID domain.UserID) (*domain.Takeover, error)
	ReleaseStream(ctx context.Context, streamID domain.StreamID) error
}

type RecordRequest struct {
	MessageID domain.MessageID
	StreamID  domain.StreamID
	UserID    domain.UserID
	Action    domain.ModerationAction
	Duration  *time.Duration
	Reason    string
}

// ModerationService owns the append-only action log and the judgment
// pipelines backed by the external AI collaborator.
type ModerationService interface {
	Record(ctx context.Context, req RecordRequest) (*domain.ModerationLogEntry, error)
	ModerateMessage(ctx context.Context, streamID domain.StreamID, messageID domain.MessageID) (*domain.ModerationVerdict, error)
	AnalyzeLegalContent(ctx context.Context, streamID domain.StreamID, streamerID domain.UserID, transcription string) ([]*domain.LegalAnalysis, error)
	Logs(ctx context.Context, streamID domain.StreamID, since time.Time) ([]*domain.ModerationLogEntry, error)
	Stats(ctx context.Context, streamID domain.StreamID, timeRange string) (*domain.ModerationStats, error)
	ListLegalAnalyses(ctx context.Context, streamID domain.StreamID) ([]*domain.LegalAnalysis, error)

	Settings(ctx context.Context, streamerID domain.UserID) (*domain.StreamerSettings, error)
	UpdateSettings(ctx context.Context, settings *domain.StreamerSettings) (*domain.StreamerSettings, error)
	AddBlockedWord(ctx context.Context, streamerID domain.UserID, word string) (*domain.BlockedWord, error)
	RemoveBlockedWord(ctx context.Context, streamerID domain.UserID, wordID string) error
	ListBlockedWords(ctx context.Context, streamerID domain.UserID) ([]*domain.BlockedWord, error)
}

type StreamService interface {
	CreateStream(ctx context.Context, streamerID domain.UserID, title, description, category string, tags []string) (*domain.Stream, error)
	GetStream(ctx context.Context, id domain.StreamID) (*domain.Stream, error)
	UpdateStream(ctx context.Context, requesterID domain.UserID, stream *domain.Stream) (*domain.Stream, error)
	EndStream(ctx context.Context, requesterID domain.UserID, id domain.StreamID) error
	ListLive(ctx context.Context) ([]*domain.Stream, error)
}

type ModeratorService interface {
	AddModerator(ctx context.Context, requesterID domain.UserID, streamID domain.StreamID, userID domain.UserID, rank domain.ModeratorRank, permissions []string) (*domain.Moderator, error)
	UpdateModerator(ctx context.Context, requesterID domain.UserID, streamID domain.StreamID, id domain.ModeratorID, rank domain.ModeratorRank, permissions []string) (*domain.Moderator, error)
	RemoveModerator(ctx context.Context, requesterID domain.UserID, streamID domain.StreamID, id domain.ModeratorID) error
	ListModerators(ctx context.Context, streamID domain.StreamID) ([]*domain.Moderator, error)
}

// RoomPublisher is the fan-out side the core notifies; delivery is
// best-effort and at most once per subscriber.
type RoomPublisher interface {
	Publish(streamID domain.StreamID, event domain.RoomEvent)
}

// JudgmentClient is the external AI collaborator. Its reasoning is opaque;
// failures must surface as domain.ErrUpstreamUnavailable.
type JudgmentClient interface {
	JudgeMessage(ctx context.Context, message string, blockedWords []string, sensitivity int) (*domain.ModerationVerdict, error)
	AnnotateTranscript(ctx context.Context, transcription string) ([]domain.LegalAnnotation, error)
}

// StreamLocker serializes counter mutations and control transitions per
// stream across process boundaries. The in-process guard already covers a
// single instance.
type StreamLocker interface {
	WithStreamLock(ctx context.Context, streamID domain.StreamID, fn func() error) error
}

// StatsCollector receives counter updates from the core services. Methods
// must not block; implementations record and return.
type StatsCollector interface {
	RecordStreamLive(streamID domain.StreamID)
	RecordStreamEnded(streamID domain.StreamID)
	RecordViewerJoined(streamID domain.StreamID, count int)
	RecordViewerLeft(streamID domain.StreamID, count int)
	RecordGuestCount(streamID domain.StreamID, count int)
	RecordModeration(action domain.ModerationAction)
	RecordJudgmentCall(duration time.Duration, err error)
	RecordControlStarted(streamID domain.StreamID, kind string)
	RecordControlEnded(streamID domain.StreamID, kind string)
}
