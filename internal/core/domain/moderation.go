package domain

import "time"

type ModeratorID string
type LogEntryID string
type AnalysisID string

type ModeratorRank string

const (
	RankSilver ModeratorRank = "silver"
	RankGold   ModeratorRank = "gold"
)

// Moderator permissions are capability strings granted by the host.
const (
	PermChatModeration = "chat_moderation"
	PermStreamTakeover = "stream_takeover"
)

type Moderator struct {
	ID          ModeratorID
	StreamID    StreamID
	UserID      UserID
	Rank        ModeratorRank
	Permissions []string
	CreatedAt   time.Time
}

func (m *Moderator) HasPermission(perm string) bool {
	for _, p := range m.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

type ModerationAction string

const (
	ActionWarn    ModerationAction = "warn"
	ActionTimeout ModerationAction = "timeout"
	ActionBan     ModerationAction = "ban"
)

func (a ModerationAction) Valid() bool {
	switch a {
	case ActionWarn, ActionTimeout, ActionBan:
		return true
	}
	return false
}

// ModerationLogEntry is an append-only record of a warn/timeout/ban decision.
// Duration is set only for timeouts.
type ModerationLogEntry struct {
	ID        LogEntryID
	MessageID MessageID
	StreamID  StreamID
	UserID    UserID
	Action    ModerationAction
	Duration  *time.Duration
	Reason    string
	Timestamp time.Time
}

// ModerationVerdict is the structured judgment returned by the external AI
// collaborator for a single chat message.
type ModerationVerdict struct {
	ShouldModerate bool             `json:"shouldModerate"`
	Action         ModerationAction `json:"action"`
	Reason         string           `json:"reason"`
}

// LegalAnnotation is a legal-risk finding on a transcript paragraph.
type LegalAnnotation struct {
	Paragraph   string `json:"paragraph"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type LegalAnalysis struct {
	ID            AnalysisID
	StreamID      StreamID
	Paragraph     string
	Description   string
	Severity      string
	Transcription string
	Timestamp     time.Time
}

// StreamerSettings controls which judgment pipelines run for a streamer.
type StreamerSettings struct {
	StreamerID       UserID
	LegalAnalysis    bool
	ChatModeration   bool
	SensitivityLevel int
}

type BlockedWord struct {
	ID         string
	StreamerID UserID
	Word       string
}

// ModerationStats aggregates log entries for a stream over a time range.
type ModerationStats struct {
	TotalModerations int                 `json:"totalModerations"`
	Warnings         int                 `json:"warnings"`
	Timeouts         int                 `json:"timeouts"`
	Bans             int                 `json:"bans"`
	LegalAnalyses    int                 `json:"legalAnalyses"`
	History          []ModerationsPerDay `json:"moderationHistory"`
}

type ModerationsPerDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
