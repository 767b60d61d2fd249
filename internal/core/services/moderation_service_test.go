package services_test

import (
	"context"
	"errors"
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

// fakeJudgment returns canned verdicts or a configured error.
type fakeJudgment struct {
	verdict     *domain.ModerationVerdict
	annotations []domain.LegalAnnotation
	err         error
	calls       int
}

func (f *fakeJudgment) JudgeMessage(ctx context.Context, message string, blockedWords []string, sensitivity int) (*domain.ModerationVerdict, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.verdict, nil
}

func (f *fakeJudgment) AnnotateTranscript(ctx context.Context, transcription string) ([]domain.LegalAnnotation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.annotations, nil
}

type moderationFixture struct {
	service      ports.ModerationService
	logRepo      ports.ModerationLogRepository
	messageRepo  ports.ChatMessageRepository
	legalRepo    ports.LegalAnalysisRepository
	settingsRepo ports.SettingsRepository
	streamRepo   ports.StreamRepository
	judgment     *fakeJudgment
	stats        *recordingStats
}

func newModerationFixture(t *testing.T) *moderationFixture {
	t.Helper()

	f := &moderationFixture{
		logRepo:      memory.NewMemoryModerationLogRepository(),
		messageRepo:  memory.NewMemoryChatMessageRepository(),
		legalRepo:    memory.NewMemoryLegalAnalysisRepository(),
		settingsRepo: memory.NewMemorySettingsRepository(),
		streamRepo:   memory.NewMemoryStreamRepository(),
		judgment:     &fakeJudgment{},
		stats:        &recordingStats{},
	}
	f.service = services.NewModerationService(
		f.logRepo, f.messageRepo, f.legalRepo, f.settingsRepo, f.streamRepo,
		f.judgment, services.NewStreamGuard(), f.stats, zap.NewNop().Sugar(),
	)

	require.NoError(t, f.streamRepo.Create(context.Background(), &domain.Stream{
		ID:         "stream_mod",
		Title:      "moderation test",
		StreamerID: "user_host",
		StreamKey:  "ghi789",
		Live:       true,
		CreatedAt:  time.Now(),
	}))
	return f
}

func (f *moderationFixture) seedMessage(t *testing.T, id domain.MessageID, content string) {
	t.Helper()
	require.NoError(t, f.messageRepo.Create(context.Background(), &domain.ChatMessage{
		ID:        id,
		StreamID:  "stream_mod",
		UserID:    "user_chatter",
		Content:   content,
		Timestamp: time.Now(),
	}))
}

func TestRecordMarksMessageOnce(t *testing.T) {
	f := newModerationFixture(t)
	f.seedMessage(t, "msg_1", "spam spam spam")
	ctx := context.Background()

	entry, err := f.service.Record(ctx, ports.RecordRequest{
		MessageID: "msg_1",
		StreamID:  "stream_mod",
		UserID:    "user_chatter",
		Action:    domain.ActionWarn,
		Reason:    "spam",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionWarn, entry.Action)

	msg, err := f.messageRepo.GetByID(ctx, "msg_1")
	require.NoError(t, err)
	assert.True(t, msg.IsModerated)
	assert.Equal(t, "spam", msg.ModerationReason)

	// A second record for the same message fails and leaves a single
	// log entry.
	_, err = f.service.Record(ctx, ports.RecordRequest{
		MessageID: "msg_1",
		StreamID:  "stream_mod",
		UserID:    "user_chatter",
		Action:    domain.ActionBan,
		Reason:    "again",
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyModerated)

	entries, err := f.service.Logs(ctx, "stream_mod", time.Time{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordDurationRules(t *testing.T) {
	f := newModerationFixture(t)
	f.seedMessage(t, "msg_to", "timeout me")
	f.seedMessage(t, "msg_warn", "warn me")
	ctx := context.Background()

	// Timeout without a duration is invalid.
	_, err := f.service.Record(ctx, ports.RecordRequest{
		MessageID: "msg_to",
		StreamID:  "stream_mod",
		UserID:    "user_chatter",
		Action:    domain.ActionTimeout,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	d := 10 * time.Minute
	entry, err := f.service.Record(ctx, ports.RecordRequest{
		MessageID: "msg_to",
		StreamID:  "stream_mod",
		UserID:    "user_chatter",
		Action:    domain.ActionTimeout,
		Duration:  &d,
	})
	require.NoError(t, err)
	require.NotNil(t, entry.Duration)
	assert.Equal(t, d, *entry.Duration)

	// A duration on a non-timeout action is invalid.
	_, err = f.service.Record(ctx, ports.RecordRequest{
		MessageID: "msg_warn",
		StreamID:  "stream_mod",
		UserID:    "user_chatter",
		Action:    domain.ActionWarn,
		Duration:  &d,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidationFailuresAreInvalidInput(t *testing.T) {
	f := newModerationFixture(t)
	ctx := context.Background()

	_, err := f.service.Record(ctx, ports.RecordRequest{
		MessageID: "msg_x",
		StreamID:  "stream_mod",
		UserID:    "user_chatter",
		Action:    "obliterate",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.service.UpdateSettings(ctx, &domain.StreamerSettings{
		StreamerID:       "user_host",
		SensitivityLevel: 11,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.service.AddBlockedWord(ctx, "user_host", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestModerateMessageAppliesVerdict(t *testing.T) {
	f := newModerationFixture(t)
	f.seedMessage(t, "msg_bad", "offensive text")
	f.judgment.verdict = &domain.ModerationVerdict{
		ShouldModerate: true,
		Action:         domain.ActionTimeout,
		Reason:         "offensive",
	}
	ctx := context.Background()

	verdict, err := f.service.ModerateMessage(ctx, "stream_mod", "msg_bad")
	require.NoError(t, err)
	assert.True(t, verdict.ShouldModerate)

	msg, err := f.messageRepo.GetByID(ctx, "msg_bad")
	require.NoError(t, err)
	assert.True(t, msg.IsModerated)
	assert.Equal(t, domain.ActionTimeout, msg.ModerationAction)

	entries, err := f.service.Logs(ctx, "stream_mod", time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Duration)
	assert.Equal(t, services.DefaultTimeoutDuration, *entries[0].Duration)
}

func TestModerateMessageCleanVerdictWritesNothing(t *testing.T) {
	f := newModerationFixture(t)
	f.seedMessage(t, "msg_ok", "hello there")
	f.judgment.verdict = &domain.ModerationVerdict{ShouldModerate: false}
	ctx := context.Background()

	verdict, err := f.service.ModerateMessage(ctx, "stream_mod", "msg_ok")
	require.NoError(t, err)
	assert.False(t, verdict.ShouldModerate)

	msg, err := f.messageRepo.GetByID(ctx, "msg_ok")
	require.NoError(t, err)
	assert.False(t, msg.IsModerated)
}

func TestModerateMessageSkippedWhenDisabled(t *testing.T) {
	f := newModerationFixture(t)
	f.seedMessage(t, "msg_any", "whatever")
	ctx := context.Background()

	require.NoError(t, f.settingsRepo.Upsert(ctx, &domain.StreamerSettings{
		StreamerID:       "user_host",
		ChatModeration:   false,
		SensitivityLevel: 5,
	}))

	verdict, err := f.service.ModerateMessage(ctx, "stream_mod", "msg_any")
	require.NoError(t, err)
	assert.False(t, verdict.ShouldModerate)
	assert.Equal(t, 0, f.judgment.calls)
}

func TestModerateMessageUpstreamFailureWritesNothing(t *testing.T) {
	f := newModerationFixture(t)
	f.seedMessage(t, "msg_err", "borderline")
	f.judgment.err = errors.New("connection refused")
	ctx := context.Background()

	_, err := f.service.ModerateMessage(ctx, "stream_mod", "msg_err")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	msg, err := f.messageRepo.GetByID(ctx, "msg_err")
	require.NoError(t, err)
	assert.False(t, msg.IsModerated)

	entries, err := f.service.Logs(ctx, "stream_mod", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAnalyzeLegalContent(t *testing.T) {
	f := newModerationFixture(t)
	ctx := context.Background()

	require.NoError(t, f.settingsRepo.Upsert(ctx, &domain.StreamerSettings{
		StreamerID:       "user_host",
		LegalAnalysis:    true,
		ChatModeration:   true,
		SensitivityLevel: 5,
	}))
	f.judgment.annotations = []domain.LegalAnnotation{
		{Paragraph: "§ 185 StGB", Description: "insult", Severity: "medium"},
		{Paragraph: "§ 186 StGB", Description: "defamation", Severity: "high"},
	}

	analyses, err := f.service.AnalyzeLegalContent(ctx, "stream_mod", "user_host", "transcript text")
	require.NoError(t, err)
	assert.Len(t, analyses, 2)

	stored, err := f.service.ListLegalAnalyses(ctx, "stream_mod")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestAnalyzeLegalContentDisabled(t *testing.T) {
	f := newModerationFixture(t)
	ctx := context.Background()

	// Legal analysis defaults to off.
	analyses, err := f.service.AnalyzeLegalContent(ctx, "stream_mod", "user_host", "transcript text")
	require.NoError(t, err)
	assert.Empty(t, analyses)
	assert.Equal(t, 0, f.judgment.calls)
}

func TestStatsAggregation(t *testing.T) {
	f := newModerationFixture(t)
	ctx := context.Background()

	seed := []struct {
		id     domain.MessageID
		action domain.ModerationAction
	}{
		{"msg_s1", domain.ActionWarn},
		{"msg_s2", domain.ActionWarn},
		{"msg_s3", domain.ActionBan},
	}
	d := 5 * time.Minute
	for _, s := range seed {
		f.seedMessage(t, s.id, "content")
		req := ports.RecordRequest{
			MessageID: s.id,
			StreamID:  "stream_mod",
			UserID:    "user_chatter",
			Action:    s.action,
		}
		if s.action == domain.ActionTimeout {
			req.Duration = &d
		}
		_, err := f.service.Record(ctx, req)
		require.NoError(t, err)
	}

	stats, err := f.service.Stats(ctx, "stream_mod", "day")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalModerations)
	assert.Equal(t, 2, stats.Warnings)
	assert.Equal(t, 0, stats.Timeouts)
	assert.Equal(t, 1, stats.Bans)
	require.Len(t, stats.History, 1)
	assert.Equal(t, 3, stats.History[0].Count)
}

func TestModerationMetricsRecorded(t *testing.T) {
	f := newModerationFixture(t)
	f.seedMessage(t, "msg_m1", "spam")
	f.seedMessage(t, "msg_m2", "offensive text")
	ctx := context.Background()

	_, err := f.service.Record(ctx, ports.RecordRequest{
		MessageID: "msg_m1",
		StreamID:  "stream_mod",
		UserID:    "user_chatter",
		Action:    domain.ActionWarn,
		Reason:    "spam",
	})
	require.NoError(t, err)

	f.judgment.verdict = &domain.ModerationVerdict{
		ShouldModerate: true,
		Action:         domain.ActionBan,
		Reason:         "offensive",
	}
	_, err = f.service.ModerateMessage(ctx, "stream_mod", "msg_m2")
	require.NoError(t, err)

	assert.Equal(t, []domain.ModerationAction{domain.ActionWarn, domain.ActionBan}, f.stats.moderations)
	assert.Equal(t, 1, f.stats.judgmentCalls)

	// Failed judgment calls are still observed.
	f.seedMessage(t, "msg_m3", "borderline")
	f.judgment.err = errors.New("connection refused")
	_, err = f.service.ModerateMessage(ctx, "stream_mod", "msg_m3")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Equal(t, 2, f.stats.judgmentCalls)
}

func TestBlockedWordRoundTrip(t *testing.T) {
	f := newModerationFixture(t)
	ctx := context.Background()

	word, err := f.service.AddBlockedWord(ctx, "user_host", "badword")
	require.NoError(t, err)

	words, err := f.service.ListBlockedWords(ctx, "user_host")
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "badword", words[0].Word)

	// A streamer cannot remove another streamer's word.
	err = f.service.RemoveBlockedWord(ctx, "user_other", word.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.service.RemoveBlockedWord(ctx, "user_host", word.ID))

	words, err = f.service.ListBlockedWords(ctx, "user_host")
	require.NoError(t, err)
	assert.Empty(t, words)
}
