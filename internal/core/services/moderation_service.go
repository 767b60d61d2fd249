package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/pkg/utils"

	"go.uber.org/zap"
)

// DefaultTimeoutDuration is applied when the judgment service requests a
// timeout without specifying one.
const DefaultTimeoutDuration = 5 * time.Minute

type moderationService struct {
	logRepo      ports.ModerationLogRepository
	messageRepo  ports.ChatMessageRepository
	legalRepo    ports.LegalAnalysisRepository
	settingsRepo ports.SettingsRepository
	streamRepo   ports.StreamRepository
	judgment     ports.JudgmentClient
	locker       ports.StreamLocker
	stats        ports.StatsCollector
	logger       *zap.SugaredLogger
}

func NewModerationService(
	logRepo ports.ModerationLogRepository,
	messageRepo ports.ChatMessageRepository,
	legalRepo ports.LegalAnalysisRepository,
	settingsRepo ports.SettingsRepository,
	streamRepo ports.StreamRepository,
	judgment ports.JudgmentClient,
	locker ports.StreamLocker,
	stats ports.StatsCollector,
	logger *zap.SugaredLogger,
) ports.ModerationService {
	return &moderationService{
		logRepo:      logRepo,
		messageRepo:  messageRepo,
		legalRepo:    legalRepo,
		settingsRepo: settingsRepo,
		streamRepo:   streamRepo,
		judgment:     judgment,
		locker:       locker,
		stats:        statsOrNop(stats),
		logger:       logger,
	}
}

// Record appends a warn/timeout/ban entry and flips the message's
// moderated flag exactly once. A second record for the same message fails
// with ErrAlreadyModerated and leaves the log unchanged.
func (s *moderationService) Record(ctx context.Context, req ports.RecordRequest) (*domain.ModerationLogEntry, error) {
	if !req.Action.Valid() {
		return nil, fmt.Errorf("%w: invalid moderation action %q", domain.ErrInvalidInput, req.Action)
	}
	if req.Action == domain.ActionTimeout && req.Duration == nil {
		return nil, fmt.Errorf("%w: timeout action requires a duration", domain.ErrInvalidInput)
	}
	if req.Action != domain.ActionTimeout && req.Duration != nil {
		return nil, fmt.Errorf("%w: duration is only valid for timeout actions", domain.ErrInvalidInput)
	}

	var entry *domain.ModerationLogEntry
	err := s.locker.WithStreamLock(ctx, req.StreamID, func() error {
		msg, err := s.messageRepo.GetByID(ctx, req.MessageID)
		if err != nil {
			return err
		}
		if msg.IsModerated {
			return domain.ErrAlreadyModerated
		}

		entry = &domain.ModerationLogEntry{
			ID:        domain.LogEntryID(utils.GenerateID("log")),
			MessageID: req.MessageID,
			StreamID:  req.StreamID,
			UserID:    req.UserID,
			Action:    req.Action,
			Duration:  req.Duration,
			Reason:    req.Reason,
			Timestamp: time.Now(),
		}
		if err := s.logRepo.Append(ctx, entry); err != nil {
			return err
		}
		return s.messageRepo.MarkModerated(ctx, req.MessageID, req.Action, req.Reason)
	})
	if err != nil {
		return nil, err
	}

	s.stats.RecordModeration(req.Action)
	s.logger.Infow("moderation action recorded",
		"stream_id", req.StreamID, "message_id", req.MessageID, "action", req.Action)
	return entry, nil
}

// ModerateMessage asks the external judgment service for a verdict on a
// stored message and records the resulting action. Judgment failures
// surface as ErrUpstreamUnavailable and write nothing.
func (s *moderationService) ModerateMessage(ctx context.Context, streamID domain.StreamID, messageID domain.MessageID) (*domain.ModerationVerdict, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.IsModerated {
		return nil, domain.ErrAlreadyModerated
	}

	stream, err := s.streamRepo.GetByID(ctx, streamID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Get(ctx, stream.StreamerID)
	if err != nil {
		return nil, err
	}
	if !settings.ChatModeration {
		return &domain.ModerationVerdict{ShouldModerate: false}, nil
	}

	blocked, err := s.settingsRepo.ListBlockedWords(ctx, stream.StreamerID)
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, len(blocked))
	for _, w := range blocked {
		words = append(words, w.Word)
	}

	// The judgment call runs without any stream lock held; only the
	// local write after the verdict is serialized.
	start := time.Now()
	verdict, err := s.judgment.JudgeMessage(ctx, msg.Content, words, settings.SensitivityLevel)
	s.stats.RecordJudgmentCall(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	if !verdict.ShouldModerate {
		return verdict, nil
	}

	var duration *time.Duration
	if verdict.Action == domain.ActionTimeout {
		d := DefaultTimeoutDuration
		duration = &d
	}

	if _, err := s.Record(ctx, ports.RecordRequest{
		MessageID: messageID,
		StreamID:  streamID,
		UserID:    msg.UserID,
		Action:    verdict.Action,
		Duration:  duration,
		Reason:    verdict.Reason,
	}); err != nil {
		return nil, err
	}
	return verdict, nil
}

// AnalyzeLegalContent runs the legal-risk pipeline over a transcript.
// Disabled settings return no findings; upstream failures write nothing.
func (s *moderationService) AnalyzeLegalContent(ctx context.Context, streamID domain.StreamID, streamerID domain.UserID, transcription string) ([]*domain.LegalAnalysis, error) {
	settings, err := s.settingsRepo.Get(ctx, streamerID)
	if err != nil {
		return nil, err
	}
	if !settings.LegalAnalysis {
		return nil, nil
	}

	start := time.Now()
	annotations, err := s.judgment.AnnotateTranscript(ctx, transcription)
	s.stats.RecordJudgmentCall(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	analyses := make([]*domain.LegalAnalysis, 0, len(annotations))
	for _, a := range annotations {
		analysis := &domain.LegalAnalysis{
			ID:            domain.AnalysisID(utils.GenerateID("legal")),
			StreamID:      streamID,
			Paragraph:     a.Paragraph,
			Description:   a.Description,
			Severity:      a.Severity,
			Transcription: transcription,
			Timestamp:     time.Now(),
		}
		if err := s.legalRepo.Create(ctx, analysis); err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	s.logger.Infow("legal analysis stored", "stream_id", streamID, "findings", len(analyses))
	return analyses, nil
}

func (s *moderationService) Logs(ctx context.Context, streamID domain.StreamID, since time.Time) ([]*domain.ModerationLogEntry, error) {
	return s.logRepo.FindByStream(ctx, streamID, since)
}

// Stats aggregates log entries by action type and buckets moderation
// history per day.
func (s *moderationService) Stats(ctx context.Context, streamID domain.StreamID, timeRange string) (*domain.ModerationStats, error) {
	since := sinceForRange(timeRange)

	entries, err := s.logRepo.FindByStream(ctx, streamID, since)
	if err != nil {
		return nil, err
	}
	analyses, err := s.legalRepo.FindByStream(ctx, streamID, since)
	if err != nil {
		return nil, err
	}

	stats := &domain.ModerationStats{
		TotalModerations: len(entries),
		LegalAnalyses:    len(analyses),
	}

	byDay := make(map[string]int)
	for _, e := range entries {
		switch e.Action {
		case domain.ActionWarn:
			stats.Warnings++
		case domain.ActionTimeout:
			stats.Timeouts++
		case domain.ActionBan:
			stats.Bans++
		}
		byDay[e.Timestamp.Format("2006-01-02")]++
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		stats.History = append(stats.History, domain.ModerationsPerDay{Date: day, Count: byDay[day]})
	}

	return stats, nil
}

func sinceForRange(timeRange string) time.Time {
	now := time.Now()
	switch timeRange {
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, -1, 0)
	default:
		return now.Add(-24 * time.Hour)
	}
}

func (s *moderationService) ListLegalAnalyses(ctx context.Context, streamID domain.StreamID) ([]*domain.LegalAnalysis, error) {
	return s.legalRepo.FindByStream(ctx, streamID, time.Time{})
}

func (s *moderationService) Settings(ctx context.Context, streamerID domain.UserID) (*domain.StreamerSettings, error) {
	return s.settingsRepo.Get(ctx, streamerID)
}

func (s *moderationService) UpdateSettings(ctx context.Context, settings *domain.StreamerSettings) (*domain.StreamerSettings, error) {
	if settings.SensitivityLevel < 1 || settings.SensitivityLevel > 10 {
		return nil, fmt.Errorf("%w: sensitivity level must be between 1 and 10", domain.ErrInvalidInput)
	}
	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *moderationService) AddBlockedWord(ctx context.Context, streamerID domain.UserID, word string) (*domain.BlockedWord, error) {
	if word == "" {
		return nil, fmt.Errorf("%w: word must not be empty", domain.ErrInvalidInput)
	}
	bw := &domain.BlockedWord{
		ID:         utils.GenerateID("word"),
		StreamerID: streamerID,
		Word:       word,
	}
	if err := s.settingsRepo.AddBlockedWord(ctx, bw); err != nil {
		return nil, err
	}
	return bw, nil
}

func (s *moderationService) ListBlockedWords(ctx context.Context, streamerID domain.UserID) ([]*domain.BlockedWord, error) {
	return s.settingsRepo.ListBlockedWords(ctx, streamerID)
}

func (s *moderationService) RemoveBlockedWord(ctx context.Context, streamerID domain.UserID, wordID string) error {
	words, err := s.settingsRepo.ListBlockedWords(ctx, streamerID)
	if err != nil {
		return err
	}
	for _, w := range words {
		if w.ID == wordID {
			return s.settingsRepo.RemoveBlockedWord(ctx, wordID)
		}
	}
	return domain.ErrForbidden
}
