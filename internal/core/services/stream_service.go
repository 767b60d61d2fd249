package services

import (
	"context"
	"sort"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/pkg/utils"

	"go.uber.org/zap"
)

type streamService struct {
	streamRepo ports.StreamRepository
	registry   ports.SessionRegistry
	logger     *zap.SugaredLogger
}

func NewStreamService(streamRepo ports.StreamRepository, registry ports.SessionRegistry, logger *zap.SugaredLogger) ports.StreamService {
	return &streamService{
		streamRepo: streamRepo,
		registry:   registry,
		logger:     logger,
	}
}

func (s *streamService) CreateStream(ctx context.Context, streamerID domain.UserID, title, description, category string, tags []string) (*domain.Stream, error) {
	stream := &domain.Stream{
		ID:          domain.StreamID(utils.GenerateStreamID()),
		Title:       title,
		Description: description,
		Category:    category,
		Tags:        tags,
		StreamerID:  streamerID,
		StreamKey:   utils.GenerateStreamKey(),
		CreatedAt:   time.Now(),
	}
	if err := s.streamRepo.Create(ctx, stream); err != nil {
		return nil, err
	}
	s.logger.Infow("stream created", "stream_id", stream.ID, "streamer_id", streamerID)
	return stream, nil
}

func (s *streamService) GetStream(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	return s.streamRepo.GetByID(ctx, id)
}

// UpdateStream lets the host change metadata. Liveness, counters and the
// publish key are owned elsewhere and never change here.
func (s *streamService) UpdateStream(ctx context.Context, requesterID domain.UserID, stream *domain.Stream) (*domain.Stream, error) {
	current, err := s.streamRepo.GetByID(ctx, stream.ID)
	if err != nil {
		return nil, err
	}
	if current.StreamerID != requesterID {
		return nil, domain.ErrForbidden
	}

	current.Title = stream.Title
	current.Description = stream.Description
	current.Category = stream.Category
	current.Tags = stream.Tags

	if err := s.streamRepo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// EndStream tears a stream down on the host's request: the live session is
// closed first so viewers get notified, then the record is removed.
func (s *streamService) EndStream(ctx context.Context, requesterID domain.UserID, id domain.StreamID) error {
	stream, err := s.streamRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if stream.StreamerID != requesterID {
		return domain.ErrForbidden
	}

	if err := s.registry.EndLive(ctx, id); err != nil {
		return err
	}
	if err := s.streamRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("stream ended by host", "stream_id", id)
	return nil
}

func (s *streamService) ListLive(ctx context.Context) ([]*domain.Stream, error) {
	streams, err := s.streamRepo.ListLive(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(streams, func(i, j int) bool {
		return streams[i].ViewerCount > streams[j].ViewerCount
	})
	return streams, nil
}
