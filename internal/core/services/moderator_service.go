package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/pkg/utils"

	"go.uber.org/zap"
)

type moderatorService struct {
	moderatorRepo ports.ModeratorRepository
	streamRepo    ports.StreamRepository
	logger        *zap.SugaredLogger
}

func NewModeratorService(moderatorRepo ports.ModeratorRepository, streamRepo ports.StreamRepository, logger *zap.SugaredLogger) ports.ModeratorService {
	return &moderatorService{
		moderatorRepo: moderatorRepo,
		streamRepo:    streamRepo,
		logger:        logger,
	}
}

func validRank(rank domain.ModeratorRank) bool {
	return rank == domain.RankSilver || rank == domain.RankGold
}

// requireHost resolves the stream and checks that the requester owns it.
func (s *moderatorService) requireHost(ctx context.Context, requesterID domain.UserID, streamID domain.StreamID) error {
	stream, err := s.streamRepo.GetByID(ctx, streamID)
	if err != nil {
		return err
	}
	if stream.StreamerID != requesterID {
		return domain.ErrForbidden
	}
	return nil
}

func (s *moderatorService) AddModerator(ctx context.Context, requesterID domain.UserID, streamID domain.StreamID, userID domain.UserID, rank domain.ModeratorRank, permissions []string) (*domain.Moderator, error) {
	if err := s.requireHost(ctx, requesterID, streamID); err != nil {
		return nil, err
	}
	if !validRank(rank) {
		return nil, fmt.Errorf("%w: invalid moderator rank %q", domain.ErrInvalidInput, rank)
	}

	mod := &domain.Moderator{
		ID:          domain.ModeratorID(utils.GenerateModeratorID()),
		StreamID:    streamID,
		UserID:      userID,
		Rank:        rank,
		Permissions: permissions,
		CreatedAt:   time.Now(),
	}
	if err := s.moderatorRepo.Create(ctx, mod); err != nil {
		return nil, err
	}
	s.logger.Infow("moderator added", "stream_id", streamID, "user_id", userID, "rank", rank)
	return mod, nil
}

func (s *moderatorService) UpdateModerator(ctx context.Context, requesterID domain.UserID, streamID domain.StreamID, id domain.ModeratorID, rank domain.ModeratorRank, permissions []string) (*domain.Moderator, error) {
	if err := s.requireHost(ctx, requesterID, streamID); err != nil {
		return nil, err
	}
	if !validRank(rank) {
		return nil, fmt.Errorf("%w: invalid moderator rank %q", domain.ErrInvalidInput, rank)
	}

	mod, err := s.moderatorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mod.StreamID != streamID {
		return nil, domain.ErrModeratorNotFound
	}

	mod.Rank = rank
	mod.Permissions = permissions
	if err := s.moderatorRepo.Update(ctx, mod); err != nil {
		return nil, err
	}
	return mod, nil
}

func (s *moderatorService) RemoveModerator(ctx context.Context, requesterID domain.UserID, streamID domain.StreamID, id domain.ModeratorID) error {
	if err := s.requireHost(ctx, requesterID, streamID); err != nil {
		return err
	}

	mod, err := s.moderatorRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if mod.StreamID != streamID {
		return domain.ErrModeratorNotFound
	}
	return s.moderatorRepo.Delete(ctx, id)
}

func (s *moderatorService) ListModerators(ctx context.Context, streamID domain.StreamID) ([]*domain.Moderator, error) {
	return s.moderatorRepo.FindByStream(ctx, streamID)
}
