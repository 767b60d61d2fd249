package services

import (
	"context"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/pkg/utils"

	"go.uber.org/zap"
)

// controlService enforces the single-active-controller invariants:
// at most one active intervention per stream, at most one active takeover
// per stream, never both at once. Admin authority is final: starting an
// intervention cancels an active takeover, never the other way around.
type controlService struct {
	interventionRepo ports.InterventionRepository
	takeoverRepo     ports.TakeoverRepository
	moderatorRepo    ports.ModeratorRepository
	streamRepo       ports.StreamRepository
	locker           ports.StreamLocker
	room             ports.RoomPublisher
	stats            ports.StatsCollector
	logger           *zap.SugaredLogger
}

func NewControlAuthority(
	interventionRepo ports.InterventionRepository,
	takeoverRepo ports.TakeoverRepository,
	moderatorRepo ports.ModeratorRepository,
	streamRepo ports.StreamRepository,
	locker ports.StreamLocker,
	room ports.RoomPublisher,
	stats ports.StatsCollector,
	logger *zap.SugaredLogger,
) ports.ControlAuthority {
	return &controlService{
		interventionRepo: interventionRepo,
		takeoverRepo:     takeoverRepo,
		moderatorRepo:    moderatorRepo,
		streamRepo:       streamRepo,
		locker:           locker,
		room:             room,
		stats:            statsOrNop(stats),
		logger:           logger,
	}
}

func (s *controlService) StartIntervention(ctx context.Context, adminID domain.UserID, streamID domain.StreamID, reason string) (*domain.Intervention, error) {
	var iv *domain.Intervention
	var cancelled *domain.Takeover

	err := s.locker.WithStreamLock(ctx, streamID, func() error {
		stream, err := s.streamRepo.GetByID(ctx, streamID)
		if err != nil {
			return err
		}
		if !stream.Live {
			return domain.ErrStreamNotLive
		}

		if active, err := s.interventionRepo.FindActiveByStream(ctx, streamID); err != nil {
			return err
		} else if active != nil {
			return domain.ErrInterventionActive
		}

		// Admin precedence: an active takeover is force-cancelled, not
		// a conflict.
		takeover, err := s.takeoverRepo.FindActiveByStream(ctx, streamID)
		if err != nil {
			return err
		}
		if takeover != nil {
			now := time.Now()
			takeover.Status = domain.TakeoverCancelled
			takeover.EndTime = &now
			if err := s.takeoverRepo.Update(ctx, takeover); err != nil {
				return err
			}
			cancelled = takeover
		}

		iv = &domain.Intervention{
			ID:        domain.InterventionID(utils.GenerateInterventionID()),
			AdminID:   adminID,
			StreamID:  streamID,
			Reason:    reason,
			Status:    domain.InterventionActive,
			StartTime: time.Now(),
		}
		return s.interventionRepo.Create(ctx, iv)
	})
	if err != nil {
		return nil, err
	}

	if cancelled != nil {
		s.room.Publish(streamID, domain.NewRoomEvent(domain.EventTakeoverEnd, streamID, domain.TakeoverPayload{
			TakeoverID:  cancelled.ID,
			ModeratorID: cancelled.ModeratorID,
		}))
		s.stats.RecordControlEnded(streamID, "takeover")
		s.logger.Infow("takeover cancelled by intervention",
			"stream_id", streamID, "takeover_id", cancelled.ID, "admin_id", adminID)
	}

	s.room.Publish(streamID, domain.NewRoomEvent(domain.EventInterventionStart, streamID, domain.InterventionPayload{
		InterventionID: iv.ID,
		AdminID:        adminID,
		Reason:         reason,
	}))
	s.stats.RecordControlStarted(streamID, "intervention")
	s.logger.Infow("intervention started", "stream_id", streamID, "intervention_id", iv.ID, "admin_id", adminID)
	return iv, nil
}

func (s *controlService) EndIntervention(ctx context.Context, id domain.InterventionID) (*domain.Intervention, error) {
	iv, err := s.interventionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.locker.WithStreamLock(ctx, iv.StreamID, func() error {
		current, err := s.interventionRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != domain.InterventionActive {
			return domain.ErrInterventionNotActive
		}

		now := time.Now()
		current.Status = domain.InterventionEnded
		current.EndTime = &now
		if err := s.interventionRepo.Update(ctx, current); err != nil {
			return err
		}
		iv = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.room.Publish(iv.StreamID, domain.NewRoomEvent(domain.EventInterventionEnd, iv.StreamID, domain.InterventionPayload{
		InterventionID: iv.ID,
	}))
	s.stats.RecordControlEnded(iv.StreamID, "intervention")
	s.logger.Infow("intervention ended", "stream_id", iv.StreamID, "intervention_id", iv.ID)
	return iv, nil
}

func (s *controlService) StartTakeover(ctx context.Context, userID domain.UserID, streamID domain.StreamID, reason string) (*domain.Takeover, error) {
	moderator, err := s.moderatorRepo.FindByStreamAndUser(ctx, streamID, userID)
	if err != nil {
		if err == domain.ErrModeratorNotFound {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}
	if moderator.Rank != domain.RankGold || !moderator.HasPermission(domain.PermStreamTakeover) {
		return nil, domain.ErrForbidden
	}

	var tk *domain.Takeover
	err = s.locker.WithStreamLock(ctx, streamID, func() error {
		if _, err := s.streamRepo.GetByID(ctx, streamID); err != nil {
			return err
		}

		// Cross-track exclusion: admin authority preempts, so a takeover
		// request while an intervention runs fails instead of queueing.
		if active, err := s.interventionRepo.FindActiveByStream(ctx, streamID); err != nil {
			return err
		} else if active != nil {
			return domain.ErrAuthorityConflict
		}

		if active, err := s.takeoverRepo.FindActiveByStream(ctx, streamID); err != nil {
			return err
		} else if active != nil {
			return domain.ErrTakeoverActive
		}

		tk = &domain.Takeover{
			ID:          domain.TakeoverID(utils.GenerateTakeoverID()),
			ModeratorID: userID,
			StreamID:    streamID,
			Reason:      reason,
			Status:      domain.TakeoverActive,
			StartTime:   time.Now(),
		}
		return s.takeoverRepo.Create(ctx, tk)
	})
	if err != nil {
		return nil, err
	}

	s.room.Publish(streamID, domain.NewRoomEvent(domain.EventTakeoverStart, streamID, domain.TakeoverPayload{
		TakeoverID:  tk.ID,
		ModeratorID: userID,
		Reason:      reason,
	}))
	s.stats.RecordControlStarted(streamID, "takeover")
	s.logger.Infow("takeover started", "stream_id", streamID, "takeover_id", tk.ID, "moderator_id", userID)
	return tk, nil
}

func (s *controlService) EndTakeover(ctx context.Context, id domain.TakeoverID, requesterID domain.UserID) (*domain.Takeover, error) {
	tk, err := s.takeoverRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stream, err := s.streamRepo.GetByID(ctx, tk.StreamID)
	if err != nil {
		return nil, err
	}

	// Only the host or the moderator holding the takeover may end it.
	if requesterID != stream.StreamerID && requesterID != tk.ModeratorID {
		return nil, domain.ErrForbidden
	}

	err = s.locker.WithStreamLock(ctx, tk.StreamID, func() error {
		current, err := s.takeoverRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != domain.TakeoverActive {
			return domain.ErrTakeoverNotActive
		}

		now := time.Now()
		current.Status = domain.TakeoverCompleted
		current.EndTime = &now
		if err := s.takeoverRepo.Update(ctx, current); err != nil {
			return err
		}
		tk = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.room.Publish(tk.StreamID, domain.NewRoomEvent(domain.EventTakeoverEnd, tk.StreamID, domain.TakeoverPayload{
		TakeoverID:  tk.ID,
		ModeratorID: tk.ModeratorID,
	}))
	s.stats.RecordControlEnded(tk.StreamID, "takeover")
	s.logger.Infow("takeover completed", "stream_id", tk.StreamID, "takeover_id", tk.ID)
	return tk, nil
}

// ReleaseStream force-ends whatever control is active on the stream. The
// registry calls this when a live session ends.
func (s *controlService) ReleaseStream(ctx context.Context, streamID domain.StreamID) error {
	var endedIv *domain.Intervention
	var endedTk *domain.Takeover

	err := s.locker.WithStreamLock(ctx, streamID, func() error {
		now := time.Now()

		iv, err := s.interventionRepo.FindActiveByStream(ctx, streamID)
		if err != nil {
			return err
		}
		if iv != nil {
			iv.Status = domain.InterventionEnded
			iv.EndTime = &now
			if err := s.interventionRepo.Update(ctx, iv); err != nil {
				return err
			}
			endedIv = iv
		}

		tk, err := s.takeoverRepo.FindActiveByStream(ctx, streamID)
		if err != nil {
			return err
		}
		if tk != nil {
			tk.Status = domain.TakeoverCompleted
			tk.EndTime = &now
			if err := s.takeoverRepo.Update(ctx, tk); err != nil {
				return err
			}
			endedTk = tk
		}
		return nil
	})
	if err != nil {
		return err
	}

	if endedIv != nil {
		s.room.Publish(streamID, domain.NewRoomEvent(domain.EventInterventionEnd, streamID, domain.InterventionPayload{
			InterventionID: endedIv.ID,
		}))
		s.stats.RecordControlEnded(streamID, "intervention")
		s.logger.Infow("intervention force-ended on stream end", "stream_id", streamID, "intervention_id", endedIv.ID)
	}
	if endedTk != nil {
		s.room.Publish(streamID, domain.NewRoomEvent(domain.EventTakeoverEnd, streamID, domain.TakeoverPayload{
			TakeoverID:  endedTk.ID,
			ModeratorID: endedTk.ModeratorID,
		}))
		s.stats.RecordControlEnded(streamID, "takeover")
		s.logger.Infow("takeover force-completed on stream end", "stream_id", streamID, "takeover_id", endedTk.ID)
	}
	return nil
}
