package services

import (
	"context"
	"fmt"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"

	"go.uber.org/zap"
)

// Registry is the authoritative owner of a stream's live flag and
// its viewer/guest counters. Nothing else writes these fields. The locker
// serializes every counter mutation; in Redis mode it must be the
// cross-instance lock, since the repository does read-modify-write.
type Registry struct {
	streamRepo ports.StreamRepository
	locker     ports.StreamLocker
	control    ports.ControlAuthority
	room       ports.RoomPublisher
	stats      ports.StatsCollector
	logger     *zap.SugaredLogger
}

func NewSessionRegistry(
	streamRepo ports.StreamRepository,
	locker ports.StreamLocker,
	room ports.RoomPublisher,
	stats ports.StatsCollector,
	logger *zap.SugaredLogger,
) *Registry {
	return &Registry{
		streamRepo: streamRepo,
		locker:     locker,
		room:       room,
		stats:      statsOrNop(stats),
		logger:     logger,
	}
}

// SetControlAuthority wires the control side after construction; registry
// and control reference each other (end-live force-release vs. liveness
// checks), so one link is set late.
func (s *Registry) SetControlAuthority(control ports.ControlAuthority) {
	s.control = control
}

func (s *Registry) BeginLive(ctx context.Context, streamID domain.StreamID) error {
	err := s.locker.WithStreamLock(ctx, streamID, func() error {
		stream, err := s.streamRepo.GetByID(ctx, streamID)
		if err != nil {
			return err
		}
		if stream.Live {
			return domain.ErrStreamAlreadyLive
		}

		stream.Live = true
		return s.streamRepo.Update(ctx, stream)
	})
	if err != nil {
		return err
	}

	s.stats.RecordStreamLive(streamID)
	s.logger.Infow("stream went live", "stream_id", streamID)
	return nil
}

// EndLive is idempotent: ending an already-idle stream is a no-op. It
// resets the counters and force-releases any active intervention or
// takeover on the stream.
func (s *Registry) EndLive(ctx context.Context, streamID domain.StreamID) error {
	wasLive := false

	err := s.locker.WithStreamLock(ctx, streamID, func() error {
		stream, err := s.streamRepo.GetByID(ctx, streamID)
		if err != nil {
			return err
		}
		if !stream.Live {
			return nil
		}

		wasLive = true
		stream.Live = false
		stream.ViewerCount = 0
		stream.GuestCount = 0
		return s.streamRepo.Update(ctx, stream)
	})
	if err != nil {
		return err
	}
	if !wasLive {
		return nil
	}

	// The stream is already idle at this point; a racing start attempt
	// fails its liveness check, so releasing outside the lock is safe.
	if s.control != nil {
		if err := s.control.ReleaseStream(ctx, streamID); err != nil {
			s.logger.Errorw("failed to release stream authority", "stream_id", streamID, "error", err)
		}
	}

	s.room.Publish(streamID, domain.NewRoomEvent(domain.EventStreamEnded, streamID, nil))
	s.stats.RecordStreamEnded(streamID)
	s.logger.Infow("stream ended", "stream_id", streamID)
	return nil
}

func (s *Registry) JoinViewer(ctx context.Context, streamID domain.StreamID) (int, error) {
	return s.adjustViewers(ctx, streamID, 1)
}

// LeaveViewer clamps at zero; a leave without a matching join never drives
// the counter negative.
func (s *Registry) LeaveViewer(ctx context.Context, streamID domain.StreamID) (int, error) {
	return s.adjustViewers(ctx, streamID, -1)
}

func (s *Registry) adjustViewers(ctx context.Context, streamID domain.StreamID, delta int) (int, error) {
	count := 0
	err := s.locker.WithStreamLock(ctx, streamID, func() error {
		stream, err := s.streamRepo.GetByID(ctx, streamID)
		if err != nil {
			return err
		}

		stream.ViewerCount += delta
		if stream.ViewerCount < 0 {
			stream.ViewerCount = 0
		}
		count = stream.ViewerCount
		return s.streamRepo.Update(ctx, stream)
	})
	if err != nil {
		return 0, err
	}

	if delta > 0 {
		s.stats.RecordViewerJoined(streamID, count)
	} else {
		s.stats.RecordViewerLeft(streamID, count)
	}
	s.room.Publish(streamID, domain.NewRoomEvent(domain.EventViewerCount, streamID, domain.ViewerCountPayload{Count: count}))
	return count, nil
}

func (s *Registry) JoinGuest(ctx context.Context, streamID domain.StreamID) (int, error) {
	count := 0
	err := s.locker.WithStreamLock(ctx, streamID, func() error {
		stream, err := s.streamRepo.GetByID(ctx, streamID)
		if err != nil {
			return err
		}
		if stream.GuestCount >= domain.GuestCapacity {
			return fmt.Errorf("%w: %d/%d slots taken", domain.ErrGuestCapacity, stream.GuestCount, domain.GuestCapacity)
		}

		stream.GuestCount++
		count = stream.GuestCount
		return s.streamRepo.Update(ctx, stream)
	})
	if err != nil {
		return 0, err
	}
	s.stats.RecordGuestCount(streamID, count)
	return count, nil
}

func (s *Registry) LeaveGuest(ctx context.Context, streamID domain.StreamID) (int, error) {
	count := 0
	err := s.locker.WithStreamLock(ctx, streamID, func() error {
		stream, err := s.streamRepo.GetByID(ctx, streamID)
		if err != nil {
			return err
		}

		stream.GuestCount--
		if stream.GuestCount < 0 {
			stream.GuestCount = 0
		}
		count = stream.GuestCount
		return s.streamRepo.Update(ctx, stream)
	})
	if err != nil {
		return 0, err
	}
	s.stats.RecordGuestCount(streamID, count)
	return count, nil
}
