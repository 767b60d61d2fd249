package services

import (
	"context"
	"errors"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"

	"go.uber.org/zap"
)

type admissionGate struct {
	streamRepo ports.StreamRepository
	registry   ports.SessionRegistry
	logger     *zap.SugaredLogger
}

func NewAdmissionGate(streamRepo ports.StreamRepository, registry ports.SessionRegistry, logger *zap.SugaredLogger) ports.AdmissionGate {
	return &admissionGate{
		streamRepo: streamRepo,
		registry:   registry,
		logger:     logger,
	}
}

// AdmitBroadcast resolves a publish key and transitions the stream live.
// An unknown key or an already-live stream rejects the connection.
func (g *admissionGate) AdmitBroadcast(ctx context.Context, streamKey string) (*domain.Stream, error) {
	stream, err := g.streamRepo.GetByKey(ctx, streamKey)
	if err != nil {
		return nil, err
	}
	if err := g.registry.BeginLive(ctx, stream.ID); err != nil {
		return nil, err
	}
	g.logger.Infow("broadcast admitted", "stream_id", stream.ID)
	return stream, nil
}

// ReleaseBroadcast ends the session for a disconnecting publisher. Unknown
// keys are ignored so a stale encoder disconnect cannot fail the hook.
func (g *admissionGate) ReleaseBroadcast(ctx context.Context, streamKey string) error {
	stream, err := g.streamRepo.GetByKey(ctx, streamKey)
	if err != nil {
		if errors.Is(err, domain.ErrStreamNotFound) {
			return nil
		}
		return err
	}
	return g.registry.EndLive(ctx, stream.ID)
}

// AdmitGuest admits a co-broadcaster onto a live stream, returning the new
// guest count.
func (g *admissionGate) AdmitGuest(ctx context.Context, streamKey string) (int, error) {
	stream, err := g.streamRepo.GetByKey(ctx, streamKey)
	if err != nil {
		return 0, err
	}
	if !stream.Live {
		return 0, domain.ErrStreamNotLive
	}
	return g.registry.JoinGuest(ctx, stream.ID)
}

// ReleaseGuest frees a guest slot on disconnect. Like ReleaseBroadcast,
// stale keys are ignored.
func (g *admissionGate) ReleaseGuest(ctx context.Context, streamKey string) error {
	stream, err := g.streamRepo.GetByKey(ctx, streamKey)
	if err != nil {
		if errors.Is(err, domain.ErrStreamNotFound) {
			return nil
		}
		return err
	}
	_, err = g.registry.LeaveGuest(ctx, stream.ID)
	return err
}
