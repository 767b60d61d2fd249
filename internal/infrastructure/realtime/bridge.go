package realtime

import (
	"context"
	"encoding/json"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const bridgeChannel = "yacoolo:room-events"

type bridgeEnvelope struct {
	Origin string           `json:"origin"`
	Event  domain.RoomEvent `json:"event"`
}

// Bridge replicates room events across instances over Redis pub/sub.
// Local publishes go to the local hub synchronously and to the channel;
// events arriving from other instances are replayed into the local hub.
// Implements ports.RoomPublisher.
type Bridge struct {
	hub      *Hub
	client   *redis.Client
	instance string
	logger   *zap.SugaredLogger
}

func NewBridge(hub *Hub, client *redis.Client, logger *zap.SugaredLogger) *Bridge {
	return &Bridge{
		hub:      hub,
		client:   client,
		instance: utils.GenerateRequestID(),
		logger:   logger,
	}
}

func (b *Bridge) Publish(streamID domain.StreamID, event domain.RoomEvent) {
	b.hub.Publish(streamID, event)

	data, err := json.Marshal(bridgeEnvelope{Origin: b.instance, Event: event})
	if err != nil {
		b.logger.Errorw("failed to marshal room event", "error", err)
		return
	}
	if err := b.client.Publish(context.Background(), bridgeChannel, data).Err(); err != nil {
		b.logger.Warnw("failed to publish room event to Redis", "error", err)
	}
}

// Run consumes the bridge channel until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, bridgeChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env bridgeEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warnw("malformed bridge event", "error", err)
				continue
			}
			if env.Origin == b.instance {
				continue
			}
			b.hub.Publish(env.Event.StreamID, env.Event)
		}
	}
}
