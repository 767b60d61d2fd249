package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisStreamRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisStreamRepository(client *redis.Client) ports.StreamRepository {
	return &RedisStreamRepository{
		client: client,
		prefix: "yacoolo:stream:",
	}
}

func (r *RedisStreamRepository) streamKey(id domain.StreamID) string {
	return r.prefix + string(id)
}

func (r *RedisStreamRepository) keyIndexKey(streamKey string) string {
	return r.prefix + "key:" + streamKey
}

func (r *RedisStreamRepository) liveStreamsKey() string {
	return r.prefix + "live"
}

func (r *RedisStreamRepository) Create(ctx context.Context, stream *domain.Stream) error {
	data, err := json.Marshal(stream)
	if err != nil {
		return fmt.Errorf("failed to marshal stream: %w", err)
	}

	key := r.streamKey(stream.ID)
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set stream in Redis: %w", err)
	}
	if err := r.client.Set(ctx, r.keyIndexKey(stream.StreamKey), string(stream.ID), 0).Err(); err != nil {
		return fmt.Errorf("failed to index stream key: %w", err)
	}

	if stream.Live {
		if err := r.client.SAdd(ctx, r.liveStreamsKey(), string(stream.ID)).Err(); err != nil {
			return fmt.Errorf("failed to add stream to live set: %w", err)
		}
	}

	return nil
}

func (r *RedisStreamRepository) GetByID(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	data, err := r.client.Get(ctx, r.streamKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrStreamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stream from Redis: %w", err)
	}

	var stream domain.Stream
	if err := json.Unmarshal([]byte(data), &stream); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stream: %w", err)
	}

	return &stream, nil
}

func (r *RedisStreamRepository) GetByKey(ctx context.Context, streamKey string) (*domain.Stream, error) {
	id, err := r.client.Get(ctx, r.keyIndexKey(streamKey)).Result()
	if err == redis.Nil {
		return nil, domain.ErrStreamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stream key: %w", err)
	}
	return r.GetByID(ctx, domain.StreamID(id))
}

func (r *RedisStreamRepository) Update(ctx context.Context, stream *domain.Stream) error {
	current, err := r.GetByID(ctx, stream.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(stream)
	if err != nil {
		return fmt.Errorf("failed to marshal stream: %w", err)
	}

	if err := r.client.Set(ctx, r.streamKey(stream.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update stream in Redis: %w", err)
	}

	if current.StreamKey != stream.StreamKey {
		if err := r.client.Del(ctx, r.keyIndexKey(current.StreamKey)).Err(); err != nil {
			return fmt.Errorf("failed to drop stale key index: %w", err)
		}
		if err := r.client.Set(ctx, r.keyIndexKey(stream.StreamKey), string(stream.ID), 0).Err(); err != nil {
			return fmt.Errorf("failed to index stream key: %w", err)
		}
	}

	liveKey := r.liveStreamsKey()
	if stream.Live {
		if err := r.client.SAdd(ctx, liveKey, string(stream.ID)).Err(); err != nil {
			return fmt.Errorf("failed to add stream to live set: %w", err)
		}
	} else {
		if err := r.client.SRem(ctx, liveKey, string(stream.ID)).Err(); err != nil {
			return fmt.Errorf("failed to remove stream from live set: %w", err)
		}
	}

	return nil
}

func (r *RedisStreamRepository) Delete(ctx context.Context, id domain.StreamID) error {
	stream, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.client.SRem(ctx, r.liveStreamsKey(), string(id)).Err(); err != nil {
		return fmt.Errorf("failed to remove stream from live set: %w", err)
	}
	if err := r.client.Del(ctx, r.keyIndexKey(stream.StreamKey)).Err(); err != nil {
		return fmt.Errorf("failed to drop key index: %w", err)
	}
	if err := r.client.Del(ctx, r.streamKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete stream from Redis: %w", err)
	}

	return nil
}

func (r *RedisStreamRepository) ListLive(ctx context.Context) ([]*domain.Stream, error) {
	ids, err := r.client.SMembers(ctx, r.liveStreamsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read live set: %w", err)
	}

	var streams []*domain.Stream
	for _, id := range ids {
		stream, err := r.GetByID(ctx, domain.StreamID(id))
		if err != nil {
			// A stream deleted out from under the set is skipped.
			continue
		}
		streams = append(streams, stream)
	}
	return streams, nil
}
