package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
)

type MemoryStreamRepository struct {
	streams map[domain.StreamID]*domain.Stream
	byKey   map[string]domain.StreamID
	mu      sync.RWMutex
}

func NewMemoryStreamRepository() ports.StreamRepository {
	return &MemoryStreamRepository{
		streams: make(map[domain.StreamID]*domain.Stream),
		byKey:   make(map[string]domain.StreamID),
	}
}

// clone keeps readers isolated from writers; streams are mutated through
// read-modify-write cycles serialized by the caller.
func cloneStream(s *domain.Stream) *domain.Stream {
	c := *s
	c.Tags = append([]string(nil), s.Tags...)
	return &c
}

func (r *MemoryStreamRepository) Create(ctx context.Context, stream *domain.Stream) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.streams[stream.ID]; exists {
		return fmt.Errorf("stream already exists: %s", stream.ID)
	}

	r.streams[stream.ID] = cloneStream(stream)
	r.byKey[stream.StreamKey] = stream.ID
	return nil
}

func (r *MemoryStreamRepository) GetByID(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stream, exists := r.streams[id]
	if !exists {
		return nil, domain.ErrStreamNotFound
	}

	return cloneStream(stream), nil
}

func (r *MemoryStreamRepository) GetByKey(ctx context.Context, streamKey string) (*domain.Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byKey[streamKey]
	if !exists {
		return nil, domain.ErrStreamNotFound
	}

	return cloneStream(r.streams[id]), nil
}

func (r *MemoryStreamRepository) Update(ctx context.Context, stream *domain.Stream) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.streams[stream.ID]
	if !exists {
		return domain.ErrStreamNotFound
	}

	if current.StreamKey != stream.StreamKey {
		delete(r.byKey, current.StreamKey)
		r.byKey[stream.StreamKey] = stream.ID
	}
	r.streams[stream.ID] = cloneStream(stream)
	return nil
}

func (r *MemoryStreamRepository) Delete(ctx context.Context, id domain.StreamID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stream, exists := r.streams[id]
	if !exists {
		return domain.ErrStreamNotFound
	}

	delete(r.byKey, stream.StreamKey)
	delete(r.streams, id)
	return nil
}

func (r *MemoryStreamRepository) ListLive(ctx context.Context) ([]*domain.Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var live []*domain.Stream
	for _, stream := range r.streams {
		if stream.Live {
			live = append(live, cloneStream(stream))
		}
	}
	return live, nil
}
