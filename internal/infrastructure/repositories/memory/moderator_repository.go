package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
)

type MemoryModeratorRepository struct {
	moderators map[domain.ModeratorID]*domain.Moderator
	mu         sync.RWMutex
}

func NewMemoryModeratorRepository() ports.ModeratorRepository {
	return &MemoryModeratorRepository{
		moderators: make(map[domain.ModeratorID]*domain.Moderator),
	}
}

func cloneModerator(m *domain.Moderator) *domain.Moderator {
	c := *m
	c.Permissions = append([]string(nil), m.Permissions...)
	return &c
}

func (r *MemoryModeratorRepository) Create(ctx context.Context, mod *domain.Moderator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.moderators[mod.ID]; exists {
		return fmt.Errorf("moderator already exists: %s", mod.ID)
	}

	r.moderators[mod.ID] = cloneModerator(mod)
	return nil
}

func (r *MemoryModeratorRepository) GetByID(ctx context.Context, id domain.ModeratorID) (*domain.Moderator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, exists := r.moderators[id]
	if !exists {
		return nil, domain.ErrModeratorNotFound
	}
	return cloneModerator(mod), nil
}

func (r *MemoryModeratorRepository) Update(ctx context.Context, mod *domain.Moderator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.moderators[mod.ID]; !exists {
		return domain.ErrModeratorNotFound
	}

	r.moderators[mod.ID] = cloneModerator(mod)
	return nil
}

func (r *MemoryModeratorRepository) Delete(ctx context.Context, id domain.ModeratorID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.moderators[id]; !exists {
		return domain.ErrModeratorNotFound
	}

	delete(r.moderators, id)
	return nil
}

func (r *MemoryModeratorRepository) FindByStream(ctx context.Context, streamID domain.StreamID) ([]*domain.Moderator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Moderator
	for _, mod := range r.moderators {
		if mod.StreamID == streamID {
			out = append(out, cloneModerator(mod))
		}
	}
	return out, nil
}

func (r *MemoryModeratorRepository) FindByStreamAndUser(ctx context.Context, streamID domain.StreamID, userID domain.UserID) (*domain.Moderator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, mod := range r.moderators {
		if mod.StreamID == streamID && mod.UserID == userID {
			return cloneModerator(mod), nil
		}
	}
	return nil, domain.ErrModeratorNotFound
}
