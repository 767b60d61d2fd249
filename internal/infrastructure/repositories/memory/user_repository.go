package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
)

type MemoryUserRepository struct {
	users      map[domain.UserID]*domain.User
	byUsername map[string]domain.UserID
	mu         sync.RWMutex
}

func NewMemoryUserRepository() ports.UserRepository {
	return &MemoryUserRepository{
		users:      make(map[domain.UserID]*domain.User),
		byUsername: make(map[string]domain.UserID),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return fmt.Errorf("user already exists: %s", user.ID)
	}
	if _, exists := r.byUsername[user.Username]; exists {
		return fmt.Errorf("username already taken: %s", user.Username)
	}

	c := *user
	r.users[user.ID] = &c
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.users[user.ID]
	if !exists {
		return domain.ErrUserNotFound
	}
	if existing.Username != user.Username {
		if _, taken := r.byUsername[user.Username]; taken {
			return fmt.Errorf("username already taken: %s", user.Username)
		}
		delete(r.byUsername, existing.Username)
		r.byUsername[user.Username] = user.ID
	}

	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	c := *user
	return &c, nil
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byUsername[username]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	c := *r.users[id]
	return &c, nil
}
