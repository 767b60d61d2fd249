package memory

import (
	"context"
	"sync"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
)

type MemorySettingsRepository struct {
	settings map[domain.UserID]*domain.StreamerSettings
	words    map[string]*domain.BlockedWord
	mu       sync.RWMutex
}

func NewMemorySettingsRepository() ports.SettingsRepository {
	return &MemorySettingsRepository{
		settings: make(map[domain.UserID]*domain.StreamerSettings),
		words:    make(map[string]*domain.BlockedWord),
	}
}

// Get returns stored settings or the defaults for a streamer that never
// changed anything.
func (r *MemorySettingsRepository) Get(ctx context.Context, streamerID domain.UserID) (*domain.StreamerSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.settings[streamerID]
	if !exists {
		return &domain.StreamerSettings{
			StreamerID:       streamerID,
			LegalAnalysis:    false,
			ChatModeration:   true,
			SensitivityLevel: 5,
		}, nil
	}
	c := *s
	return &c, nil
}

func (r *MemorySettingsRepository) Upsert(ctx context.Context, settings *domain.StreamerSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *settings
	r.settings[settings.StreamerID] = &c
	return nil
}

func (r *MemorySettingsRepository) AddBlockedWord(ctx context.Context, word *domain.BlockedWord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *word
	r.words[word.ID] = &c
	return nil
}

func (r *MemorySettingsRepository) RemoveBlockedWord(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.words, id)
	return nil
}

func (r *MemorySettingsRepository) ListBlockedWords(ctx context.Context, streamerID domain.UserID) ([]*domain.BlockedWord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.BlockedWord
	for _, w := range r.words {
		if w.StreamerID == streamerID {
			c := *w
			out = append(out, &c)
		}
	}
	return out, nil
}
