package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
)

type MemoryModerationLogRepository struct {
	entries []*domain.ModerationLogEntry
	mu      sync.RWMutex
}

func NewMemoryModerationLogRepository() ports.ModerationLogRepository {
	return &MemoryModerationLogRepository{}
}

func (r *MemoryModerationLogRepository) Append(ctx context.Context, entry *domain.ModerationLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *entry
	if entry.Duration != nil {
		d := *entry.Duration
		c.Duration = &d
	}
	r.entries = append(r.entries, &c)
	return nil
}

func (r *MemoryModerationLogRepository) FindByStream(ctx context.Context, streamID domain.StreamID, since time.Time) ([]*domain.ModerationLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.ModerationLogEntry
	for _, e := range r.entries {
		if e.StreamID == streamID && !e.Timestamp.Before(since) {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

type MemoryChatMessageRepository struct {
	messages map[domain.MessageID]*domain.ChatMessage
	mu       sync.RWMutex
}

func NewMemoryChatMessageRepository() ports.ChatMessageRepository {
	return &MemoryChatMessageRepository{
		messages: make(map[domain.MessageID]*domain.ChatMessage),
	}
}

func (r *MemoryChatMessageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.messages[msg.ID]; exists {
		return fmt.Errorf("message already exists: %s", msg.ID)
	}

	c := *msg
	r.messages[msg.ID] = &c
	return nil
}

func (r *MemoryChatMessageRepository) GetByID(ctx context.Context, id domain.MessageID) (*domain.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msg, exists := r.messages[id]
	if !exists {
		return nil, domain.ErrMessageNotFound
	}
	c := *msg
	return &c, nil
}

func (r *MemoryChatMessageRepository) MarkModerated(ctx context.Context, id domain.MessageID, action domain.ModerationAction, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, exists := r.messages[id]
	if !exists {
		return domain.ErrMessageNotFound
	}
	if msg.IsModerated {
		return domain.ErrAlreadyModerated
	}

	msg.IsModerated = true
	msg.ModerationAction = action
	msg.ModerationReason = reason
	return nil
}

func (r *MemoryChatMessageRepository) FindByStream(ctx context.Context, streamID domain.StreamID, limit int) ([]*domain.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.ChatMessage
	for _, msg := range r.messages {
		if msg.StreamID == streamID {
			c := *msg
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type MemoryLegalAnalysisRepository struct {
	analyses []*domain.LegalAnalysis
	mu       sync.RWMutex
}

func NewMemoryLegalAnalysisRepository() ports.LegalAnalysisRepository {
	return &MemoryLegalAnalysisRepository{}
}

func (r *MemoryLegalAnalysisRepository) Create(ctx context.Context, analysis *domain.LegalAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *analysis
	r.analyses = append(r.analyses, &c)
	return nil
}

func (r *MemoryLegalAnalysisRepository) FindByStream(ctx context.Context, streamID domain.StreamID, since time.Time) ([]*domain.LegalAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.LegalAnalysis
	for _, a := range r.analyses {
		if a.StreamID == streamID && !a.Timestamp.Before(since) {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}
