package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
)

type MemoryInterventionRepository struct {
	interventions map[domain.InterventionID]*domain.Intervention
	mu            sync.RWMutex
}

func NewMemoryInterventionRepository() ports.InterventionRepository {
	return &MemoryInterventionRepository{
		interventions: make(map[domain.InterventionID]*domain.Intervention),
	}
}

func cloneIntervention(iv *domain.Intervention) *domain.Intervention {
	c := *iv
	if iv.EndTime != nil {
		t := *iv.EndTime
		c.EndTime = &t
	}
	return &c
}

func (r *MemoryInterventionRepository) Create(ctx context.Context, iv *domain.Intervention) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.interventions[iv.ID]; exists {
		return fmt.Errorf("intervention already exists: %s", iv.ID)
	}

	r.interventions[iv.ID] = cloneIntervention(iv)
	return nil
}

func (r *MemoryInterventionRepository) GetByID(ctx context.Context, id domain.InterventionID) (*domain.Intervention, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	iv, exists := r.interventions[id]
	if !exists {
		return nil, domain.ErrInterventionNotFound
	}
	return cloneIntervention(iv), nil
}

func (r *MemoryInterventionRepository) Update(ctx context.Context, iv *domain.Intervention) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.interventions[iv.ID]; !exists {
		return domain.ErrInterventionNotFound
	}

	r.interventions[iv.ID] = cloneIntervention(iv)
	return nil
}

func (r *MemoryInterventionRepository) FindActiveByStream(ctx context.Context, streamID domain.StreamID) (*domain.Intervention, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, iv := range r.interventions {
		if iv.StreamID == streamID && iv.Status == domain.InterventionActive {
			return cloneIntervention(iv), nil
		}
	}
	// No active intervention is a normal outcome, not an error.
	return nil, nil
}

type MemoryTakeoverRepository struct {
	takeovers map[domain.TakeoverID]*domain.Takeover
	mu        sync.RWMutex
}

func NewMemoryTakeoverRepository() ports.TakeoverRepository {
	return &MemoryTakeoverRepository{
		takeovers: make(map[domain.TakeoverID]*domain.Takeover),
	}
}

func cloneTakeover(tk *domain.Takeover) *domain.Takeover {
	c := *tk
	if tk.EndTime != nil {
		t := *tk.EndTime
		c.EndTime = &t
	}
	return &c
}

func (r *MemoryTakeoverRepository) Create(ctx context.Context, tk *domain.Takeover) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.takeovers[tk.ID]; exists {
		return fmt.Errorf("takeover already exists: %s", tk.ID)
	}

	r.takeovers[tk.ID] = cloneTakeover(tk)
	return nil
}

func (r *MemoryTakeoverRepository) GetByID(ctx context.Context, id domain.TakeoverID) (*domain.Takeover, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tk, exists := r.takeovers[id]
	if !exists {
		return nil, domain.ErrTakeoverNotFound
	}
	return cloneTakeover(tk), nil
}

func (r *MemoryTakeoverRepository) Update(ctx context.Context, tk *domain.Takeover) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.takeovers[tk.ID]; !exists {
		return domain.ErrTakeoverNotFound
	}

	r.takeovers[tk.ID] = cloneTakeover(tk)
	return nil
}

func (r *MemoryTakeoverRepository) FindActiveByStream(ctx context.Context, streamID domain.StreamID) (*domain.Takeover, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tk := range r.takeovers {
		if tk.StreamID == streamID && tk.Status == domain.TakeoverActive {
			return cloneTakeover(tk), nil
		}
	}
	return nil, nil
}
