package services

import (
	"context"
	"sync"

	"github.com/Netboss008/yacoolo/internal/core/domain"
)

// StreamGuard serializes all state mutations for a single stream inside
// this process. Operations on different streams proceed independently.
type StreamGuard struct {
	mu    sync.Mutex
	locks map[domain.StreamID]*streamLock
}

type streamLock struct {
	mu   sync.Mutex
	refs int
}

func NewStreamGuard() *StreamGuard {
	return &StreamGuard{
		locks: make(map[domain.StreamID]*streamLock),
	}
}

// WithStreamLock runs fn while holding the stream's lock. Implements
// ports.StreamLocker.
func (g *StreamGuard) WithStreamLock(ctx context.Context, streamID domain.StreamID, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l := g.acquire(streamID)
	l.mu.Lock()
	defer func() {
		l.mu.Unlock()
		g.release(streamID)
	}()

	return fn()
}

func (g *StreamGuard) acquire(streamID domain.StreamID) *streamLock {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.locks[streamID]
	if !ok {
		l = &streamLock{}
		g.locks[streamID] = l
	}
	l.refs++
	return l
}

// release drops the refcount and evicts idle entries so the map does not
// grow with every stream ever seen.
func (g *StreamGuard) release(streamID domain.StreamID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.locks[streamID]
	if !ok {
		return
	}
	l.refs--
	if l.refs <= 0 {
		delete(g.locks, streamID)
	}
}
