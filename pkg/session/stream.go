package session

import (
	"log/slog"
	"sync"

	"github.com/aretw0/pkiviz/internal/logging"
	"github.com/aretw0/pkiviz/pkg/domain"
)

// DefaultStreamBuffer is the per-subscriber buffer of pending diffs.
const DefaultStreamBuffer = 10

// StreamManager fans view diffs out to subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan *domain.ViewDiff]struct{}
	buffer      int
	logger      *slog.Logger
}

// NewStreamManager creates a manager with the given per-subscriber buffer.
func NewStreamManager(buffer int, logger *slog.Logger) *StreamManager {
	if buffer <= 0 {
		buffer = DefaultStreamBuffer
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[chan *domain.ViewDiff]struct{}),
		buffer:      buffer,
		logger:      logger,
	}
}

// Subscribe registers a new subscriber. The returned cancel func unregisters
// it and closes the channel; it is safe to call more than once.
func (sm *StreamManager) Subscribe() (<-chan *domain.ViewDiff, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan *domain.ViewDiff, sm.buffer)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Broadcast delivers diff to every subscriber without blocking.
func (sm *StreamManager) Broadcast(diff *domain.ViewDiff) {
	if diff == nil {
		return
	}
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- diff:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("Stream subscriber buffer full, dropping diff", "session_id", diff.SessionID)
		}
	}
}

// Len returns the number of active subscribers.
func (sm *StreamManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// CloseAll unregisters and closes every subscriber.
func (sm *StreamManager) CloseAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for ch := range sm.subscribers {
		delete(sm.subscribers, ch)
		close(ch)
	}
}
