package chatlog

import (
	"context"
	"sync"
	"time"

	"github.com/mahtabthestranger/Mdilink/internal/model/chat"
)

// DefaultHistoryLimit is used when callers ask for a non-positive limit.
const DefaultHistoryLimit = 10

// Store records answered exchanges for signed-in users.
type Store interface {
	Save(ctx context.Context, exchange chat.Exchange) error
	// History returns the most recent exchanges, oldest first.
	History(ctx context.Context, userID, userType string, limit int) ([]chat.Exchange, error)
	Close() error
}

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	exchanges []chat.Exchange
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{exchanges: make([]chat.Exchange, 0, 16)}
}

// Save appends exchange, stamping it when CreatedAt is zero.
func (s *MemoryStore) Save(_ context.Context, exchange chat.Exchange) error {
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.exchanges = append(s.exchanges, exchange)
	s.mu.Unlock()
	return nil
}

// History returns up to limit exchanges of the given user in chronological order.
func (s *MemoryStore) History(_ context.Context, userID, userType string, limit int) ([]chat.Exchange, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]chat.Exchange, 0, limit)
	for i := len(s.exchanges) - 1; i >= 0 && len(matched) < limit; i-- {
		ex := s.exchanges[i]
		if ex.UserID == userID && ex.UserType == userType {
			matched = append(matched, ex)
		}
	}

	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return matched, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
