package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/punchamoorthee/bankstream/internal/domain"
)

// Memory is an in-process event store with the same revision semantics as the
// Postgres store. It backs tests and local experiments; it is not durable.
type Memory struct {
	mu      sync.Mutex
	streams map[string][]domain.Event
}

func NewMemory() *Memory {
	return &Memory{streams: make(map[string][]domain.Event)}
}

// Load returns the ordered history and current revision for an account.
func (m *Memory) Load(_ context.Context, accountID uuid.UUID) ([]domain.Event, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stream := m.streams[StreamName(accountID)]
	events := make([]domain.Event, len(stream))
	copy(events, stream)
	return events, int64(len(stream)), nil
}

// Append adds events if the stream is still at expectedRevision, otherwise
// reports ErrConflict like the Postgres store.
func (m *Memory) Append(_ context.Context, accountID uuid.UUID, events []domain.Event, expectedRevision int64) error {
	if len(events) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	name := StreamName(accountID)
	stream := m.streams[name]
	if int64(len(stream)) != expectedRevision {
		return ErrConflict
	}
	m.streams[name] = append(stream, events...)
	return nil
}
