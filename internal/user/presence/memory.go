package presence

import (
	"context"
	"sync"
)

// MemoryRegistry is an in-process Registry for tests and single-node
// development runs without redis.
type MemoryRegistry struct {
	mu      sync.Mutex
	online  map[string]struct{}
	Signals int
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{online: make(map[string]struct{})}
}

// SetOnline marks a user connected or disconnected.
func (m *MemoryRegistry) SetOnline(id string, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if on {
		m.online[id] = struct{}{}
	} else {
		delete(m.online, id)
	}
}

func (m *MemoryRegistry) Online(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.online))
	for id := range m.online {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MemoryRegistry) NotifyChange(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Signals++
}
