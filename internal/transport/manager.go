package transport

import (
	"fmt"
	"sort"
	"sync"
)

// Manager is the registry of configured transports, keyed by slug.
type Manager struct {
	mu    sync.RWMutex
	byKey map[string]Transport
}

func NewManager() *Manager {
	return &Manager{byKey: map[string]Transport{}}
}

func (m *Manager) Register(t Transport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := t.Key()
	if key == "" {
		return fmt.Errorf("transport key must not be empty")
	}
	if _, exists := m.byKey[key]; exists {
		return fmt.Errorf("transport %q already registered", key)
	}
	m.byKey[key] = t
	return nil
}

// TransportWithKey returns the transport registered under key.
func (m *Manager) TransportWithKey(key string) (Transport, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.byKey[key]
	return t, ok
}

// ActiveTransports returns all transports currently accepting new
// messages, in stable key order.
func (m *Manager) ActiveTransports() []Transport {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.byKey))
	for k := range m.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	active := make([]Transport, 0, len(keys))
	for _, k := range keys {
		if t := m.byKey[k]; t.AcceptsNewMessages() {
			active = append(active, t)
		}
	}
	return active
}
