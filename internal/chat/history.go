package chat

import (
	"context"
	"sync"
)

// Message is one turn of the assistant conversation.
type Message struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// maxHistory caps the number of turns kept per session; older turns are
// dropped so prompts stay bounded.
const maxHistory = 40

// HistoryStore keeps per-session conversation history for the chat
// assistant.
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, messages ...Message) error
	Get(ctx context.Context, sessionID string) ([]Message, error)
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore is the in-process HistoryStore used when Redis is not
// configured.
type MemoryStore struct {
	sessions map[string][]Message
	mu       sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]Message),
	}
}

func (m *MemoryStore) Append(ctx context.Context, sessionID string, messages ...Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := append(m.sessions[sessionID], messages...)
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	m.sessions[sessionID] = history
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, sessionID string) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := m.sessions[sessionID]
	out := make([]Message, len(history))
	copy(out, history)
	return out, nil
}

func (m *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
