package sessions

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrUnknown = errors.New("unknown session")
	ErrExpired = errors.New("session expired")
)

// Registry controla quais sessões estão vivas. Touch cria ou renova a
// sessão com o TTL configurado; Check falha para sessão desconhecida ou
// vencida.
type Registry interface {
	Touch(ctx context.Context, sessionID string) error
	Check(ctx context.Context, sessionID string) error
}

// Memory é o registro default, com prazos guardados em mapa
type Memory struct {
	ttl time.Duration

	mu       sync.Mutex
	deadline map[string]time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, deadline: make(map[string]time.Time)}
}

func (m *Memory) Touch(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadline[sessionID] = time.Now().Add(m.ttl)
	return nil
}

func (m *Memory) Check(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dl, ok := m.deadline[sessionID]
	if !ok {
		return ErrUnknown
	}
	if time.Now().After(dl) {
		delete(m.deadline, sessionID)
		return ErrExpired
	}
	// atividade renova o prazo
	m.deadline[sessionID] = time.Now().Add(m.ttl)
	return nil
}
