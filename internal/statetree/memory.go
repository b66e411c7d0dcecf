package statetree

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process state tree. Writes are forwarded to the handler
// like a broker echo would, which lets the bridge be exercised without MQTT.
type Memory struct {
	mu      sync.RWMutex
	states  map[string]State
	writes  []Write
	handler WriteHandler
	now     func() time.Time
}

// Write records a single SetState call.
type Write struct {
	ID    string
	State State
}

// NewMemory creates an empty tree.
func NewMemory() *Memory {
	return &Memory{
		states: make(map[string]State),
		now:    time.Now,
	}
}

// SetState implements Store.
func (m *Memory) SetState(_ context.Context, id string, val any, ack bool) error {
	st := State{Val: val, Ack: ack, Ts: m.now()}

	m.mu.Lock()
	m.states[id] = st
	m.writes = append(m.writes, Write{ID: id, State: st})
	m.mu.Unlock()

	return nil
}

// Subscribe sets the handler invoked by Write.
func (m *Memory) Subscribe(h WriteHandler) {
	m.mu.Lock()
	m.handler = h
	m.mu.Unlock()
}

// Write simulates an external write and delivers it to the subscribed handler.
func (m *Memory) Write(id string, val any, ack bool) {
	st := State{Val: val, Ack: ack, Ts: m.now()}

	m.mu.Lock()
	m.states[id] = st
	h := m.handler
	m.mu.Unlock()

	if h != nil {
		h(id, st)
	}
}

// Get returns the current state of id.
func (m *Memory) Get(id string) (State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[id]
	return st, ok
}

// Writes returns a copy of all SetState calls in order.
func (m *Memory) Writes() []Write {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Write, len(m.writes))
	copy(out, m.writes)
	return out
}
