// Package event is a small synchronous publish/subscribe bus used by the
// session to notify its collaborators (autosave, shell output) of changes.
package event

import (
	"sync"

	"github.com/bethropolis/textforge/internal/logger"
)

// Handler is called for each dispatched event of a subscribed type.
// It returns true if the event was consumed, which stops further handlers.
type Handler func(e Event) bool

// Manager handles event subscriptions and dispatching.
type Manager struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewManager creates a new event manager.
func NewManager() *Manager {
	return &Manager{
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe adds a handler for one or more event types.
func (m *Manager) Subscribe(handler Handler, types ...Type) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range types {
		m.handlers[t] = append(m.handlers[t], handler)
		logger.DebugTagf("event", "Event Manager: handler subscribed to %v", t)
	}
}

// Dispatch runs the handlers of eventType synchronously, in subscription order.
// Handlers may subscribe further handlers; those see the next dispatch only.
func (m *Manager) Dispatch(eventType Type, data interface{}) {
	e := Event{Type: eventType, Data: data}

	m.mu.RLock()
	handlers := make([]Handler, len(m.handlers[eventType]))
	copy(handlers, m.handlers[eventType])
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}
	logger.DebugTagf("event", "Event Manager: dispatching %v to %d handler(s)", eventType, len(handlers))

	for _, handler := range handlers {
		if handler(e) {
			break
		}
	}
}
