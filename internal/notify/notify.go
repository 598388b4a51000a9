// Package notify implements the alert fan-out used by the budget ledger.
// Notifications are ephemeral: they are delivered synchronously to every
// registered observer at creation time and never persisted.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Notification is one textual alert.
type Notification struct {
	RecipientID string    `json:"recipient_id,omitempty"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Read        bool      `json:"read"`
}

// Observer receives notifications. A slow observer blocks the broadcast and
// an observer failure propagates to the caller; observers are expected to be
// small and local.
type Observer interface {
	Notify(n *Notification)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(n *Notification)

// Notify implements Observer.
func (f ObserverFunc) Notify(n *Notification) { f(n) }

// Hub is an append-only registry of observers with synchronous broadcast.
type Hub struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Register appends an observer. Observers cannot be removed.
func (h *Hub) Register(o Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, o)
}

// Count returns the number of registered observers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// Broadcast creates a Notification and delivers the same instance to every
// observer in registration order.
func (h *Hub) Broadcast(message string) *Notification {
	n := &Notification{
		Message:   message,
		Timestamp: time.Now(),
	}

	h.mu.RLock()
	observers := make([]Observer, len(h.observers))
	copy(observers, h.observers)
	h.mu.RUnlock()

	for _, o := range observers {
		o.Notify(n)
	}
	return n
}

// LogObserver writes every notification to a structured logger.
type LogObserver struct {
	Log zerolog.Logger
}

// Notify implements Observer.
func (o *LogObserver) Notify(n *Notification) {
	o.Log.Warn().
		Time("at", n.Timestamp).
		Str("message", n.Message).
		Msg("Budget alert")
}
