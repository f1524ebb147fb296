// Package push fans classification and sensor events out to live
// listeners. Delivery is best-effort: one listener's failure never blocks
// the others, and a failed listener is dropped from the registry.
package push

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Event kinds broadcast by the server.
const (
	EventClassificationComplete = "classification_complete"
	EventSensorUpdate           = "sensor_update"
)

// Event is one broadcast message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Listener receives broadcast events. Send must report delivery failure via
// its error; a non-nil error deregisters the listener.
type Listener interface {
	Send(Event) error
	// Close releases the listener's transport after deregistration.
	Close() error
}

// Hub is the registry of live listeners.
type Hub struct {
	mu        sync.Mutex
	nextID    atomic.Int64
	listeners map[int64]Listener
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[int64]Listener)}
}

// Register adds l to the live set and returns its handle for Deregister.
func (h *Hub) Register(l Listener) int64 {
	id := h.nextID.Add(1)
	h.mu.Lock()
	h.listeners[id] = l
	n := len(h.listeners)
	h.mu.Unlock()

	log.Info().Int64("listener_id", id).Int("live_listeners", n).Msg("Push listener registered")
	return id
}

// Deregister removes the listener by handle and closes it. Safe to call
// for an already-removed handle.
func (h *Hub) Deregister(id int64) {
	h.mu.Lock()
	l, ok := h.listeners[id]
	delete(h.listeners, id)
	n := len(h.listeners)
	h.mu.Unlock()

	if !ok {
		return
	}
	if err := l.Close(); err != nil {
		log.Debug().Err(err).Int64("listener_id", id).Msg("Listener close failed")
	}
	log.Info().Int64("listener_id", id).Int("live_listeners", n).Msg("Push listener deregistered")
}

// Len returns the number of live listeners.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// Broadcast delivers ev to every live listener. It iterates a snapshot of
// the registry, so listeners registering or deregistering concurrently are
// safe; a listener whose Send fails is deregistered and the loop continues.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	snapshot := make(map[int64]Listener, len(h.listeners))
	for id, l := range h.listeners {
		snapshot[id] = l
	}
	h.mu.Unlock()

	if len(snapshot) == 0 {
		return
	}

	var failed int
	for id, l := range snapshot {
		if err := l.Send(ev); err != nil {
			failed++
			log.Warn().Err(err).Int64("listener_id", id).Str("event", ev.Type).Msg("Push delivery failed, dropping listener")
			h.Deregister(id)
		}
	}

	log.Debug().
		Str("event", ev.Type).
		Int("listeners", len(snapshot)).
		Int("failed", failed).
		Msg("Event broadcast complete")
}
