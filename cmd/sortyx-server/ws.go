package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sortyx/sortyx-backend/internal/push"
)

// wsWriteTimeout bounds a single event write; a client that cannot drain
// within this window is treated as dead and dropped by the hub.
const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser dashboards connect cross-origin; the API is open anyway.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsListener adapts one websocket connection to the push.Listener
// interface. Writes are serialized with a mutex because the hub may
// broadcast from multiple request goroutines.
type wsListener struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (l *wsListener) Send(ev push.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return l.conn.WriteJSON(ev)
}

func (l *wsListener) Close() error {
	return l.conn.Close()
}

// handleWebsocket upgrades the connection and registers it with the hub.
// The read loop exists only to notice disconnects; clients are not expected
// to send anything.
func (s *server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	id := s.hub.Register(&wsListener{conn: conn})

	go func() {
		defer s.hub.Deregister(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				log.Debug().Err(err).Int64("listener_id", id).Msg("Websocket client disconnected")
				return
			}
		}
	}()
}
