// Package livetrace broadcasts trace events to websocket subscribers, so
// a browser-side viewer can watch a running postfix program the way
// this project's bytecode-VM ancestor streamed state over
// gorilla/websocket connections (pkg/vm/websocket.go, http_server.go).
// The hub is purely an ambient observation channel: it has no handle on
// any module.Frame and cannot influence execution.
package livetrace

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one broadcastable trace line.
type Event struct {
	Depth   int    `json:"depth"`
	Message string `json:"message"`
}

type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan Event
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan Event),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	ch := make(chan Event, 64)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// The read loop only exists to notice the peer going away; any
	// incoming message is discarded.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case ev := <-ch:
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

// Broadcast fans ev out to every connected subscriber. A subscriber whose
// buffer is full is skipped rather than blocked on — a slow viewer must
// never slow down the interpreter.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}

// ListenAndServe exposes the hub at ws://addr/trace. Callers typically
// run this on its own goroutine and ignore a non-nil return once the
// interpreter itself has finished.
func (h *Hub) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/trace", h.ServeHTTP)
	return http.ListenAndServe(addr, mux)
}
