package app

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// wsMessage is what browsers receive: Kind is "snapshot", "event",
// "calibration" or "status".
type wsMessage struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// hub fans messages out to websocket clients. A client whose buffer is
// full is dropped rather than stalling the MQTT callbacks.
type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func newHub() *hub {
	return &hub{clients: make(map[*wsClient]struct{})}
}

// addWith registers c with first() as its opening message. first runs
// under the hub lock, so any broadcast it does not already reflect is
// queued after it.
func (h *hub) addWith(c *wsClient, first func() ([]byte, error)) {
	h.mu.Lock()
	msg, err := first()
	if err != nil {
		log.Printf("web: opening message error: %v", err)
	} else {
		c.send <- msg
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("web: websocket client connected (total: %d)", n)
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		log.Printf("web: websocket client disconnected (total: %d)", n)
	}
}

func (h *hub) broadcast(kind string, data any) {
	msg, err := json.Marshal(wsMessage{Kind: kind, Data: data})
	if err != nil {
		log.Printf("web: %s marshal error: %v", kind, err)
		return
	}

	h.mu.Lock()
	var slow []*wsClient
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.remove(c)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump only drains control frames; the page never sends anything.
func (c *wsClient) readPump(h *hub) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
