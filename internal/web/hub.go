package web

import (
	"encoding/json"
	"sync"

	"github.com/andrevmm/ondeestou/internal/logger"
)

// client is one websocket subscriber with a buffered outbound queue.
type client struct {
	send chan []byte
}

// hub fans events out to every connected websocket client. Slow clients
// whose buffers fill up are dropped rather than allowed to stall the
// broadcast loop.
type hub struct {
	log *logger.Logger

	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

func newHub(log *logger.Logger) *hub {
	return &hub{
		log:        log,
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// run is the hub's main loop; call as a goroutine. Returns after stop.
func (h *hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("web: client connected (%d total)", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("web: client disconnected (%d remaining)", n)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
					h.log.Warn("web: dropped slow client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// broadcastJSON encodes v and queues it for every client. Messages are
// dropped when the broadcast channel is full.
func (h *hub) broadcastJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("web: marshal broadcast: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.Warn("web: broadcast channel full, dropping event")
	}
}

// stop terminates the run loop and disconnects every client. Idempotent.
func (h *hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
