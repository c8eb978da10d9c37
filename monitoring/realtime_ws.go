package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// StatsHub pushes periodic stats snapshots to connected websocket clients.
type StatsHub struct {
	stats    *Stats
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool

	upgrader websocket.Upgrader
	done     chan struct{}
	once     sync.Once
}

// NewStatsHub creates a hub broadcasting snapshots of stats every interval.
func NewStatsHub(stats *Stats, interval time.Duration, log *zap.Logger) *StatsHub {
	hub := &StatsHub{
		stats:    stats,
		interval: interval,
		log:      log,
		clients:  make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		done: make(chan struct{}),
	}
	go hub.run()
	return hub
}

func (h *StatsHub) run() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.broadcast()
		case <-h.done:
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *StatsHub) broadcast() {
	payload, err := json.Marshal(h.stats.Snapshot())
	if err != nil {
		h.log.Warn("stats marshal failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// HandleWebSocket upgrades the request and registers the client for snapshot
// pushes. Clients are read-only; incoming messages are drained and dropped.
func (h *StatsHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	total := len(h.clients)
	h.mu.Unlock()
	h.log.Info("stats client connected", zap.Int("total", total))

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Stop closes the hub and all client connections.
func (h *StatsHub) Stop() {
	h.once.Do(func() { close(h.done) })
}
