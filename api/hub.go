package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"goflare.io/storefront"
	"goflare.io/storefront/models"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = pongWait * 9 / 10
	sendBacklog = 16
)

var _ storefront.Notifier = (*Hub)(nil)

type navClient struct {
	conn *websocket.Conn
	send chan models.NavState
}

// Hub fans nav-bar updates out to the websocket connections of each visitor.
type Hub struct {
	mu       sync.Mutex
	clients  map[string]map[*navClient]struct{}
	upgrader websocket.Upgrader
	metrics  *Metrics
	logger   *zap.Logger
}

func NewHub(allowedOrigins []string, metrics *Metrics, logger *zap.Logger) *Hub {
	h := &Hub{
		clients: make(map[string]map[*navClient]struct{}),
		metrics: metrics,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if len(allowedOrigins) > 0 {
		allowed := make(map[string]bool, len(allowedOrigins))
		for _, o := range allowedOrigins {
			allowed[o] = true
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			return allowed[r.Header.Get("Origin")]
		}
	}
	return h
}

// NotifyNav queues nav for every connection of visitorID. Slow connections
// miss updates instead of blocking the caller.
func (h *Hub) NotifyNav(visitorID string, nav models.NavState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[visitorID] {
		select {
		case c.send <- nav:
		default:
			h.logger.Debug("Dropping nav update for slow client", zap.String("visitor_id", visitorID))
		}
	}
}

// Serve upgrades the request and streams nav updates until the client leaves.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, visitorID string, initial models.NavState) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}

	c := &navClient{conn: conn, send: make(chan models.NavState, sendBacklog)}
	c.send <- initial
	h.register(visitorID, c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(c)
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.unregister(visitorID, c)
	<-done
	_ = conn.Close()
}

func (h *Hub) writeLoop(c *navClient) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case nav, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(nav); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) register(visitorID string, c *navClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[visitorID]
	if !ok {
		set = make(map[*navClient]struct{})
		h.clients[visitorID] = set
	}
	set[c] = struct{}{}
	h.metrics.navClients.Inc()
}

func (h *Hub) unregister(visitorID string, c *navClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[visitorID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, visitorID)
	}
	close(c.send)
	h.metrics.navClients.Dec()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0)
	for _, set := range h.clients {
		for c := range set {
			conns = append(conns, c.conn)
		}
	}
	h.mu.Unlock()
	for _, conn := range conns {
		_ = conn.Close()
	}
}
