package viewer

import (
	"net/http"
	"sync"
	"time"

	"cpubars/internal/metrics"
	"cpubars/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: sameOrigin,
}

// sameOrigin accepts requests without an Origin header (non-browser clients)
// and browsers loading the page from this viewer.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// Hub fans every committed HTML body out to the attached browsers. A newly
// attached browser immediately receives the latest body.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
	latest     []byte
	logger     *utils.Logger
	metrics    *metrics.Metrics
}

// NewHub creates a hub; call Run to start it.
func NewHub(logger *utils.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
		metrics:    m,
	}
}

// Run owns the client set until Stop is called.
func (h *Hub) Run() {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case conn := <-h.register:
			h.mutex.Lock()
			h.clients[conn] = true
			latest := h.latest
			h.mutex.Unlock()
			h.updateGauge()
			h.logf("Viewer client connected")
			if latest != nil {
				h.writeTo(conn, websocket.TextMessage, latest)
			}

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()
			h.updateGauge()
			h.logf("Viewer client disconnected")

		case message := <-h.broadcast:
			h.writeToClients(websocket.TextMessage, message)

		case <-pingTicker.C:
			h.writePingToClients()

		case <-h.done:
			h.mutex.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			h.updateGauge()
			return
		}
	}
}

// Stop closes every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) writeTo(conn *websocket.Conn, messageType int, payload []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.writeLocked(conn, messageType, payload)
}

func (h *Hub) writeLocked(conn *websocket.Conn, messageType int, payload []byte) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.logf("WebSocket set write deadline error: %v", err)
	}
	if err := conn.WriteMessage(messageType, payload); err != nil {
		h.logf("WebSocket write error: %v", err)
		conn.Close()
		delete(h.clients, conn)
	}
}

func (h *Hub) writeToClients(messageType int, payload []byte) {
	h.mutex.Lock()
	for conn := range h.clients {
		h.writeLocked(conn, messageType, payload)
	}
	h.mutex.Unlock()
	h.updateGauge()
}

func (h *Hub) writePingToClients() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		deadline := time.Now().Add(writeWait)
		if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			h.logf("WebSocket ping error: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Broadcast records body as the latest view and queues it for every client.
// It never blocks once the hub has stopped.
func (h *Hub) Broadcast(body []byte) {
	h.mutex.Lock()
	h.latest = body
	h.mutex.Unlock()
	select {
	case h.broadcast <- body:
	case <-h.done:
	}
}

// Latest returns the most recent body, or nil.
func (h *Hub) Latest() []byte {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.latest
}

// GetClientCount returns the number of attached browsers.
func (h *Hub) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) updateGauge() {
	if h.metrics != nil {
		h.metrics.ViewerClients.Set(float64(h.GetClientCount()))
	}
}

// HandleWebSocket upgrades the request and keeps reading until the browser
// leaves. Browsers never send anything meaningful; reads only track pongs
// and close frames.
func (h *Hub) HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logf("WebSocket upgrade error: %v", err)
			return
		}

		conn.SetReadLimit(1024)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		select {
		case h.register <- conn:
		case <-h.done:
			conn.Close()
			return
		}

		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNoStatusReceived) {
					h.logf("WebSocket error: %v", err)
				}
				break
			}
		}
	}
}

func (h *Hub) logf(format string, args ...interface{}) {
	utils.Logf(h.logger, format, args...)
}
