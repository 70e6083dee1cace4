package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-organizer/internal/service"
)

const widgetWriteTimeout = 5 * time.Second

type widgetMessage struct {
	Type     string          `json:"type"`
	Subjects json.RawMessage `json:"subjects"`
	SentAt   time.Time       `json:"sentAt"`
}

// WidgetHub streams the widget subject list to attached widget hosts over
// websocket. It is a widget sink: every delivered push is broadcast, and new
// clients receive the latest list on connect.
type WidgetHub struct {
	logger  *zap.Logger
	metrics *service.MetricsService
	origins []string

	ctx    context.Context
	cancel context.CancelFunc

	// sendMu orders broadcasts and the initial snapshot of a new client.
	sendMu sync.Mutex

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
	latest  json.RawMessage
}

// NewWidgetHub constructs a hub. origins lists accepted Origin host
// patterns; empty accepts any.
func NewWidgetHub(origins []string, metrics *service.MetricsService, logger *zap.Logger) *WidgetHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WidgetHub{
		logger:  logger,
		metrics: metrics,
		origins: origins,
		ctx:     ctx,
		cancel:  cancel,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Name identifies the sink in logs and metrics.
func (h *WidgetHub) Name() string {
	return "websocket"
}

// SaveSubjects records payload as the latest list and sends it to every
// client. Clients that cannot be written to are dropped.
func (h *WidgetHub) SaveSubjects(ctx context.Context, payload []byte) error {
	data, err := json.Marshal(widgetMessage{Type: "subjects", Subjects: payload, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	h.mu.Lock()
	h.latest = append(json.RawMessage(nil), payload...)
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
	}
	h.mu.Unlock()

	for _, conn := range clients {
		writeCtx, cancel := context.WithTimeout(ctx, widgetWriteTimeout)
		err := conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.logger.Debug("widget client write failed", zap.Error(err))
			h.remove(conn)
		}
	}
	return nil
}

// Clients returns the number of attached clients.
func (h *WidgetHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and keeps the client attached until it
// disconnects or the hub closes.
func (h *WidgetHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.logger.Warn("widget stream upgrade failed", zap.Error(err))
		return
	}

	count := h.attach(conn)
	h.metrics.SetWidgetClients(count)
	h.logger.Info("widget client connected", zap.Int("clients", count))

	h.readLoop(conn)
}

// attach registers conn and sends it the latest list before any later
// broadcast can reach it.
func (h *WidgetHub) attach(conn *websocket.Conn) int {
	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	latest := h.latest
	h.mu.Unlock()

	if latest == nil {
		latest = json.RawMessage("[]")
	}
	if data, err := json.Marshal(widgetMessage{Type: "subjects", Subjects: latest, SentAt: time.Now().UTC()}); err == nil {
		ctx, cancel := context.WithTimeout(h.ctx, widgetWriteTimeout)
		_ = conn.Write(ctx, websocket.MessageText, data)
		cancel()
	}
	return count
}

// readLoop blocks until the client goes away; incoming messages are ignored.
func (h *WidgetHub) readLoop(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.Read(h.ctx); err != nil {
			return
		}
	}
}

func (h *WidgetHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, conn)
	count := len(h.clients)
	h.mu.Unlock()

	_ = conn.Close(websocket.StatusNormalClosure, "")
	h.metrics.SetWidgetClients(count)
	h.logger.Info("widget client disconnected", zap.Int("clients", count))
}

// Close disconnects every client.
func (h *WidgetHub) Close() {
	h.cancel()
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()
	for conn := range clients {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
	h.metrics.SetWidgetClients(0)
}
