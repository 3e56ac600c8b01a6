// 文件路径: internal/event/hub.go
// 模块说明: 按餐厅分组的 WebSocket 广播。每个连接一个写协程，慢连接会被直接断开。
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// HubOptions 配置广播中心。
type HubOptions struct {
	AllowedOrigins []string // 空或包含 "*" 时不校验 Origin
	SendBuffer     int
	PingInterval   time.Duration
	WriteTimeout   time.Duration
}

// Hub broadcasts StatusChanged frames to the dashboards of one restaurant.
type Hub struct {
	logger   *slog.Logger
	opts     HubOptions
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// NewHub 创建广播中心。
func NewHub(logger *slog.Logger, opts HubOptions) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 16
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	h := &Hub{
		logger:  logger.With("component", "event_hub"),
		opts:    opts,
		clients: make(map[int64]map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// Publish implements Publisher. Clients whose buffer is full are dropped.
func (h *Hub) Publish(_ context.Context, ev StatusChanged) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode status event: %w", err)
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[ev.RestaurantID]))
	for c := range h.clients[ev.RestaurantID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- payload:
		case <-c.done:
		default:
			h.logger.Warn("dropping slow websocket client", "restaurant_id", ev.RestaurantID)
			h.remove(ev.RestaurantID, c)
		}
	}
	return nil
}

// Serve upgrades the request and streams events for restaurantID until the
// peer disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, restaurantID int64) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}
	c := &client{conn: conn, send: make(chan []byte, h.opts.SendBuffer), done: make(chan struct{})}
	if !h.add(restaurantID, c) {
		c.close()
		return fmt.Errorf("event hub closed / 广播中心已关闭")
	}
	h.logger.Debug("websocket client connected", "restaurant_id", restaurantID)

	go h.writeLoop(c)
	h.readLoop(c)
	h.remove(restaurantID, c)
	h.logger.Debug("websocket client disconnected", "restaurant_id", restaurantID)
	return nil
}

// Clients returns the number of open connections for restaurantID.
func (h *Hub) Clients(restaurantID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[restaurantID])
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	all := h.clients
	h.clients = make(map[int64]map[*client]struct{})
	h.mu.Unlock()

	for _, set := range all {
		for c := range set {
			c.close()
		}
	}
}

func (h *Hub) add(restaurantID int64, c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[restaurantID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[restaurantID] = set
	}
	set[c] = struct{}{}
	return true
}

func (h *Hub) remove(restaurantID int64, c *client) {
	h.mu.Lock()
	if set, ok := h.clients[restaurantID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, restaurantID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// readLoop 只用于感知断开与响应 pong，客户端发来的内容全部丢弃。
func (h *Hub) readLoop(c *client) {
	wait := h.opts.PingInterval * 2
	_ = c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
