// internal/api/websocket.go
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/slavodej/screenwright/internal/screenplay"
	"github.com/slavodej/screenwright/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

// wsClient is one editor connection watching a script.
type wsClient struct {
	conn     *websocket.Conn
	scriptID string
	send     chan []byte
	closed   int32
}

func (client *wsClient) close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		client.conn.Close()
	}
}

func (client *wsClient) isClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

// EventHub fans document events out to the WebSocket connections
// watching each script. Events originate from Document subscribers, so
// every state transition a client causes over HTTP is echoed to every
// watcher of the same script.
type EventHub struct {
	mu      sync.RWMutex
	clients map[string]map[*wsClient]bool // scriptID -> clients
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]map[*wsClient]bool),
	}
}

// Attach subscribes the hub to a document's events so they reach the
// script's watchers. Called once when a script is opened.
func (h *EventHub) Attach(scriptID string, doc *screenplay.Document) {
	doc.Subscribe(func(ev screenplay.Event) {
		h.broadcast(scriptID, ev)
	})
}

func (h *EventHub) register(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.scriptID] == nil {
		h.clients[client.scriptID] = make(map[*wsClient]bool)
	}
	h.clients[client.scriptID][client] = true
}

func (h *EventHub) unregister(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.scriptID]; ok {
		if clients[client] {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.clients, client.scriptID)
		}
	}
}

func (h *EventHub) broadcast(scriptID string, ev screenplay.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[scriptID] {
		if client.isClosed() {
			continue
		}
		select {
		case client.send <- payload:
		default:
			// Slow consumer, drop the event rather than block the
			// document mutation path.
			utils.GetLogger().Warn("websocket send queue full, event dropped", map[string]interface{}{
				"script_id": scriptID,
				"event":     string(ev.Type),
			})
		}
	}
}

// WatcherCount reports how many connections watch a script.
func (h *EventHub) WatcherCount(scriptID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[scriptID])
}

// ServeScript upgrades the request and pumps document events to the
// client until it disconnects.
func (h *EventHub) ServeScript(c *gin.Context, scriptID string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.GetLogger().Error("websocket upgrade failed", map[string]interface{}{
			"err": err.Error(),
		})
		return
	}

	client := &wsClient{
		conn:     conn,
		scriptID: scriptID,
		send:     make(chan []byte, 64),
	}
	h.register(client)

	go h.writePump(client)
	go h.readPump(client)
}

func (h *EventHub) writePump(client *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		client.close()
	}()

	for {
		select {
		case payload, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; the socket is a one-way event feed
// and only exists so pings and the close handshake work.
func (h *EventHub) readPump(client *wsClient) {
	defer func() {
		h.unregister(client)
		client.close()
	}()

	client.conn.SetReadLimit(1024)
	client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
