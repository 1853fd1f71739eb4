// Package websocket pushes session updates (run lifecycle, recorded clicks)
// to connected map clients and receives click events from them.
package websocket

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mbetancur/basinview/internal/api/middleware"
	"github.com/mbetancur/basinview/internal/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// ClickHandler receives coordinate events emitted by a session's map surface.
type ClickHandler func(sessionID string, lat, lon float64)

// Hub is a plain WebSocket fan-out keyed by session id.
type Hub struct {
	onClick ClickHandler

	mu      sync.RWMutex
	clients map[*websocket.Conn]*clientInfo
}

type clientInfo struct {
	sessionID string
	writeMu   sync.Mutex
}

// clientMessage is an inbound event from the map page.
type clientMessage struct {
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// NewHub creates a hub. onClick may be nil.
func NewHub(onClick ClickHandler) *Hub {
	return &Hub{
		onClick: onClick,
		clients: make(map[*websocket.Conn]*clientInfo),
	}
}

// HandleUpdates handles WebSocket connections. The session id must already be
// resolved by the auth middleware.
func (h *Hub) HandleUpdates(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("[ws] upgrade error: %v", err)
		return
	}
	defer conn.Close()

	info := &clientInfo{sessionID: sessionID}
	h.mu.Lock()
	h.clients[conn] = info
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	logger.Infof("[ws] client connected: session %s", sessionID)

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warnf("[ws] read error: %v", err)
			}
			break
		}
		switch msg.Type {
		case "click":
			if h.onClick != nil {
				h.onClick(sessionID, msg.Lat, msg.Lon)
			}
		default:
			logger.Debugf("[ws] unknown event %q from session %s", msg.Type, sessionID)
		}
	}

	logger.Infof("[ws] client disconnected: session %s", sessionID)
}

// EmitToSession sends a payload to every client of the session.
func (h *Hub) EmitToSession(sessionID string, payload any) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	infos := make([]*clientInfo, 0, len(h.clients))
	for conn, info := range h.clients {
		if info.sessionID == sessionID {
			conns = append(conns, conn)
			infos = append(infos, info)
		}
	}
	h.mu.RUnlock()

	for i, conn := range conns {
		info := infos[i]
		info.writeMu.Lock()
		err := conn.WriteJSON(payload)
		info.writeMu.Unlock()
		if err != nil {
			logger.Warnf("[ws] write to session %s failed: %v", sessionID, err)
		}
	}
}
