package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub mantém os clientes conectados ao feed de rodadas liquidadas e
// transmite cada liquidação para todos eles. Os callbacks OnConnect,
// OnDisconnect e OnSent ligam o hub às métricas do binário.
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu      sync.RWMutex
	clients map[string]*websocket.Conn

	OnConnect    func()
	OnDisconnect func()
	OnSent       func()
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[string]*websocket.Conn),
	}
}

// HandleWS aceita a conexão e mantém uma goroutine de leitura só pra
// detectar a desconexão; o feed é unidirecional
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	id := fmt.Sprintf("%d", time.Now().UnixNano())
	h.add(id, conn)

	go func() {
		defer func() {
			h.remove(id)
			_ = conn.Close()
		}()
		for {
			// lê e descarta mensagens do cliente para manter o socket limpo
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) add(id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = conn
	if h.OnConnect != nil {
		h.OnConnect()
	}
	h.log.Info("feed client connected", zap.String("client_id", id))
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		if h.OnDisconnect != nil {
			h.OnDisconnect()
		}
		h.log.Info("feed client disconnected", zap.String("client_id", id))
	}
}

// Broadcast envia a liquidação para todos os clientes conectados
func (h *Hub) Broadcast(v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg, _ := json.Marshal(v)
	for id, conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("feed write failed", zap.String("client_id", id), zap.Error(err))
			_ = conn.Close()
			continue
		}
		if h.OnSent != nil {
			h.OnSent()
		}
	}
}
