// Package hub reenvía snapshots a los navegadores conectados por websocket.
package hub

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 200 * time.Millisecond

// Observer recibe eventos del hub (métricas).
type Observer interface {
	MessageRelayed()
	ClientConnected()
	ClientDisconnected()
}

type nopObserver struct{}

func (nopObserver) MessageRelayed()     {}
func (nopObserver) ClientConnected()    {}
func (nopObserver) ClientDisconnected() {}

type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool

	upgrader websocket.Upgrader
	log      *zap.Logger
	obs      Observer
}

func New(log *zap.Logger, obs Observer) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Hub{
		conns: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
		obs: obs,
	}
}

func (h *Hub) add(c *websocket.Conn) {
	h.obs.ClientConnected()
	h.mu.Lock()
	h.conns[c] = true
	h.mu.Unlock()
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()

	if ok {
		_ = c.Close()
		h.obs.ClientDisconnected()
	}
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	clients := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	return clients
}

// Len devuelve la cantidad de clientes conectados.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Broadcast envía b como mensaje de texto y devuelve a cuántos clientes
// llegó. Un cliente que no acepta la escritura a tiempo se desconecta. Sólo
// se cuenta como reenviado si al menos un cliente lo recibió.
func (h *Hub) Broadcast(b []byte) int {
	delivered := 0
	for _, c := range h.snapshot() {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug("dropping websocket client", zap.String("remote", c.RemoteAddr().String()), zap.Error(err))
			h.remove(c)
			continue
		}
		delivered++
	}
	if delivered > 0 {
		h.obs.MessageRelayed()
	}
	return delivered
}

// ServeHTTP acepta el upgrade y mantiene la conexión hasta que el cliente la
// cierre. Los mensajes entrantes se ignoran.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	h.add(conn)
	defer h.remove(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close desconecta a todos los clientes.
func (h *Hub) Close() {
	for _, c := range h.snapshot() {
		h.remove(c)
	}
}
