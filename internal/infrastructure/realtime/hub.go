package realtime

import (
	"encoding/json"
	"sync"

	"github.com/tu-usuario/pedidos-api/internal/application/notifications"
	"github.com/tu-usuario/pedidos-api/pkg/logger"
)

var _ notifications.Broadcaster = (*Hub)(nil)

// Envelope mensaje saliente por el websocket: nombre del evento más payload.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client conexión websocket autenticada. Send está bufferizado; si el cliente no
// drena a tiempo se descartan mensajes en vez de bloquear el hub (push best-effort).
type Client struct {
	UserID string
	Role   string
	Send   chan []byte

	closeOnce sync.Once
}

// Close cierra el canal de salida una sola vez.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// Hub registro en memoria de conexiones, indexadas por sala personal (user:{id})
// y sala por rol (role:{ROL}). La membresía sale del token de la conexión, nunca
// de input del cliente. Proceso único, sin backplane.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	log   *logger.Logger
}

// NewHub construye el hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		log:   log,
	}
}

func userRoom(userID string) string { return "user:" + userID }
func roleRoom(role string) string   { return "role:" + role }

// Register suscribe la conexión a su sala personal y a la de su rol.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range []string{userRoom(c.UserID), roleRoom(c.Role)} {
		if h.rooms[room] == nil {
			h.rooms[room] = make(map[*Client]struct{})
		}
		h.rooms[room][c] = struct{}{}
	}
}

// Unregister quita la conexión de sus salas y cierra su canal.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	for _, room := range []string{userRoom(c.UserID), roleRoom(c.Role)} {
		delete(h.rooms[room], c)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
	c.Close()
}

// ToUser emite el evento a todas las conexiones del usuario.
func (h *Hub) ToUser(userID, event string, payload any) {
	h.emit(userRoom(userID), event, payload)
}

// ToRole emite el evento a todas las conexiones del rol.
func (h *Hub) ToRole(role, event string, payload any) {
	h.emit(roleRoom(role), event, payload)
}

func (h *Hub) emit(room, event string, payload any) {
	msg, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("no se pudo serializar el evento")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		select {
		case c.Send <- msg:
		default:
			// cliente lento: se descarta el push, la notificación durable ya está en BD
			h.log.Warn().Str("room", room).Str("event", event).Msg("buffer lleno, push descartado")
		}
	}
}

// CountConnections número de conexiones de una sala (para tests y health).
func (h *Hub) CountConnections(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
