package http

import (
	"context"
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pedidos-api/internal/application/notifications"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
	"github.com/tu-usuario/pedidos-api/internal/infrastructure/realtime"
	"github.com/tu-usuario/pedidos-api/pkg/jwt"
	"github.com/tu-usuario/pedidos-api/pkg/logger"
)

// WSHandler conexión websocket de notificaciones en vivo. El handshake autentica
// con ?token= (los navegadores no mandan headers en websockets) y la membresía a
// salas se deriva del token, nunca del input del cliente.
type WSHandler struct {
	hub      *realtime.Hub
	notifier *notifications.Notifier
	users    repository.UserRepository
	secret   string
	log      *logger.Logger
}

// NewWSHandler construye el handler.
func NewWSHandler(hub *realtime.Hub, notifier *notifications.Notifier, users repository.UserRepository, secret string, log *logger.Logger) *WSHandler {
	return &WSHandler{hub: hub, notifier: notifier, users: users, secret: secret, log: log}
}

// Upgrade middleware previo: valida el token y marca la petición como upgradable.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	token := c.Query("token")
	if token == "" {
		return fiber.ErrUnauthorized
	}
	userID, role, err := jwt.Parse(h.secret, token)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	u, err := h.users.GetByID(userID)
	if err != nil || u == nil || !u.IsActive {
		return fiber.ErrUnauthorized
	}
	c.Locals(LocalUserID, userID)
	c.Locals(LocalRole, role)
	return c.Next()
}

// clientCommand mensaje entrante del cliente por el websocket.
type clientCommand struct {
	Action         string `json:"action"` // markAsRead | markAllAsRead
	NotificationID string `json:"notification_id,omitempty"`
}

// Serve bucle de la conexión: registra en el hub, bombea salientes y atiende
// comandos de lectura del cliente.
func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(LocalUserID).(string)
		role, _ := conn.Locals(LocalRole).(string)

		client := &realtime.Client{
			UserID: userID,
			Role:   role,
			Send:   make(chan []byte, 32),
		}
		h.hub.Register(client)
		defer h.hub.Unregister(client)

		// Bomba de salida: del hub al socket
		done := make(chan struct{})
		go func() {
			defer close(done)
			for msg := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}()

		// Bucle de entrada: comandos del cliente
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var cmd clientCommand
			if err := json.Unmarshal(raw, &cmd); err != nil {
				continue
			}
			ctx := context.Background()
			switch cmd.Action {
			case "markAsRead":
				if err := h.notifier.MarkRead(ctx, cmd.NotificationID, userID); err != nil {
					h.log.Warn().Err(err).Str("user_id", userID).Msg("ws: markAsRead")
				}
			case "markAllAsRead":
				if err := h.notifier.MarkAllRead(ctx, userID); err != nil {
					h.log.Warn().Err(err).Str("user_id", userID).Msg("ws: markAllAsRead")
				}
			}
		}

		// Salir de las salas antes de cerrar el canal: un emit concurrente
		// sobre un canal cerrado haría panic en el hub.
		h.hub.Unregister(client)
		<-done
	})
}
