package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pedidos-api/internal/application/dto"
	"github.com/tu-usuario/pedidos-api/internal/application/notifications"
)

// NotificationHandler maneja el lado de lectura de notificaciones y preferencias.
type NotificationHandler struct {
	notifier *notifications.Notifier
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(notifier *notifications.Notifier) *NotificationHandler {
	return &NotificationHandler{notifier: notifier}
}

// List godoc
// @Summary      Notificaciones del usuario autenticado
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.NotificationResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválido"})
	}
	list, err := h.notifier.List(c.Context(), GetUserID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, dto.FromNotification(n))
	}
	return c.JSON(out)
}

// UnreadCount godoc
// @Summary      Cantidad de notificaciones no leídas
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UnreadCountResponse
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.notifier.UnreadCount(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.UnreadCountResponse{Count: count})
}

// MarkRead godoc
// @Summary      Marcar una notificación como leída
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la notificación"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.notifier.MarkRead(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "notificación leída"})
}

// MarkAllRead godoc
// @Summary      Marcar todas las notificaciones como leídas
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MessageResponse
// @Router       /api/notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.notifier.MarkAllRead(c.Context(), GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "notificaciones leídas"})
}

// GetPreferences godoc
// @Summary      Preferencias de notificación vigentes
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PreferencesResponse
// @Router       /api/notifications/preferences [get]
func (h *NotificationHandler) GetPreferences(c *fiber.Ctx) error {
	p, err := h.notifier.Preferences(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.PreferencesResponse{OrderUpdates: p.OrderUpdates, Promotions: p.Promotions, Push: p.Push})
}

// UpdatePreferences godoc
// @Summary      Actualizar preferencias de notificación (parcial)
// @Tags         notifications
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PreferencesRequest  true  "order_updates?, promotions?, push?"
// @Success      200  {object}  dto.PreferencesResponse
// @Router       /api/notifications/preferences [patch]
func (h *NotificationHandler) UpdatePreferences(c *fiber.Ctx) error {
	var in dto.PreferencesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	p, err := h.notifier.UpdatePreferences(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.PreferencesResponse{OrderUpdates: p.OrderUpdates, Promotions: p.Promotions, Push: p.Push})
}
