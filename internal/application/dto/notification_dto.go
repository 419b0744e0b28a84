package dto

import (
	"encoding/json"
	"time"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
)

// NotificationResponse notificación persistida del usuario.
type NotificationResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnreadCountResponse respuesta de GET /notifications/unread-count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// PreferencesRequest entrada de PATCH /notifications/preferences.
// Punteros para distinguir "no enviado" de false.
type PreferencesRequest struct {
	OrderUpdates *bool `json:"order_updates,omitempty"`
	Promotions   *bool `json:"promotions,omitempty"`
	Push         *bool `json:"push,omitempty"`
}

// PreferencesResponse preferencias vigentes del usuario.
type PreferencesResponse struct {
	OrderUpdates bool `json:"order_updates"`
	Promotions   bool `json:"promotions"`
	Push         bool `json:"push"`
}

// FromNotification mapea la entidad a su representación HTTP.
func FromNotification(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
