package repository

import "github.com/tu-usuario/pedidos-api/internal/domain/entity"

// NotificationRepository puerto de persistencia de notificaciones (persist-then-broadcast:
// la fila se escribe siempre antes del push en vivo).
type NotificationRepository interface {
	Create(n *entity.Notification) error
	ListByUser(userID string, limit, offset int) ([]*entity.Notification, error)
	CountUnread(userID string) (int, error)
	// MarkRead marca como leída solo si pertenece al usuario; false si no aplicó.
	MarkRead(id, userID string) (bool, error)
	MarkAllRead(userID string) error
	// GetPreferences devuelve las preferencias del usuario, con defaults si no hay fila.
	GetPreferences(userID string) (*entity.NotificationPreferences, error)
	UpsertPreferences(p *entity.NotificationPreferences) error
}
