package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

const notificationColumns = `id, user_id, type, title, body, data, is_read, read_at, created_at`

// NotificationRepo implementación de NotificationRepository sobre PostgreSQL.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Create persiste la notificación durable del destinatario.
func (r *NotificationRepo) Create(n *entity.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.UserID, n.Type, n.Title, n.Body, n.Data, n.IsRead, n.ReadAt, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByUser notificaciones del usuario, más recientes primero.
func (r *NotificationRepo) ListByUser(userID string, limit, offset int) ([]*entity.Notification, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var list []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Data,
			&n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// CountUnread número de notificaciones no leídas del usuario.
func (r *NotificationRepo) CountUnread(userID string) (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(), `
		SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marca como leída solo si pertenece al usuario; false si no aplicó.
func (r *NotificationRepo) MarkRead(id, userID string) (bool, error) {
	tag, err := r.q.Exec(context.Background(), `
		UPDATE notifications SET is_read = true, read_at = now()
		WHERE id = $1 AND user_id = $2 AND NOT is_read`, id, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkAllRead marca todas las no leídas del usuario.
func (r *NotificationRepo) MarkAllRead(userID string) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE notifications SET is_read = true, read_at = now()
		WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// GetPreferences preferencias del usuario; sin fila devuelve los defaults (todo en true).
func (r *NotificationRepo) GetPreferences(userID string) (*entity.NotificationPreferences, error) {
	var p entity.NotificationPreferences
	err := r.q.QueryRow(context.Background(), `
		SELECT user_id, order_updates, promotions, push, updated_at
		FROM notification_preferences WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.OrderUpdates, &p.Promotions, &p.Push, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.NotificationPreferences{
				UserID:       userID,
				OrderUpdates: true,
				Promotions:   true,
				Push:         true,
				UpdatedAt:    time.Now(),
			}, nil
		}
		return nil, fmt.Errorf("get notification preferences: %w", err)
	}
	return &p, nil
}

// UpsertPreferences crea o reemplaza las preferencias del usuario.
func (r *NotificationRepo) UpsertPreferences(p *entity.NotificationPreferences) error {
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO notification_preferences (user_id, order_updates, promotions, push, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET order_updates = EXCLUDED.order_updates, promotions = EXCLUDED.promotions,
		    push = EXCLUDED.push, updated_at = EXCLUDED.updated_at`,
		p.UserID, p.OrderUpdates, p.Promotions, p.Push, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert notification preferences: %w", err)
	}
	return nil
}
