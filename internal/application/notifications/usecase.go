package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tu-usuario/pedidos-api/internal/application/dto"
	"github.com/tu-usuario/pedidos-api/internal/domain"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
	"github.com/tu-usuario/pedidos-api/pkg/logger"
)

// Notifier fan-out de notificaciones: persiste una fila por destinatario y luego
// intenta el push en vivo (persist-then-broadcast). Se invoca siempre después del
// Commit de la operación que originó el evento; los fallos de push solo se loguean.
type Notifier struct {
	repo        repository.NotificationRepository
	userRepo    repository.UserRepository
	broadcaster Broadcaster
	log         *logger.Logger
}

// NewNotifier construye el fan-out.
func NewNotifier(repo repository.NotificationRepository, userRepo repository.UserRepository, broadcaster Broadcaster, log *logger.Logger) *Notifier {
	return &Notifier{repo: repo, userRepo: userRepo, broadcaster: broadcaster, log: log}
}

// orderPayload datos que viajan en la notificación y en el evento en vivo.
type orderPayload struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

func payloadFor(o *entity.Order) orderPayload {
	return orderPayload{OrderID: o.ID, OrderNumber: o.OrderNumber, Status: o.Status}
}

// NewOrder avisa a los roles de staff (ADMIN/MANAGER/SELLER) que entró una orden.
func (n *Notifier) NewOrder(ctx context.Context, o *entity.Order) {
	title := "Nueva orden"
	body := fmt.Sprintf("Orden %s recibida, %d items", o.OrderNumber, len(o.Items))
	n.fanOutToRoles(entity.StaffRoles, entity.NotificationNewOrder, title, body, payloadFor(o))
}

// StatusChanged avisa al cliente dueño de la orden que el estado cambió.
func (n *Notifier) StatusChanged(ctx context.Context, o *entity.Order) {
	prefs := n.prefs(o.CustomerID)
	if !prefs.OrderUpdates {
		return
	}
	title := "Tu orden cambió de estado"
	body := fmt.Sprintf("Orden %s: %s", o.OrderNumber, o.Status)
	n.persist(o.CustomerID, entity.NotificationStatusChanged, title, body, payloadFor(o))
	if prefs.Push {
		n.broadcaster.ToUser(o.CustomerID, entity.NotificationStatusChanged, payloadFor(o))
	}
}

// ReadyForPickup avisa al pool de repartidores y al cliente que la orden quedó lista.
func (n *Notifier) ReadyForPickup(ctx context.Context, o *entity.Order) {
	title := "Orden lista"
	body := fmt.Sprintf("Orden %s lista para recoger", o.OrderNumber)
	n.fanOutToRoles([]string{entity.RoleDelivery}, entity.NotificationReadyForPickup, title, body, payloadFor(o))

	prefs := n.prefs(o.CustomerID)
	if !prefs.OrderUpdates {
		return
	}
	n.persist(o.CustomerID, entity.NotificationReadyForPickup, title, body, payloadFor(o))
	if prefs.Push {
		n.broadcaster.ToUser(o.CustomerID, entity.NotificationReadyForPickup, payloadFor(o))
	}
}

// OrderCancelled avisa al staff que una orden fue cancelada (el cliente recibe
// su propio orderStatusChanged).
func (n *Notifier) OrderCancelled(ctx context.Context, o *entity.Order) {
	title := "Orden cancelada"
	body := fmt.Sprintf("Orden %s cancelada", o.OrderNumber)
	n.fanOutToRoles(entity.StaffRoles, entity.NotificationOrderCancelled, title, body, payloadFor(o))
}

// fanOutToRoles persiste una fila por cada usuario del rol y emite a la sala del rol.
func (n *Notifier) fanOutToRoles(roles []string, event, title, body string, payload orderPayload) {
	for _, role := range roles {
		users, err := n.userRepo.ListByRole(role)
		if err != nil {
			n.log.Error().Err(err).Str("role", role).Msg("fan-out: listar usuarios del rol")
			continue
		}
		for _, u := range users {
			n.persist(u.ID, event, title, body, payload)
		}
		n.broadcaster.ToRole(role, event, payload)
	}
}

func (n *Notifier) persist(userID, event, title, body string, payload orderPayload) {
	data, _ := json.Marshal(payload)
	err := n.repo.Create(&entity.Notification{
		UserID:    userID,
		Type:      event,
		Title:     title,
		Body:      body,
		Data:      data,
		CreatedAt: time.Now(),
	})
	if err != nil {
		n.log.Error().Err(err).Str("user_id", userID).Str("event", event).Msg("fan-out: persistir notificación")
	}
}

func (n *Notifier) prefs(userID string) *entity.NotificationPreferences {
	p, err := n.repo.GetPreferences(userID)
	if err != nil || p == nil {
		// Sin fila o con error de lectura: defaults (todo activo)
		return &entity.NotificationPreferences{UserID: userID, OrderUpdates: true, Promotions: true, Push: true}
	}
	return p
}

// ─── Lado de lectura ─────────────────────────────────────────────────────────

// List notificaciones del usuario, más recientes primero.
func (n *Notifier) List(ctx context.Context, userID string, page dto.PageRequest) ([]*entity.Notification, error) {
	page.DefaultPage()
	return n.repo.ListByUser(userID, page.Limit, page.Offset)
}

// UnreadCount cantidad de no leídas del usuario.
func (n *Notifier) UnreadCount(ctx context.Context, userID string) (int, error) {
	return n.repo.CountUnread(userID)
}

// MarkRead marca una notificación propia como leída.
func (n *Notifier) MarkRead(ctx context.Context, id, userID string) error {
	ok, err := n.repo.MarkRead(id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// MarkAllRead marca todas las notificaciones del usuario como leídas.
func (n *Notifier) MarkAllRead(ctx context.Context, userID string) error {
	return n.repo.MarkAllRead(userID)
}

// Preferences preferencias vigentes (defaults si no hay fila).
func (n *Notifier) Preferences(ctx context.Context, userID string) (*entity.NotificationPreferences, error) {
	return n.prefs(userID), nil
}

// UpdatePreferences aplica cambios parciales sobre las preferencias.
func (n *Notifier) UpdatePreferences(ctx context.Context, userID string, in dto.PreferencesRequest) (*entity.NotificationPreferences, error) {
	p := n.prefs(userID)
	if in.OrderUpdates != nil {
		p.OrderUpdates = *in.OrderUpdates
	}
	if in.Promotions != nil {
		p.Promotions = *in.Promotions
	}
	if in.Push != nil {
		p.Push = *in.Push
	}
	p.UpdatedAt = time.Now()
	if err := n.repo.UpsertPreferences(p); err != nil {
		return nil, err
	}
	return p, nil
}
