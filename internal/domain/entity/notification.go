package entity

import (
	"encoding/json"
	"time"
)

// Tipos de notificación (coinciden con el nombre del evento en tiempo real).
const (
	NotificationNewOrder       = "newOrder"
	NotificationStatusChanged  = "orderStatusChanged"
	NotificationReadyForPickup = "orderReadyForPickup"
	NotificationOrderCancelled = "orderCancelled"
)

// Notification registro durable por destinatario; el push en vivo es best-effort,
// esta fila es el respaldo consultable si el usuario estaba desconectado.
type Notification struct {
	ID        string
	UserID    string
	Type      string
	Title     string
	Body      string
	Data      json.RawMessage
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}

// NotificationPreferences flags por usuario; todos inician en true.
type NotificationPreferences struct {
	UserID       string
	OrderUpdates bool
	Promotions   bool
	Push         bool
	UpdatedAt    time.Time
}
