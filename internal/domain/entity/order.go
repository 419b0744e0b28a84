package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden.
const (
	OrderStatusPending        = "PENDING"
	OrderStatusConfirmed      = "CONFIRMED"
	OrderStatusProcessing     = "PROCESSING"
	OrderStatusReadyForPickup = "READY_FOR_PICKUP"
	OrderStatusOutForDelivery = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      = "DELIVERED"
	OrderStatusCancelled      = "CANCELLED"
	OrderStatusRefunded       = "REFUNDED"
)

// Tipos de cumplimiento.
const (
	FulfillmentDelivery = "DELIVERY"
	FulfillmentPickup   = "PICKUP"
)

// Order agregado de la orden. Invariante: Total = Subtotal + Tax + DeliveryFee - Discount
// (redondeado a centavos); el estado solo avanza por la tabla de transiciones.
type Order struct {
	ID                string
	OrderNumber       string
	CustomerID        string
	SellerID          *string
	Status            string
	FulfillmentType   string
	Subtotal          decimal.Decimal
	Tax               decimal.Decimal
	DeliveryFee       decimal.Decimal
	Discount          decimal.Decimal
	Total             decimal.Decimal
	CouponID          *string
	DeliveryAddressID *string
	Items             []*OrderItem
	DeliveredAt       *time.Time
	CancelledAt       *time.Time
	CancelReason      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem línea de la orden; ProductName y UnitPrice son snapshot al momento de crear.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// OrderStatusHistory fila inmutable del historial de estados.
type OrderStatusHistory struct {
	ID        string
	OrderID   string
	Status    string
	ChangedBy string
	Notes     string
	CreatedAt time.Time
}
