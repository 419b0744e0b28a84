package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra a proveedor.
const (
	PurchaseStatusDraft     = "DRAFT"
	PurchaseStatusOrdered   = "ORDERED"
	PurchaseStatusReceived  = "RECEIVED"
	PurchaseStatusCancelled = "CANCELLED"
)

// PurchaseOrder pedido a proveedor; al recibirlo se incrementa stock (movimiento IN)
// y se actualiza ReceivedQty por línea en la misma transacción.
type PurchaseOrder struct {
	ID         string
	SupplierID string
	Status     string
	Items      []*PurchaseOrderItem
	ReceivedAt *time.Time
	ReceivedBy string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PurchaseOrderItem línea de la orden de compra.
type PurchaseOrderItem struct {
	ID              string
	PurchaseOrderID string
	ProductID       string
	OrderedQty      int
	ReceivedQty     int
	UnitCost        decimal.Decimal
}
