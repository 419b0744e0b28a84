package entity

import "time"

// Estados de una orden de picking.
const (
	PickingStatusPending   = "PENDING" // en cola, sin vendedor asignado
	PickingStatusPicking   = "PICKING" // reclamada, en recolección
	PickingStatusPicked    = "PICKED"  // todas las líneas recolectadas
	PickingStatusReady     = "READY"   // entregada al siguiente eslabón
	PickingStatusCancelled = "CANCELLED"
)

// PickingOrder orden de recolección 1:1 con la orden de venta.
// Invariantes: SellerID != nil ⇔ Status ∉ {PENDING, CANCELLED};
// PickedItems == número de items con IsPicked.
type PickingOrder struct {
	ID          string
	OrderID     string
	OrderNumber string
	SellerID    *string
	Status      string
	TotalItems  int
	PickedItems int
	Items       []*PickingItem
	AssignedAt  *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PickingItem línea a recolectar; ProductBarcode viene del catálogo para el escaneo.
type PickingItem struct {
	ID             string
	PickingOrderID string
	ProductID      string
	ProductName    string
	ProductBarcode string
	Quantity       int
	IsPicked       bool
	PickedQuantity int
	PickedAt       *time.Time
	Notes          string
}
