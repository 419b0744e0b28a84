package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"         // entrada (recepción de compra)
	MovementTypeOUT        = "OUT"        // salida (venta / orden)
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste manual al valor absoluto
	MovementTypeRETURN     = "RETURN"     // devolución (cancelación de orden)
	MovementTypeDAMAGE     = "DAMAGE"     // baja por daño
	MovementTypeTRANSFER   = "TRANSFER"   // traslado fuera de la tienda
)

// InventoryMovement registro inmutable del libro de stock. Quantity guarda |delta|;
// PreviousStock/NewStock dejan el antes/después para auditoría completa.
type InventoryMovement struct {
	ID            string
	ProductID     string
	Type          string
	Quantity      int
	PreviousStock int
	NewStock      int
	Reason        string
	PerformedBy   string
	ReferenceID   string // id de la orden / orden de compra que originó el movimiento
	CreatedAt     time.Time
}
