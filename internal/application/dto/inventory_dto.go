package dto

import (
	"time"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
)

// RegisterMovementRequest entrada de POST /inventory/movements.
// Para ADJUSTMENT, Quantity es el nuevo total absoluto.
type RegisterMovementRequest struct {
	ProductID   string `json:"product_id"`
	Type        string `json:"type"` // IN | OUT | ADJUSTMENT | RETURN | DAMAGE | TRANSFER
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason,omitempty"`
	ReferenceID string `json:"reference_id,omitempty"`
}

// AdjustStockRequest entrada de POST /inventory/adjust (delta con signo).
type AdjustStockRequest struct {
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason,omitempty"`
}

// MovementResponse movimiento del libro de stock.
type MovementResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	Reason        string    `json:"reason,omitempty"`
	PerformedBy   string    `json:"performed_by"`
	ReferenceID   string    `json:"reference_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// MovementListQuery filtros de GET /inventory/movements.
type MovementListQuery struct {
	ProductID string `query:"product_id"`
	From      string `query:"from"` // RFC 3339
	To        string `query:"to"`
	PageRequest
}

// LowStockResponse fila del reporte de stock bajo.
type LowStockResponse struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Stock     int    `json:"stock"`
	MinStock  int    `json:"min_stock"`
	Deficit   int    `json:"deficit"`
}

// FromMovement mapea la entidad a su representación HTTP.
func FromMovement(m *entity.InventoryMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Reason:        m.Reason,
		PerformedBy:   m.PerformedBy,
		ReferenceID:   m.ReferenceID,
		CreatedAt:     m.CreatedAt,
	}
}
