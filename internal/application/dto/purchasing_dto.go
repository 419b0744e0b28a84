package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
)

// PurchaseItemRequest línea al crear una orden de compra.
type PurchaseItemRequest struct {
	ProductID  string          `json:"product_id"`
	OrderedQty int             `json:"ordered_qty"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest entrada de POST /purchasing.
type CreatePurchaseOrderRequest struct {
	SupplierID string                `json:"supplier_id"`
	Items      []PurchaseItemRequest `json:"items"`
}

// PurchaseItemResponse línea de la orden de compra.
type PurchaseItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	OrderedQty  int             `json:"ordered_qty"`
	ReceivedQty int             `json:"received_qty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// PurchaseOrderResponse orden de compra con sus líneas.
type PurchaseOrderResponse struct {
	ID         string                 `json:"id"`
	SupplierID string                 `json:"supplier_id"`
	Status     string                 `json:"status"`
	Items      []PurchaseItemResponse `json:"items"`
	ReceivedAt *time.Time             `json:"received_at,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// FromPurchaseOrder mapea la entidad a su representación HTTP.
func FromPurchaseOrder(po *entity.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseItemResponse, 0, len(po.Items))
	for _, it := range po.Items {
		items = append(items, PurchaseItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			OrderedQty:  it.OrderedQty,
			ReceivedQty: it.ReceivedQty,
			UnitCost:    it.UnitCost,
		})
	}
	return PurchaseOrderResponse{
		ID:         po.ID,
		SupplierID: po.SupplierID,
		Status:     po.Status,
		Items:      items,
		ReceivedAt: po.ReceivedAt,
		CreatedAt:  po.CreatedAt,
	}
}
