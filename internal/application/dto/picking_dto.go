package dto

import (
	"time"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
)

// ScanItemRequest entrada de POST /seller/picking/:id/scan.
type ScanItemRequest struct {
	Barcode string `json:"barcode"`
}

// ManualPickRequest entrada de POST /seller/picking/:itemId/manual-pick.
type ManualPickRequest struct {
	Notes string `json:"notes,omitempty"`
}

// PendingProduct producto aún no recolectado, para recuperación manual tras un
// escaneo sin coincidencia.
type PendingProduct struct {
	PickingItemID string `json:"picking_item_id"`
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	Barcode       string `json:"barcode"`
	Quantity      int    `json:"quantity"`
}

// ScanResult resultado del escaneo. Los fallos esperables del operario
// (código ya recolectado, código sin coincidencia) van como success:false,
// nunca como error HTTP.
type ScanResult struct {
	Success       bool                 `json:"success"`
	Message       string               `json:"message"`
	AlreadyPicked bool                 `json:"already_picked,omitempty"`
	Item          *PickingItemResponse `json:"item,omitempty"`
	Pending       []PendingProduct     `json:"pending,omitempty"`
	PickingStatus string               `json:"picking_status,omitempty"`
}

// PickingItemResponse línea de picking.
type PickingItemResponse struct {
	ID             string     `json:"id"`
	ProductID      string     `json:"product_id"`
	ProductName    string     `json:"product_name"`
	Barcode        string     `json:"barcode"`
	Quantity       int        `json:"quantity"`
	IsPicked       bool       `json:"is_picked"`
	PickedQuantity int        `json:"picked_quantity"`
	PickedAt       *time.Time `json:"picked_at,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

// PickingOrderResponse orden de picking con sus líneas.
type PickingOrderResponse struct {
	ID          string                `json:"id"`
	OrderID     string                `json:"order_id"`
	OrderNumber string                `json:"order_number"`
	SellerID    *string               `json:"seller_id,omitempty"`
	Status      string                `json:"status"`
	TotalItems  int                   `json:"total_items"`
	PickedItems int                   `json:"picked_items"`
	Items       []PickingItemResponse `json:"items"`
	AssignedAt  *time.Time            `json:"assigned_at,omitempty"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// FromPickingItem mapea la línea a su representación HTTP.
func FromPickingItem(it *entity.PickingItem) PickingItemResponse {
	return PickingItemResponse{
		ID:             it.ID,
		ProductID:      it.ProductID,
		ProductName:    it.ProductName,
		Barcode:        it.ProductBarcode,
		Quantity:       it.Quantity,
		IsPicked:       it.IsPicked,
		PickedQuantity: it.PickedQuantity,
		PickedAt:       it.PickedAt,
		Notes:          it.Notes,
	}
}

// FromPickingOrder mapea la orden de picking a su representación HTTP.
func FromPickingOrder(p *entity.PickingOrder) PickingOrderResponse {
	items := make([]PickingItemResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, FromPickingItem(it))
	}
	return PickingOrderResponse{
		ID:          p.ID,
		OrderID:     p.OrderID,
		OrderNumber: p.OrderNumber,
		SellerID:    p.SellerID,
		Status:      p.Status,
		TotalItems:  p.TotalItems,
		PickedItems: p.PickedItems,
		Items:       items,
		AssignedAt:  p.AssignedAt,
		CompletedAt: p.CompletedAt,
		CreatedAt:   p.CreatedAt,
	}
}
