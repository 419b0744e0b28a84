package repository

import "github.com/tu-usuario/pedidos-api/internal/domain/entity"

// PurchaseOrderRepository puerto de persistencia de órdenes de compra a proveedor.
type PurchaseOrderRepository interface {
	Create(po *entity.PurchaseOrder) error
	GetByID(id string) (*entity.PurchaseOrder, error)
	// GetForUpdate bloquea la orden de compra y carga sus líneas.
	GetForUpdate(id string) (*entity.PurchaseOrder, error)
	// Update persiste status, received_at y received_by.
	Update(po *entity.PurchaseOrder) error
	UpdateItemReceived(itemID string, receivedQty int) error
	List(limit, offset int) ([]*entity.PurchaseOrder, error)
}
