package repository

import (
	"time"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
)

// PickingRepository puerto de persistencia de órdenes de picking.
type PickingRepository interface {
	// Create persiste la orden de picking con una línea por item de la orden.
	Create(p *entity.PickingOrder) error
	GetByID(id string) (*entity.PickingOrder, error)
	GetByOrderID(orderID string) (*entity.PickingOrder, error)
	// GetForUpdate bloquea la orden de picking y carga sus líneas.
	GetForUpdate(id string) (*entity.PickingOrder, error)
	GetByOrderIDForUpdate(orderID string) (*entity.PickingOrder, error)
	// Claim asignación atómica de un solo ganador: UPDATE condicionado a status PENDING.
	// Devuelve false si otra transacción ya reclamó la orden.
	Claim(orderID, sellerID string, now time.Time) (bool, error)
	// Update persiste status, contador de recolectadas, vendedor y timestamps.
	Update(p *entity.PickingOrder) error
	GetItemForUpdate(itemID string) (*entity.PickingItem, error)
	UpdateItem(item *entity.PickingItem) error
	// ListQueue cola del vendedor: pendientes sin reclamar más las activas propias.
	ListQueue(sellerID string, limit, offset int) ([]*entity.PickingOrder, error)
}
