package repository

import (
	"time"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
)

// InventoryMovementRepository puerto de persistencia del libro de movimientos
// (append-only: solo Create y lecturas).
type InventoryMovementRepository interface {
	Create(movement *entity.InventoryMovement) error
	GetByID(id string) (*entity.InventoryMovement, error)
	List(productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
}
