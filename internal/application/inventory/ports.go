package inventory

import (
	"context"

	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza atomicidad para el libro de stock.
type TxRunner interface {
	RunInventory(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}
