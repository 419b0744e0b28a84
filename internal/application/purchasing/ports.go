package purchasing

import (
	"context"

	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los repositorios
// de recepción de compras. El incremento de stock y la cantidad recibida por línea
// viajan en el mismo commit.
type TxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		poRepo repository.PurchaseOrderRepository,
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}
