package picking

import (
	"context"

	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los repositorios
// del flujo de picking. El reclamo y la confirmación de líneas (contador + posible
// cambio de estado) son atómicos.
type TxRunner interface {
	RunPicking(ctx context.Context, fn func(
		pickingRepo repository.PickingRepository,
		orderRepo repository.OrderRepository,
	) error) error
}
