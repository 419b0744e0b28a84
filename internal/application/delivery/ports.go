package delivery

import (
	"context"

	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los repositorios
// del flujo de domicilios. La asignación (reclamo) y la propagación del estado
// terminal a la orden son atómicas.
type TxRunner interface {
	RunDelivery(ctx context.Context, fn func(
		deliveryRepo repository.DeliveryRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// LocationCache snapshot de la última posición del repartidor, fuera de la ruta
// transaccional (los pings son de alto volumen). Nil-safe: sin cache el snapshot
// queda solo en la fila del domicilio.
type LocationCache interface {
	Set(ctx context.Context, deliveryID string, lat, lng float64) error
	Get(ctx context.Context, deliveryID string) (lat, lng float64, ok bool, err error)
}
