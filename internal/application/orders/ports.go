package orders

import (
	"context"

	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los repositorios
// que muta el flujo de órdenes. La creación (validar stock + descontar + persistir
// orden/items/historial/picking + vaciar carrito + contar cupón) y la cancelación
// son todo-o-nada: cualquier fallo revierte todos los efectos.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		pickingRepo repository.PickingRepository,
		couponRepo repository.CouponRepository,
		cartRepo repository.CartRepository,
	) error) error
}
