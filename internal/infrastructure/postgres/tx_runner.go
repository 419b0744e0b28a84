package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/pedidos-api/internal/application/delivery"
	"github.com/tu-usuario/pedidos-api/internal/application/inventory"
	"github.com/tu-usuario/pedidos-api/internal/application/orders"
	"github.com/tu-usuario/pedidos-api/internal/application/picking"
	"github.com/tu-usuario/pedidos-api/internal/application/purchasing"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

// Ensure TxRunner implements los puertos transaccionales de cada flujo.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ orders.TxRunner = (*TxRunner)(nil)
var _ picking.TxRunner = (*TxRunner)(nil)
var _ delivery.TxRunner = (*TxRunner)(nil)
var _ purchasing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Cada método Run*
// ata al tx exactamente los repositorios que su flujo muta; Commit si el callback
// retorna nil, Rollback en cualquier otro caso.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunInventory transacción del libro de stock (movimientos manuales y ajustes).
func (r *TxRunner) RunInventory(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewInventoryMovementRepository(tx), NewProductRepository(tx))
	})
}

// RunOrder transacción de creación/cancelación/estado de órdenes.
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	pickingRepo repository.PickingRepository,
	couponRepo repository.CouponRepository,
	cartRepo repository.CartRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(
			NewOrderRepository(tx),
			NewInventoryMovementRepository(tx),
			NewProductRepository(tx),
			NewPickingRepository(tx),
			NewCouponRepository(tx),
			NewCartRepository(tx),
		)
	})
}

// RunPicking transacción del flujo de picking (reclamo, escaneo, cierre).
func (r *TxRunner) RunPicking(ctx context.Context, fn func(
	pickingRepo repository.PickingRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewPickingRepository(tx), NewOrderRepository(tx))
	})
}

// RunDelivery transacción del flujo de domicilios (asignación, estado, calificación).
func (r *TxRunner) RunDelivery(ctx context.Context, fn func(
	deliveryRepo repository.DeliveryRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewDeliveryRepository(tx), NewOrderRepository(tx))
	})
}

// RunPurchase transacción de recepción de órdenes de compra.
func (r *TxRunner) RunPurchase(ctx context.Context, fn func(
	poRepo repository.PurchaseOrderRepository,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewPurchaseOrderRepository(tx), NewInventoryMovementRepository(tx), NewProductRepository(tx))
	})
}
