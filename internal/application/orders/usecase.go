package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pedidos-api/internal/application/dto"
	"github.com/tu-usuario/pedidos-api/internal/application/inventory"
	"github.com/tu-usuario/pedidos-api/internal/application/notifications"
	"github.com/tu-usuario/pedidos-api/internal/domain"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	domainorder "github.com/tu-usuario/pedidos-api/internal/domain/order"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

// Config parámetros del flujo de órdenes.
type Config struct {
	DeliveryFee decimal.Decimal // tarifa plana para órdenes DELIVERY
	OrderPrefix string          // prefijo del consecutivo, ej. "ORD"
}

// OrderUseCase ciclo de vida de la orden: creación transaccional, máquina de
// estados con historial, cancelación con devolución de stock y tracking.
type OrderUseCase struct {
	txRunner  TxRunner
	orders    repository.OrderRepository
	addresses repository.AddressRepository
	notifier  *notifications.Notifier
	cfg       Config
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	txRunner TxRunner,
	orders repository.OrderRepository,
	addresses repository.AddressRepository,
	notifier *notifications.Notifier,
	cfg Config,
) *OrderUseCase {
	if cfg.OrderPrefix == "" {
		cfg.OrderPrefix = "ORD"
	}
	return &OrderUseCase{txRunner: txRunner, orders: orders, addresses: addresses, notifier: notifier, cfg: cfg}
}

// GetByID orden con sus items; el cliente solo puede ver las propias, el staff todas.
func (uc *OrderUseCase) GetByID(ctx context.Context, orderID, actorID, actorRole string) (*entity.Order, error) {
	o, err := uc.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if actorRole == entity.RoleCustomer && o.CustomerID != actorID {
		return nil, domain.ErrForbidden
	}
	return o, nil
}

// ListMine órdenes del cliente, más recientes primero.
func (uc *OrderUseCase) ListMine(ctx context.Context, customerID string, page dto.PageRequest) ([]*entity.Order, error) {
	page.DefaultPage()
	return uc.orders.ListByCustomer(customerID, page.Limit, page.Offset)
}

// Tracking proyección de solo lectura: estado actual + historial ordenado.
func (uc *OrderUseCase) Tracking(ctx context.Context, orderID, actorID, actorRole string) (*dto.TrackingResponse, error) {
	o, err := uc.GetByID(ctx, orderID, actorID, actorRole)
	if err != nil {
		return nil, err
	}
	history, err := uc.orders.ListHistory(orderID)
	if err != nil {
		return nil, err
	}
	resp := &dto.TrackingResponse{OrderID: o.ID, OrderNumber: o.OrderNumber, Status: o.Status}
	for _, h := range history {
		resp.History = append(resp.History, dto.StatusHistoryResponse{
			Status:    h.Status,
			ChangedBy: h.ChangedBy,
			Notes:     h.Notes,
			CreatedAt: h.CreatedAt,
		})
	}
	return resp, nil
}

// UpdateStatus avanza la orden por la tabla de transiciones; cualquier arista fuera
// de la tabla se rechaza y el estado queda intacto. Un paso a CANCELLED devuelve el
// stock de cada línea igual que la cancelación del cliente.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, orderID, newStatus, actorID, notes string) (*entity.Order, error) {
	if !domainorder.IsValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, newStatus)
	}

	var updated *entity.Order
	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		pickingRepo repository.PickingRepository,
		couponRepo repository.CouponRepository,
		cartRepo repository.CartRepository,
	) error {
		o, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if !domainorder.CanTransition(o.Status, newStatus) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, o.Status, newStatus)
		}
		if newStatus == entity.OrderStatusCancelled {
			return uc.cancelInTx(orderRepo, movRepo, productRepo, pickingRepo, couponRepo, o, actorID, notes, &updated)
		}

		now := time.Now()
		o.Status = newStatus
		o.UpdatedAt = now
		if newStatus == entity.OrderStatusDelivered {
			o.DeliveredAt = &now
		}
		if err := orderRepo.UpdateStatus(o); err != nil {
			return err
		}
		if err := orderRepo.AppendHistory(&entity.OrderStatusHistory{
			OrderID:   o.ID,
			Status:    newStatus,
			ChangedBy: actorID,
			Notes:     notes,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.StatusChanged(ctx, updated)
	return updated, nil
}

// Cancel cancelación por el cliente dueño, permitida solo desde PENDING o CONFIRMED.
// Devuelve el stock de cada línea (movimiento RETURN), cancela la orden de picking
// compañera y revierte el contador del cupón — todo en una transacción.
func (uc *OrderUseCase) Cancel(ctx context.Context, orderID, customerID, reason string) (*entity.Order, error) {
	var cancelled *entity.Order
	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		pickingRepo repository.PickingRepository,
		couponRepo repository.CouponRepository,
		cartRepo repository.CartRepository,
	) error {
		o, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if o.CustomerID != customerID {
			return fmt.Errorf("%w: la orden pertenece a otro cliente", domain.ErrForbidden)
		}
		if !domainorder.CanCancel(o.Status) {
			return fmt.Errorf("%w: no se puede cancelar en estado %s", domain.ErrConflict, o.Status)
		}
		return uc.cancelInTx(orderRepo, movRepo, productRepo, pickingRepo, couponRepo, o, customerID, reason, &cancelled)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.StatusChanged(ctx, cancelled)
	uc.notifier.OrderCancelled(ctx, cancelled)
	return cancelled, nil
}

// cancelInTx efectos comunes de la cancelación dentro de la transacción del caller.
// La orden debe venir bloqueada con GetForUpdate.
func (uc *OrderUseCase) cancelInTx(
	orderRepo repository.OrderRepository,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	pickingRepo repository.PickingRepository,
	couponRepo repository.CouponRepository,
	o *entity.Order, actorID, reason string,
	out **entity.Order,
) error {
	now := time.Now()

	// Devolución de stock por línea, con su movimiento RETURN en el libro
	for _, it := range o.Items {
		product, err := productRepo.GetForUpdate(it.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
		}
		_, err = inventory.ApplyInTx(movRepo, productRepo, product,
			entity.MovementTypeRETURN, it.Quantity, "cancelación de orden", actorID, o.ID)
		if err != nil {
			return err
		}
	}

	// Orden de picking compañera → CANCELLED (si aún no terminó)
	picking, err := pickingRepo.GetByOrderIDForUpdate(o.ID)
	if err != nil {
		return err
	}
	if picking != nil && picking.Status != entity.PickingStatusCancelled && picking.Status != entity.PickingStatusReady {
		picking.Status = entity.PickingStatusCancelled
		picking.SellerID = nil
		picking.UpdatedAt = now
		if err := pickingRepo.Update(picking); err != nil {
			return err
		}
	}

	// Revertir el contador de usos del cupón
	if o.CouponID != nil {
		if err := couponRepo.DecrementUsage(*o.CouponID); err != nil {
			return err
		}
	}

	o.Status = entity.OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	if err := orderRepo.UpdateStatus(o); err != nil {
		return err
	}
	if err := orderRepo.AppendHistory(&entity.OrderStatusHistory{
		OrderID:   o.ID,
		Status:    entity.OrderStatusCancelled,
		ChangedBy: actorID,
		Notes:     reason,
		CreatedAt: now,
	}); err != nil {
		return err
	}
	*out = o
	return nil
}
