package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/pedidos-api/internal/application/dto"
	"github.com/tu-usuario/pedidos-api/internal/application/inventory"
	"github.com/tu-usuario/pedidos-api/internal/domain"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

// PurchasingUseCase órdenes de compra a proveedor y su recepción transaccional.
type PurchasingUseCase struct {
	txRunner TxRunner
	pos      repository.PurchaseOrderRepository
}

// NewPurchasingUseCase construye el caso de uso.
func NewPurchasingUseCase(txRunner TxRunner, pos repository.PurchaseOrderRepository) *PurchasingUseCase {
	return &PurchasingUseCase{txRunner: txRunner, pos: pos}
}

// Create registra la orden de compra en estado ORDERED.
func (uc *PurchasingUseCase) Create(ctx context.Context, in dto.CreatePurchaseOrderRequest) (*entity.PurchaseOrder, error) {
	if in.SupplierID == "" || len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: proveedor e items requeridos", domain.ErrInvalidInput)
	}
	now := time.Now()
	po := &entity.PurchaseOrder{
		ID:         uuid.New().String(),
		SupplierID: in.SupplierID,
		Status:     entity.PurchaseStatusOrdered,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, it := range in.Items {
		if it.ProductID == "" || it.OrderedQty <= 0 {
			return nil, fmt.Errorf("%w: línea con producto vacío o cantidad no positiva", domain.ErrInvalidInput)
		}
		po.Items = append(po.Items, &entity.PurchaseOrderItem{
			ID:              uuid.New().String(),
			PurchaseOrderID: po.ID,
			ProductID:       it.ProductID,
			OrderedQty:      it.OrderedQty,
			UnitCost:        it.UnitCost,
		})
	}
	if err := uc.pos.Create(po); err != nil {
		return nil, err
	}
	return po, nil
}

// Receive recepción completa: por cada línea incrementa stock (movimiento IN con la
// orden de compra como referencia) y actualiza la cantidad recibida; la orden pasa
// a RECEIVED. Todo en una transacción.
func (uc *PurchasingUseCase) Receive(ctx context.Context, poID, actorID string) (*entity.PurchaseOrder, error) {
	var received *entity.PurchaseOrder
	err := uc.txRunner.RunPurchase(ctx, func(
		poRepo repository.PurchaseOrderRepository,
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		po, err := poRepo.GetForUpdate(poID)
		if err != nil {
			return err
		}
		if po == nil {
			return fmt.Errorf("%w: orden de compra", domain.ErrNotFound)
		}
		if po.Status != entity.PurchaseStatusOrdered {
			return fmt.Errorf("%w: la orden de compra está en estado %s", domain.ErrConflict, po.Status)
		}

		now := time.Now()
		for _, it := range po.Items {
			product, err := productRepo.GetForUpdate(it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
			}
			_, err = inventory.ApplyInTx(movRepo, productRepo, product,
				entity.MovementTypeIN, it.OrderedQty, "recepción de compra", actorID, po.ID)
			if err != nil {
				return err
			}
			it.ReceivedQty = it.OrderedQty
			if err := poRepo.UpdateItemReceived(it.ID, it.ReceivedQty); err != nil {
				return err
			}
		}

		po.Status = entity.PurchaseStatusReceived
		po.ReceivedAt = &now
		po.ReceivedBy = actorID
		po.UpdatedAt = now
		if err := poRepo.Update(po); err != nil {
			return err
		}
		received = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return received, nil
}

// List órdenes de compra, más recientes primero.
func (uc *PurchasingUseCase) List(ctx context.Context, page dto.PageRequest) ([]*entity.PurchaseOrder, error) {
	page.DefaultPage()
	return uc.pos.List(page.Limit, page.Offset)
}

// GetByID orden de compra con sus líneas.
func (uc *PurchasingUseCase) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	po, err := uc.pos.GetByID(id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	return po, nil
}
