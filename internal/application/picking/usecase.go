package picking

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/pedidos-api/internal/application/dto"
	"github.com/tu-usuario/pedidos-api/internal/application/notifications"
	"github.com/tu-usuario/pedidos-api/internal/domain"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

// PickingUseCase coordinador de recolección: reclamo de un solo ganador, avance
// por escaneo de código de barras o confirmación manual, y entrega al siguiente
// eslabón (domicilio o recogida en tienda).
type PickingUseCase struct {
	txRunner TxRunner
	picking  repository.PickingRepository
	notifier *notifications.Notifier
}

// NewPickingUseCase construye el caso de uso.
func NewPickingUseCase(txRunner TxRunner, picking repository.PickingRepository, notifier *notifications.Notifier) *PickingUseCase {
	return &PickingUseCase{txRunner: txRunner, picking: picking, notifier: notifier}
}

// Accept reclamo de la orden por un vendedor. El UPDATE va condicionado al estado
// PENDING dentro de la misma transacción que escribe, así que con dos reclamos
// concurrentes exactamente uno gana y el otro recibe ErrAlreadyClaimed.
func (uc *PickingUseCase) Accept(ctx context.Context, orderID, sellerID string) (*entity.PickingOrder, error) {
	var claimed *entity.PickingOrder
	var updated *entity.Order
	err := uc.txRunner.RunPicking(ctx, func(
		pickingRepo repository.PickingRepository,
		orderRepo repository.OrderRepository,
	) error {
		p, err := pickingRepo.GetByOrderID(orderID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: orden de picking", domain.ErrNotFound)
		}

		now := time.Now()
		ok, err := pickingRepo.Claim(orderID, sellerID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyClaimed
		}

		// Espeja vendedor y estado (PROCESSING) en la orden de venta
		o, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: orden", domain.ErrNotFound)
		}
		if o.Status == entity.OrderStatusPending {
			// La confirmación implícita queda también en el historial
			o.Status = entity.OrderStatusConfirmed
			if err := orderRepo.UpdateStatus(o); err != nil {
				return err
			}
			if err := orderRepo.AppendHistory(&entity.OrderStatusHistory{
				OrderID: o.ID, Status: entity.OrderStatusConfirmed, ChangedBy: sellerID, CreatedAt: now,
			}); err != nil {
				return err
			}
		}
		o.Status = entity.OrderStatusProcessing
		o.SellerID = &sellerID
		o.UpdatedAt = now
		if err := orderRepo.UpdateStatus(o); err != nil {
			return err
		}
		if err := orderRepo.AppendHistory(&entity.OrderStatusHistory{
			OrderID: o.ID, Status: entity.OrderStatusProcessing, ChangedBy: sellerID,
			Notes: "picking aceptado", CreatedAt: now,
		}); err != nil {
			return err
		}
		updated = o

		claimed, err = pickingRepo.GetByOrderID(orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.StatusChanged(ctx, updated)
	return claimed, nil
}

// Scan busca la primera línea sin recolectar cuyo código de barras coincida y la
// marca con la cantidad pedida. Código ya recolectado o sin coincidencia son fallos
// esperables del operario: respuesta success:false con guía, nunca error.
func (uc *PickingUseCase) Scan(ctx context.Context, pickingOrderID, barcode, sellerID string) (*dto.ScanResult, error) {
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode requerido", domain.ErrInvalidInput)
	}

	var result *dto.ScanResult
	err := uc.txRunner.RunPicking(ctx, func(
		pickingRepo repository.PickingRepository,
		orderRepo repository.OrderRepository,
	) error {
		p, err := pickingRepo.GetForUpdate(pickingOrderID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: orden de picking", domain.ErrNotFound)
		}
		if p.SellerID == nil || *p.SellerID != sellerID {
			return fmt.Errorf("%w: la orden de picking pertenece a otro vendedor", domain.ErrForbidden)
		}
		if p.Status != entity.PickingStatusPicking && p.Status != entity.PickingStatusPicked {
			return fmt.Errorf("%w: la orden de picking está en estado %s", domain.ErrConflict, p.Status)
		}

		var target *entity.PickingItem
		alreadyPicked := false
		for _, it := range p.Items {
			if it.ProductBarcode != barcode {
				continue
			}
			if it.IsPicked {
				alreadyPicked = true
				continue
			}
			target = it
			break
		}

		if target == nil {
			if alreadyPicked {
				result = &dto.ScanResult{
					Success:       false,
					AlreadyPicked: true,
					Message:       "item ya recolectado",
					PickingStatus: p.Status,
				}
				return nil
			}
			// Sin coincidencia: enumerar lo pendiente para recuperación manual
			result = &dto.ScanResult{
				Success:       false,
				Message:       "el código no coincide con ningún item pendiente",
				PickingStatus: p.Status,
			}
			for _, it := range p.Items {
				if it.IsPicked {
					continue
				}
				result.Pending = append(result.Pending, dto.PendingProduct{
					PickingItemID: it.ID,
					ProductID:     it.ProductID,
					ProductName:   it.ProductName,
					Barcode:       it.ProductBarcode,
					Quantity:      it.Quantity,
				})
			}
			return nil
		}

		if err := uc.confirmItem(pickingRepo, p, target, ""); err != nil {
			return err
		}
		item := dto.FromPickingItem(target)
		result = &dto.ScanResult{
			Success:       true,
			Message:       fmt.Sprintf("%s recolectado", target.ProductName),
			Item:          &item,
			PickingStatus: p.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkItemPicked confirmación manual de una línea (mismos contadores que el escaneo).
func (uc *PickingUseCase) MarkItemPicked(ctx context.Context, pickingItemID, sellerID, notes string) (*entity.PickingOrder, error) {
	var updated *entity.PickingOrder
	err := uc.txRunner.RunPicking(ctx, func(
		pickingRepo repository.PickingRepository,
		orderRepo repository.OrderRepository,
	) error {
		item, err := pickingRepo.GetItemForUpdate(pickingItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: item de picking", domain.ErrNotFound)
		}
		p, err := pickingRepo.GetForUpdate(item.PickingOrderID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: orden de picking", domain.ErrNotFound)
		}
		if p.SellerID == nil || *p.SellerID != sellerID {
			return fmt.Errorf("%w: la orden de picking pertenece a otro vendedor", domain.ErrForbidden)
		}
		if item.IsPicked {
			return fmt.Errorf("%w: el item ya fue recolectado", domain.ErrConflict)
		}

		// confirmItem trabaja sobre la línea cargada en p
		for _, it := range p.Items {
			if it.ID == item.ID {
				item = it
				break
			}
		}
		if err := uc.confirmItem(pickingRepo, p, item, notes); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// confirmItem marca la línea y mantiene los invariantes del agregado:
// pickedItems == líneas con IsPicked; al llegar al total el estado pasa a PICKED.
func (uc *PickingUseCase) confirmItem(pickingRepo repository.PickingRepository, p *entity.PickingOrder, item *entity.PickingItem, notes string) error {
	now := time.Now()
	item.IsPicked = true
	item.PickedQuantity = item.Quantity
	item.PickedAt = &now
	item.Notes = notes
	if err := pickingRepo.UpdateItem(item); err != nil {
		return err
	}
	p.PickedItems++
	if p.PickedItems >= p.TotalItems {
		p.Status = entity.PickingStatusPicked
	}
	p.UpdatedAt = now
	return pickingRepo.Update(p)
}

// Complete cierra el picking (estado READY) y avanza la orden a READY_FOR_PICKUP.
// Punto de entrega al coordinador de domicilios o a la recogida en tienda.
func (uc *PickingUseCase) Complete(ctx context.Context, pickingOrderID, sellerID string) (*entity.PickingOrder, error) {
	var completed *entity.PickingOrder
	var updated *entity.Order
	err := uc.txRunner.RunPicking(ctx, func(
		pickingRepo repository.PickingRepository,
		orderRepo repository.OrderRepository,
	) error {
		p, err := pickingRepo.GetForUpdate(pickingOrderID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: orden de picking", domain.ErrNotFound)
		}
		if p.SellerID == nil || *p.SellerID != sellerID {
			return fmt.Errorf("%w: la orden de picking pertenece a otro vendedor", domain.ErrForbidden)
		}
		if p.Status != entity.PickingStatusPicking && p.Status != entity.PickingStatusPicked {
			return fmt.Errorf("%w: no se puede completar en estado %s", domain.ErrConflict, p.Status)
		}

		now := time.Now()
		p.Status = entity.PickingStatusReady
		p.CompletedAt = &now
		p.UpdatedAt = now
		if err := pickingRepo.Update(p); err != nil {
			return err
		}

		o, err := orderRepo.GetForUpdate(p.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: orden", domain.ErrNotFound)
		}
		o.Status = entity.OrderStatusReadyForPickup
		o.UpdatedAt = now
		if err := orderRepo.UpdateStatus(o); err != nil {
			return err
		}
		if err := orderRepo.AppendHistory(&entity.OrderStatusHistory{
			OrderID: o.ID, Status: entity.OrderStatusReadyForPickup, ChangedBy: sellerID,
			Notes: "picking completado", CreatedAt: now,
		}); err != nil {
			return err
		}
		updated = o
		completed = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.ReadyForPickup(ctx, updated)
	return completed, nil
}

// Queue cola del vendedor: pendientes sin reclamar más las activas propias.
func (uc *PickingUseCase) Queue(ctx context.Context, sellerID string, page dto.PageRequest) ([]*entity.PickingOrder, error) {
	page.DefaultPage()
	return uc.picking.ListQueue(sellerID, page.Limit, page.Offset)
}

// GetByID detalle de una orden de picking con sus líneas.
func (uc *PickingUseCase) GetByID(ctx context.Context, id string) (*entity.PickingOrder, error) {
	p, err := uc.picking.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
