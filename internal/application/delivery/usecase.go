package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/pedidos-api/internal/application/notifications"
	"github.com/tu-usuario/pedidos-api/internal/domain"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	domainorder "github.com/tu-usuario/pedidos-api/internal/domain/order"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
	"github.com/tu-usuario/pedidos-api/pkg/logger"
)

// DeliveryUseCase coordinador de domicilios: reclamo de un solo repartidor por
// orden, progresión de estado restringida al repartidor asignado, pings de
// posición y calificación post-entrega.
type DeliveryUseCase struct {
	txRunner   TxRunner
	deliveries repository.DeliveryRepository
	users      repository.UserRepository
	cache      LocationCache
	notifier   *notifications.Notifier
	log        *logger.Logger
}

// NewDeliveryUseCase construye el caso de uso. cache puede ser nil.
func NewDeliveryUseCase(
	txRunner TxRunner,
	deliveries repository.DeliveryRepository,
	users repository.UserRepository,
	cache LocationCache,
	notifier *notifications.Notifier,
	log *logger.Logger,
) *DeliveryUseCase {
	return &DeliveryUseCase{txRunner: txRunner, deliveries: deliveries, users: users, cache: cache, notifier: notifier, log: log}
}

// Assign crea el domicilio (ASSIGNED) y pasa la orden a OUT_FOR_DELIVERY. El INSERT
// va con ON CONFLICT (order_id) DO NOTHING: si la orden ya tiene domicilio el
// segundo reclamante recibe ErrConflict.
func (uc *DeliveryUseCase) Assign(ctx context.Context, orderID, deliveryPersonID string) (*entity.Delivery, error) {
	courier, err := uc.users.GetByID(deliveryPersonID)
	if err != nil {
		return nil, err
	}
	if courier == nil || courier.Role != entity.RoleDelivery || !courier.IsActive {
		return nil, fmt.Errorf("%w: el usuario no es un repartidor activo", domain.ErrInvalidInput)
	}

	var created *entity.Delivery
	var updated *entity.Order
	err = uc.txRunner.RunDelivery(ctx, func(
		deliveryRepo repository.DeliveryRepository,
		orderRepo repository.OrderRepository,
	) error {
		o, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: orden", domain.ErrNotFound)
		}
		if o.FulfillmentType != entity.FulfillmentDelivery {
			return fmt.Errorf("%w: la orden es de recogida en tienda", domain.ErrInvalidInput)
		}
		if !domainorder.CanTransition(o.Status, entity.OrderStatusOutForDelivery) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, o.Status, entity.OrderStatusOutForDelivery)
		}

		now := time.Now()
		d := &entity.Delivery{
			OrderID:          o.ID,
			OrderNumber:      o.OrderNumber,
			DeliveryPersonID: deliveryPersonID,
			Status:           entity.DeliveryStatusAssigned,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		ok, err := deliveryRepo.Create(d)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: la orden ya tiene un domicilio asignado", domain.ErrConflict)
		}

		o.Status = entity.OrderStatusOutForDelivery
		o.UpdatedAt = now
		if err := orderRepo.UpdateStatus(o); err != nil {
			return err
		}
		if err := orderRepo.AppendHistory(&entity.OrderStatusHistory{
			OrderID: o.ID, Status: entity.OrderStatusOutForDelivery, ChangedBy: deliveryPersonID,
			Notes: "domicilio asignado", CreatedAt: now,
		}); err != nil {
			return err
		}
		created = d
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.StatusChanged(ctx, updated)
	return created, nil
}

// UpdateStatus progresión del domicilio por parte del repartidor asignado.
// DELIVERED estampa hora, calcula minutos transcurridos y propaga a la orden.
func (uc *DeliveryUseCase) UpdateStatus(ctx context.Context, deliveryID, newStatus, actorID, failureReason string) (*entity.Delivery, error) {
	if !domainorder.IsValidDeliveryStatus(newStatus) {
		return nil, fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, newStatus)
	}
	if newStatus == entity.DeliveryStatusFailed && failureReason == "" {
		return nil, fmt.Errorf("%w: un fallo requiere failure_reason", domain.ErrInvalidInput)
	}

	var result *entity.Delivery
	var deliveredOrder *entity.Order
	err := uc.txRunner.RunDelivery(ctx, func(
		deliveryRepo repository.DeliveryRepository,
		orderRepo repository.OrderRepository,
	) error {
		d, err := deliveryRepo.GetForUpdate(deliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("%w: domicilio", domain.ErrNotFound)
		}
		if d.DeliveryPersonID != actorID {
			return fmt.Errorf("%w: el domicilio pertenece a otro repartidor", domain.ErrForbidden)
		}
		if !domainorder.CanTransitionDelivery(d.Status, newStatus) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, d.Status, newStatus)
		}

		now := time.Now()
		d.Status = newStatus
		d.UpdatedAt = now
		switch newStatus {
		case entity.DeliveryStatusPickedUp:
			d.PickedUpAt = &now
		case entity.DeliveryStatusDelivered:
			d.DeliveredAt = &now
			if d.PickedUpAt != nil {
				mins := int(now.Sub(*d.PickedUpAt).Minutes())
				d.ElapsedMinutes = &mins
			}
		case entity.DeliveryStatusFailed:
			d.FailureReason = failureReason
		}
		if err := deliveryRepo.Update(d); err != nil {
			return err
		}

		// DELIVERED se propaga a la orden dentro de la misma transacción
		if newStatus == entity.DeliveryStatusDelivered {
			o, err := orderRepo.GetForUpdate(d.OrderID)
			if err != nil {
				return err
			}
			if o == nil {
				return fmt.Errorf("%w: orden", domain.ErrNotFound)
			}
			if !domainorder.CanTransition(o.Status, entity.OrderStatusDelivered) {
				return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, o.Status, entity.OrderStatusDelivered)
			}
			o.Status = entity.OrderStatusDelivered
			o.DeliveredAt = &now
			o.UpdatedAt = now
			if err := orderRepo.UpdateStatus(o); err != nil {
				return err
			}
			if err := orderRepo.AppendHistory(&entity.OrderStatusHistory{
				OrderID: o.ID, Status: entity.OrderStatusDelivered, ChangedBy: actorID,
				Notes: "entregado por domicilio", CreatedAt: now,
			}); err != nil {
				return err
			}
			deliveredOrder = o
		}
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if deliveredOrder != nil {
		uc.notifier.StatusChanged(ctx, deliveredOrder)
	}
	return result, nil
}

// UpdateLocation ping periódico del cliente del repartidor: fila de historial +
// snapshot en la fila del domicilio + cache. Sin transacción amplia: es una
// sobreescritura idempotente sin dependencias de orden con otros campos.
func (uc *DeliveryUseCase) UpdateLocation(ctx context.Context, deliveryID string, lat, lng float64, actorID string) error {
	d, err := uc.deliveries.GetByID(deliveryID)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("%w: domicilio", domain.ErrNotFound)
	}
	if d.DeliveryPersonID != actorID {
		return fmt.Errorf("%w: el domicilio pertenece a otro repartidor", domain.ErrForbidden)
	}
	if err := uc.deliveries.UpdateLocation(deliveryID, lat, lng); err != nil {
		return err
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, deliveryID, lat, lng); err != nil {
			// Cache caído no afecta el snapshot persistido
			uc.log.Warn().Err(err).Str("delivery_id", deliveryID).Msg("cache de posición")
		}
	}
	return nil
}

// Locations historial de pings del domicilio. Un repartidor solo consulta sus
// propios domicilios; el staff puede ver cualquiera.
func (uc *DeliveryUseCase) Locations(ctx context.Context, deliveryID, actorID, role string, limit int) ([]*entity.DeliveryLocation, error) {
	d, err := uc.deliveries.GetByID(deliveryID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: domicilio", domain.ErrNotFound)
	}
	if role == entity.RoleDelivery && d.DeliveryPersonID != actorID {
		return nil, fmt.Errorf("%w: el domicilio pertenece a otro repartidor", domain.ErrForbidden)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return uc.deliveries.ListLocations(deliveryID, limit)
}

// Rate calificación 1–5, una sola vez, solo después de DELIVERED y solo por el
// cliente dueño de la orden.
func (uc *DeliveryUseCase) Rate(ctx context.Context, deliveryID string, rating int, comment, customerID string) (*entity.Delivery, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: la calificación debe estar entre 1 y 5", domain.ErrInvalidInput)
	}

	var rated *entity.Delivery
	err := uc.txRunner.RunDelivery(ctx, func(
		deliveryRepo repository.DeliveryRepository,
		orderRepo repository.OrderRepository,
	) error {
		d, err := deliveryRepo.GetForUpdate(deliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("%w: domicilio", domain.ErrNotFound)
		}
		o, err := orderRepo.GetByID(d.OrderID)
		if err != nil {
			return err
		}
		if o == nil || o.CustomerID != customerID {
			return fmt.Errorf("%w: la orden pertenece a otro cliente", domain.ErrForbidden)
		}
		if d.Status != entity.DeliveryStatusDelivered {
			return fmt.Errorf("%w: solo se califica una entrega completada", domain.ErrConflict)
		}
		if d.Rating != nil {
			return fmt.Errorf("%w: la entrega ya fue calificada", domain.ErrConflict)
		}
		d.Rating = &rating
		d.RatingComment = comment
		d.UpdatedAt = time.Now()
		if err := deliveryRepo.Update(d); err != nil {
			return err
		}
		rated = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rated, nil
}

// ListActive domicilios activos del repartidor, con la última posición conocida
// desde el cache cuando está disponible.
func (uc *DeliveryUseCase) ListActive(ctx context.Context, deliveryPersonID string) ([]*entity.Delivery, error) {
	list, err := uc.deliveries.ListActiveByPerson(deliveryPersonID)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		for _, d := range list {
			lat, lng, ok, err := uc.cache.Get(ctx, d.ID)
			if err != nil {
				uc.log.Warn().Err(err).Str("delivery_id", d.ID).Msg("cache de posición")
				continue
			}
			if ok {
				d.CurrentLatitude = &lat
				d.CurrentLongitude = &lng
			}
		}
	}
	return list, nil
}
