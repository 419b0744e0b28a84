package order

import "github.com/tu-usuario/pedidos-api/internal/domain/entity"

// deliveryTransitions progresión del domicilio: ASSIGNED → PICKED_UP → IN_TRANSIT →
// {DELIVERED | FAILED}; un fallo puede cerrar con la devolución a tienda (RETURNED).
var deliveryTransitions = map[string][]string{
	entity.DeliveryStatusAssigned:  {entity.DeliveryStatusPickedUp},
	entity.DeliveryStatusPickedUp:  {entity.DeliveryStatusInTransit},
	entity.DeliveryStatusInTransit: {entity.DeliveryStatusDelivered, entity.DeliveryStatusFailed},
	entity.DeliveryStatusFailed:    {entity.DeliveryStatusReturned},
	entity.DeliveryStatusDelivered: {},
	entity.DeliveryStatusReturned:  {},
}

// CanTransitionDelivery indica si el paso from → to del domicilio está permitido.
func CanTransitionDelivery(from, to string) bool {
	for _, next := range deliveryTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValidDeliveryStatus indica si el estado de domicilio existe.
func IsValidDeliveryStatus(status string) bool {
	_, ok := deliveryTransitions[status]
	return ok
}
