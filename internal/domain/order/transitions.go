package order

import "github.com/tu-usuario/pedidos-api/internal/domain/entity"

// transitions tabla dirigida de transiciones de estado de la orden (sin ciclos).
// READY_FOR_PICKUP → OUT_FOR_DELIVERY permite que el repartidor reclame una orden
// que picking ya dejó lista; CANCELLED y REFUNDED son terminales.
var transitions = map[string][]string{
	entity.OrderStatusPending:        {entity.OrderStatusConfirmed, entity.OrderStatusCancelled},
	entity.OrderStatusConfirmed:      {entity.OrderStatusProcessing, entity.OrderStatusCancelled},
	entity.OrderStatusProcessing:     {entity.OrderStatusReadyForPickup, entity.OrderStatusOutForDelivery, entity.OrderStatusCancelled},
	entity.OrderStatusReadyForPickup: {entity.OrderStatusDelivered, entity.OrderStatusOutForDelivery, entity.OrderStatusCancelled},
	entity.OrderStatusOutForDelivery: {entity.OrderStatusDelivered, entity.OrderStatusCancelled},
	entity.OrderStatusDelivered:      {entity.OrderStatusRefunded},
	entity.OrderStatusCancelled:      {},
	entity.OrderStatusRefunded:       {},
}

// CanTransition indica si el paso from → to está permitido por la tabla.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal indica si el estado no admite más transiciones.
func IsTerminal(status string) bool {
	next, ok := transitions[status]
	return ok && len(next) == 0
}

// IsValidStatus indica si el estado existe en la tabla.
func IsValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

// CanCancel la cancelación por parte del cliente solo aplica antes de iniciar picking.
func CanCancel(status string) bool {
	return status == entity.OrderStatusPending || status == entity.OrderStatusConfirmed
}
