package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/order"
)

// Aristas permitidas de la tabla de transiciones de la orden.
func TestCanTransition_AristasPermitidas(t *testing.T) {
	allowed := [][2]string{
		{entity.OrderStatusPending, entity.OrderStatusConfirmed},
		{entity.OrderStatusPending, entity.OrderStatusCancelled},
		{entity.OrderStatusConfirmed, entity.OrderStatusProcessing},
		{entity.OrderStatusConfirmed, entity.OrderStatusCancelled},
		{entity.OrderStatusProcessing, entity.OrderStatusReadyForPickup},
		{entity.OrderStatusProcessing, entity.OrderStatusOutForDelivery},
		{entity.OrderStatusProcessing, entity.OrderStatusCancelled},
		{entity.OrderStatusReadyForPickup, entity.OrderStatusOutForDelivery},
		{entity.OrderStatusReadyForPickup, entity.OrderStatusDelivered},
		{entity.OrderStatusReadyForPickup, entity.OrderStatusCancelled},
		{entity.OrderStatusOutForDelivery, entity.OrderStatusDelivered},
		{entity.OrderStatusOutForDelivery, entity.OrderStatusCancelled},
		{entity.OrderStatusDelivered, entity.OrderStatusRefunded},
	}
	for _, edge := range allowed {
		assert.True(t, order.CanTransition(edge[0], edge[1]), "%s -> %s debe permitirse", edge[0], edge[1])
	}
}

// Cualquier arista fuera de la tabla se rechaza, incluidos retrocesos y saltos.
func TestCanTransition_AristasProhibidas(t *testing.T) {
	forbidden := [][2]string{
		{entity.OrderStatusPending, entity.OrderStatusDelivered},
		{entity.OrderStatusPending, entity.OrderStatusProcessing},
		{entity.OrderStatusConfirmed, entity.OrderStatusPending},
		{entity.OrderStatusDelivered, entity.OrderStatusCancelled},
		{entity.OrderStatusCancelled, entity.OrderStatusPending},
		{entity.OrderStatusCancelled, entity.OrderStatusConfirmed},
		{entity.OrderStatusRefunded, entity.OrderStatusDelivered},
		{entity.OrderStatusOutForDelivery, entity.OrderStatusProcessing},
	}
	for _, edge := range forbidden {
		assert.False(t, order.CanTransition(edge[0], edge[1]), "%s -> %s debe rechazarse", edge[0], edge[1])
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, order.IsTerminal(entity.OrderStatusCancelled))
	assert.True(t, order.IsTerminal(entity.OrderStatusRefunded))
	assert.False(t, order.IsTerminal(entity.OrderStatusDelivered)) // aún puede pasar a REFUNDED
	assert.False(t, order.IsTerminal(entity.OrderStatusPending))
	assert.False(t, order.IsTerminal("NO_EXISTE"))
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, order.IsValidStatus(entity.OrderStatusPending))
	assert.False(t, order.IsValidStatus("SHIPPED"))
}

func TestCanCancel(t *testing.T) {
	assert.True(t, order.CanCancel(entity.OrderStatusPending))
	assert.True(t, order.CanCancel(entity.OrderStatusConfirmed))
	assert.False(t, order.CanCancel(entity.OrderStatusProcessing))
	assert.False(t, order.CanCancel(entity.OrderStatusDelivered))
}

func TestCanTransitionDelivery(t *testing.T) {
	assert.True(t, order.CanTransitionDelivery(entity.DeliveryStatusAssigned, entity.DeliveryStatusPickedUp))
	assert.True(t, order.CanTransitionDelivery(entity.DeliveryStatusPickedUp, entity.DeliveryStatusInTransit))
	assert.True(t, order.CanTransitionDelivery(entity.DeliveryStatusInTransit, entity.DeliveryStatusDelivered))
	assert.True(t, order.CanTransitionDelivery(entity.DeliveryStatusInTransit, entity.DeliveryStatusFailed))
	assert.True(t, order.CanTransitionDelivery(entity.DeliveryStatusFailed, entity.DeliveryStatusReturned))

	assert.False(t, order.CanTransitionDelivery(entity.DeliveryStatusAssigned, entity.DeliveryStatusDelivered))
	assert.False(t, order.CanTransitionDelivery(entity.DeliveryStatusDelivered, entity.DeliveryStatusInTransit))
	assert.False(t, order.CanTransitionDelivery(entity.DeliveryStatusReturned, entity.DeliveryStatusAssigned))
}
