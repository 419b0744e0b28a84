package entity

import "time"

// Estados de un domicilio.
const (
	DeliveryStatusAssigned  = "ASSIGNED"
	DeliveryStatusPickedUp  = "PICKED_UP"
	DeliveryStatusInTransit = "IN_TRANSIT"
	DeliveryStatusDelivered = "DELIVERED"
	DeliveryStatusFailed    = "FAILED"
	DeliveryStatusReturned  = "RETURNED"
)

// Delivery domicilio 1:1 con la orden, reclamado por exactamente un repartidor.
type Delivery struct {
	ID               string
	OrderID          string
	OrderNumber      string
	DeliveryPersonID string
	Status           string
	CurrentLatitude  *float64
	CurrentLongitude *float64
	PickedUpAt       *time.Time
	DeliveredAt      *time.Time
	ElapsedMinutes   *int
	FailureReason    string
	Rating           *int
	RatingComment    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DeliveryLocation ping de posición del repartidor (historial append-only).
type DeliveryLocation struct {
	ID         string
	DeliveryID string
	Latitude   float64
	Longitude  float64
	CreatedAt  time.Time
}
