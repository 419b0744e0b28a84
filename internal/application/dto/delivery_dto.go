package dto

import (
	"time"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
)

// AssignDeliveryRequest entrada de POST /delivery/assign.
type AssignDeliveryRequest struct {
	OrderID          string `json:"order_id"`
	DeliveryPersonID string `json:"delivery_person_id"`
}

// UpdateDeliveryStatusRequest entrada de PATCH /delivery/:id/status.
type UpdateDeliveryStatusRequest struct {
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// UpdateLocationRequest entrada de PATCH /delivery/:id/location.
type UpdateLocationRequest struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// RateDeliveryRequest entrada de POST /delivery/:id/rate.
type RateDeliveryRequest struct {
	Rating  int    `json:"rating"` // 1..5
	Comment string `json:"comment,omitempty"`
}

// DeliveryResponse representación del domicilio.
type DeliveryResponse struct {
	ID               string     `json:"id"`
	OrderID          string     `json:"order_id"`
	OrderNumber      string     `json:"order_number"`
	DeliveryPersonID string     `json:"delivery_person_id"`
	Status           string     `json:"status"`
	CurrentLatitude  *float64   `json:"current_latitude,omitempty"`
	CurrentLongitude *float64   `json:"current_longitude,omitempty"`
	PickedUpAt       *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt      *time.Time `json:"delivered_at,omitempty"`
	ElapsedMinutes   *int       `json:"elapsed_minutes,omitempty"`
	FailureReason    string     `json:"failure_reason,omitempty"`
	Rating           *int       `json:"rating,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// DeliveryLocationResponse ping de posición del historial del domicilio.
type DeliveryLocationResponse struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	CreatedAt time.Time `json:"created_at"`
}

// FromDeliveryLocation mapea un ping del historial a su representación HTTP.
func FromDeliveryLocation(l *entity.DeliveryLocation) DeliveryLocationResponse {
	return DeliveryLocationResponse{Latitude: l.Latitude, Longitude: l.Longitude, CreatedAt: l.CreatedAt}
}

// FromDelivery mapea la entidad a su representación HTTP.
func FromDelivery(d *entity.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:               d.ID,
		OrderID:          d.OrderID,
		OrderNumber:      d.OrderNumber,
		DeliveryPersonID: d.DeliveryPersonID,
		Status:           d.Status,
		CurrentLatitude:  d.CurrentLatitude,
		CurrentLongitude: d.CurrentLongitude,
		PickedUpAt:       d.PickedUpAt,
		DeliveredAt:      d.DeliveredAt,
		ElapsedMinutes:   d.ElapsedMinutes,
		FailureReason:    d.FailureReason,
		Rating:           d.Rating,
		CreatedAt:        d.CreatedAt,
	}
}
