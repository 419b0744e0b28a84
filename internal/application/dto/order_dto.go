package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
)

// OrderItemRequest línea solicitada al crear la orden.
type OrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest entrada de POST /orders.
type CreateOrderRequest struct {
	FulfillmentType   string             `json:"fulfillment_type"` // DELIVERY | PICKUP
	DeliveryAddressID string             `json:"delivery_address_id,omitempty"`
	CouponCode        string             `json:"coupon_code,omitempty"`
	Items             []OrderItemRequest `json:"items"`
}

// UpdateOrderStatusRequest entrada de PATCH /orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// CancelOrderRequest entrada de POST /orders/:id/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

// OrderItemResponse línea de la orden en respuestas.
type OrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderResponse representación de la orden.
type OrderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerID      string              `json:"customer_id"`
	SellerID        *string             `json:"seller_id,omitempty"`
	Status          string              `json:"status"`
	FulfillmentType string              `json:"fulfillment_type"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Tax             decimal.Decimal     `json:"tax"`
	DeliveryFee     decimal.Decimal     `json:"delivery_fee"`
	Discount        decimal.Decimal     `json:"discount"`
	Total           decimal.Decimal     `json:"total"`
	Items           []OrderItemResponse `json:"items"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// StatusHistoryResponse fila del historial en el tracking.
type StatusHistoryResponse struct {
	Status    string    `json:"status"`
	ChangedBy string    `json:"changed_by"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackingResponse proyección de solo lectura: estado actual + historial ordenado.
type TrackingResponse struct {
	OrderID     string                  `json:"order_id"`
	OrderNumber string                  `json:"order_number"`
	Status      string                  `json:"status"`
	History     []StatusHistoryResponse `json:"history"`
}

// FromOrder mapea la entidad a su representación HTTP.
func FromOrder(o *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		SellerID:        o.SellerID,
		Status:          o.Status,
		FulfillmentType: o.FulfillmentType,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		DeliveryFee:     o.DeliveryFee,
		Discount:        o.Discount,
		Total:           o.Total,
		Items:           items,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
	}
}
