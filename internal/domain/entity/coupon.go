package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de cupón.
const (
	CouponTypePercentage = "PERCENTAGE"
	CouponTypeFixed      = "FIXED"
)

// Coupon cupón de descuento. UsageLimit nulo = ilimitado; MaxDiscount solo aplica
// a cupones porcentuales.
type Coupon struct {
	ID            string
	Code          string
	Type          string
	Value         decimal.Decimal
	MaxDiscount   *decimal.Decimal
	MinOrderValue *decimal.Decimal
	UsageLimit    *int
	UsedCount     int
	IsActive      bool
	ExpiresAt     *time.Time
	CreatedAt     time.Time
}

// CartItem línea del carrito activo del cliente; se vacía al crear la orden.
type CartItem struct {
	ID         string
	CustomerID string
	ProductID  string
	Quantity   int
	CreatedAt  time.Time
}
