package repository

import "github.com/tu-usuario/pedidos-api/internal/domain/entity"

// OrderRepository puerto de persistencia del agregado orden (items e historial
// incluidos; el historial es append-only).
type OrderRepository interface {
	// Create persiste la orden con sus items en una sola operación lógica.
	Create(order *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila de la orden (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Order, error)
	ListByCustomer(customerID string, limit, offset int) ([]*entity.Order, error)
	// UpdateStatus persiste status, seller_id, timestamps terminales y razón de cancelación.
	UpdateStatus(order *entity.Order) error
	AppendHistory(h *entity.OrderStatusHistory) error
	ListHistory(orderID string) ([]*entity.OrderStatusHistory, error)
}

// CouponRepository puerto de cupones; el contador de usos se toca solo con la fila bloqueada.
type CouponRepository interface {
	GetByID(id string) (*entity.Coupon, error)
	// GetByCodeForUpdate bloquea el cupón para validar y contar el uso sin carreras.
	GetByCodeForUpdate(code string) (*entity.Coupon, error)
	IncrementUsage(id string) error
	DecrementUsage(id string) error
}

// CartRepository puerto del carrito activo del cliente.
type CartRepository interface {
	ClearByCustomer(customerID string) error
}

// AddressRepository puerto de solo lectura de direcciones (CRUD en otro servicio).
type AddressRepository interface {
	GetByID(id string) (*entity.Address, error)
}

// UserRepository puerto de solo lectura de usuarios (auth y CRUD en otro servicio).
type UserRepository interface {
	GetByID(id string) (*entity.User, error)
	ListByRole(role string) ([]*entity.User, error)
}
