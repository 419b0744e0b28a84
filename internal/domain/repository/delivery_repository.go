package repository

import "github.com/tu-usuario/pedidos-api/internal/domain/entity"

// DeliveryRepository puerto de persistencia de domicilios.
type DeliveryRepository interface {
	// Create inserta el domicilio; devuelve false si la orden ya tiene uno
	// (INSERT ... ON CONFLICT (order_id) DO NOTHING — reclamo de un solo ganador).
	Create(d *entity.Delivery) (bool, error)
	GetByID(id string) (*entity.Delivery, error)
	GetByOrderID(orderID string) (*entity.Delivery, error)
	// GetForUpdate bloquea la fila del domicilio (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Delivery, error)
	Update(d *entity.Delivery) error
	// UpdateLocation snapshot de posición + fila de historial; sin transacción amplia,
	// es la ruta de escritura de alto volumen.
	UpdateLocation(deliveryID string, lat, lng float64) error
	ListActiveByPerson(deliveryPersonID string) ([]*entity.Delivery, error)
	ListLocations(deliveryID string, limit int) ([]*entity.DeliveryLocation, error)
}
