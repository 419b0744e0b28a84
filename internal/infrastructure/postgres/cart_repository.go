package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo implementación de CartRepository sobre PostgreSQL.
type CartRepo struct {
	q Querier
}

// NewCartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

// ClearByCustomer vacía el carrito del cliente (al confirmar la orden).
func (r *CartRepo) ClearByCustomer(customerID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM cart_items WHERE customer_id = $1`, customerID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
