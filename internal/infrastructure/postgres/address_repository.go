package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

var _ repository.AddressRepository = (*AddressRepo)(nil)

// AddressRepo lectura de direcciones. El CRUD de direcciones vive en otro servicio.
type AddressRepo struct {
	q Querier
}

// NewAddressRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAddressRepository(q Querier) *AddressRepo {
	return &AddressRepo{q: q}
}

// GetByID obtiene la dirección por ID.
func (r *AddressRepo) GetByID(id string) (*entity.Address, error) {
	var a entity.Address
	err := r.q.QueryRow(context.Background(), `
		SELECT id, user_id, label, street, city, latitude, longitude, created_at
		FROM addresses WHERE id = $1`, id).
		Scan(&a.ID, &a.UserID, &a.Label, &a.Street, &a.City, &a.Latitude, &a.Longitude, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	return &a, nil
}
