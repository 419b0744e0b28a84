package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo lectura de usuarios. Auth y gestión de usuarios viven en otro servicio;
// aquí solo se consulta rol y estado.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// GetByID obtiene el usuario por ID.
func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(context.Background(), `
		SELECT id, name, role, is_active, created_at FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListByRole usuarios activos de un rol (fan-out de notificaciones a staff).
func (r *UserRepo) ListByRole(role string) ([]*entity.User, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, name, role, is_active, created_at
		FROM users WHERE role = $1 AND is_active ORDER BY name`, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}
