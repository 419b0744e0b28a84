package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, product_id, type, quantity, previous_stock, new_stock, reason, performed_by, reference_id, created_at`

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only: no hay UPDATE ni DELETE.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento del libro de stock.
func (r *InventoryMovementRepo) Create(m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ProductID, m.Type, m.Quantity, m.PreviousStock, m.NewStock,
		nullable(m.Reason), m.PerformedBy, nullable(m.ReferenceID), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *InventoryMovementRepo) GetByID(id string) (*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List movimientos filtrables por producto y rango de fechas, más recientes primero.
func (r *InventoryMovementRepo) List(productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE 1=1`
	args := []any{}
	pos := 1
	if productID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, productID)
		pos++
	}
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var m entity.InventoryMovement
	var reason, referenceID *string
	err := row.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.PreviousStock, &m.NewStock,
		&reason, &m.PerformedBy, &referenceID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan movement: %w", err)
	}
	if reason != nil {
		m.Reason = *reason
	}
	if referenceID != nil {
		m.ReferenceID = *referenceID
	}
	return &m, nil
}

// nullable convierte "" en NULL para columnas opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
