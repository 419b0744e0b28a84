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

var _ repository.PickingRepository = (*PickingRepo)(nil)

const pickingColumns = `id, order_id, order_number, seller_id, status, total_items, picked_items,
	assigned_at, started_at, completed_at, created_at, updated_at`

const pickingItemColumns = `id, picking_order_id, product_id, product_name, product_barcode,
	quantity, is_picked, picked_quantity, picked_at, notes`

// PickingRepo implementación de PickingRepository sobre PostgreSQL (usable con pool o tx).
type PickingRepo struct {
	q Querier
}

// NewPickingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPickingRepository(q Querier) *PickingRepo {
	return &PickingRepo{q: q}
}

// Create persiste la orden de picking con sus líneas.
func (r *PickingRepo) Create(p *entity.PickingOrder) error {
	ctx := context.Background()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO picking_orders (`+pickingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.OrderID, p.OrderNumber, p.SellerID, p.Status, p.TotalItems, p.PickedItems,
		p.AssignedAt, p.StartedAt, p.CompletedAt, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create picking order: %w", err)
	}
	for _, it := range p.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		_, err := r.q.Exec(ctx, `
			INSERT INTO picking_items (`+pickingItemColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			it.ID, p.ID, it.ProductID, it.ProductName, it.ProductBarcode,
			it.Quantity, it.IsPicked, it.PickedQuantity, it.PickedAt, nullable(it.Notes))
		if err != nil {
			return fmt.Errorf("create picking item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden de picking con sus líneas.
func (r *PickingRepo) GetByID(id string) (*entity.PickingOrder, error) {
	return r.getBy("id", id, false)
}

// GetByOrderID obtiene la orden de picking por la orden de venta.
func (r *PickingRepo) GetByOrderID(orderID string) (*entity.PickingOrder, error) {
	return r.getBy("order_id", orderID, false)
}

// GetForUpdate bloquea la orden de picking (SELECT FOR UPDATE) y carga sus líneas.
func (r *PickingRepo) GetForUpdate(id string) (*entity.PickingOrder, error) {
	return r.getBy("id", id, true)
}

// GetByOrderIDForUpdate igual que GetForUpdate pero buscando por orden de venta.
func (r *PickingRepo) GetByOrderIDForUpdate(orderID string) (*entity.PickingOrder, error) {
	return r.getBy("order_id", orderID, true)
}

func (r *PickingRepo) getBy(column, value string, forUpdate bool) (*entity.PickingOrder, error) {
	query := `SELECT ` + pickingColumns + ` FROM picking_orders WHERE ` + column + ` = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	p, err := scanPickingOrder(r.q.QueryRow(context.Background(), query, value))
	if err != nil || p == nil {
		return p, err
	}
	if err := r.loadItems(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PickingRepo) loadItems(p *entity.PickingOrder) error {
	rows, err := r.q.Query(context.Background(), `
		SELECT `+pickingItemColumns+` FROM picking_items
		WHERE picking_order_id = $1 ORDER BY product_name`, p.ID)
	if err != nil {
		return fmt.Errorf("load picking items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanPickingItem(rows)
		if err != nil {
			return err
		}
		p.Items = append(p.Items, it)
	}
	return rows.Err()
}

// Claim asignación atómica de un solo ganador: el UPDATE va condicionado al estado
// PENDING en la misma sentencia que escribe, así solo una de dos transacciones
// concurrentes afecta la fila.
func (r *PickingRepo) Claim(orderID, sellerID string, now time.Time) (bool, error) {
	query := `
		UPDATE picking_orders
		SET seller_id = $2, status = $3, assigned_at = $4, started_at = $4, updated_at = $4
		WHERE order_id = $1 AND status = $5`
	tag, err := r.q.Exec(context.Background(), query,
		orderID, sellerID, entity.PickingStatusPicking, now, entity.PickingStatusPending)
	if err != nil {
		return false, fmt.Errorf("claim picking order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Update persiste status, contador de recolectadas, vendedor y timestamps.
func (r *PickingRepo) Update(p *entity.PickingOrder) error {
	query := `
		UPDATE picking_orders
		SET seller_id = $2, status = $3, picked_items = $4, assigned_at = $5,
		    started_at = $6, completed_at = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		p.ID, p.SellerID, p.Status, p.PickedItems, p.AssignedAt, p.StartedAt, p.CompletedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update picking order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update picking order: %s no existe", p.ID)
	}
	return nil
}

// GetItemForUpdate bloquea una línea de picking (SELECT FOR UPDATE).
func (r *PickingRepo) GetItemForUpdate(itemID string) (*entity.PickingItem, error) {
	query := `SELECT ` + pickingItemColumns + ` FROM picking_items WHERE id = $1 FOR UPDATE`
	row := r.q.QueryRow(context.Background(), query, itemID)
	it, err := scanPickingItemRow(row)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// UpdateItem persiste la confirmación de una línea.
func (r *PickingRepo) UpdateItem(it *entity.PickingItem) error {
	query := `
		UPDATE picking_items
		SET is_picked = $2, picked_quantity = $3, picked_at = $4, notes = $5
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		it.ID, it.IsPicked, it.PickedQuantity, it.PickedAt, nullable(it.Notes))
	if err != nil {
		return fmt.Errorf("update picking item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update picking item: %s no existe", it.ID)
	}
	return nil
}

// ListQueue cola del vendedor: pendientes sin reclamar más las activas propias,
// más antiguas primero (FIFO de la cola de picking).
func (r *PickingRepo) ListQueue(sellerID string, limit, offset int) ([]*entity.PickingOrder, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT `+pickingColumns+` FROM picking_orders
		WHERE status = $1 OR (seller_id = $2 AND status IN ($3, $4))
		ORDER BY created_at ASC LIMIT $5 OFFSET $6`,
		entity.PickingStatusPending, sellerID,
		entity.PickingStatusPicking, entity.PickingStatusPicked,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list picking queue: %w", err)
	}
	defer rows.Close()

	var list []*entity.PickingOrder
	for rows.Next() {
		p, err := scanPickingOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range list {
		if err := r.loadItems(p); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func scanPickingOrder(row pgx.Row) (*entity.PickingOrder, error) {
	var p entity.PickingOrder
	err := row.Scan(&p.ID, &p.OrderID, &p.OrderNumber, &p.SellerID, &p.Status,
		&p.TotalItems, &p.PickedItems, &p.AssignedAt, &p.StartedAt, &p.CompletedAt,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan picking order: %w", err)
	}
	return &p, nil
}

func scanPickingItem(row pgx.Row) (*entity.PickingItem, error) {
	var it entity.PickingItem
	var notes *string
	err := row.Scan(&it.ID, &it.PickingOrderID, &it.ProductID, &it.ProductName, &it.ProductBarcode,
		&it.Quantity, &it.IsPicked, &it.PickedQuantity, &it.PickedAt, &notes)
	if err != nil {
		return nil, fmt.Errorf("scan picking item: %w", err)
	}
	if notes != nil {
		it.Notes = *notes
	}
	return &it, nil
}

func scanPickingItemRow(row pgx.Row) (*entity.PickingItem, error) {
	it, err := scanPickingItem(row)
	if err != nil {
		if errors.Is(errors.Unwrap(err), pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return it, nil
}
