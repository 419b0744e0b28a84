package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseColumns = `id, supplier_id, status, received_at, received_by, created_at, updated_at`

// PurchaseOrderRepo implementación de PurchaseOrderRepository sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create persiste la orden de compra con sus líneas.
func (r *PurchaseOrderRepo) Create(po *entity.PurchaseOrder) error {
	ctx := context.Background()
	if po.ID == "" {
		po.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_orders (`+purchaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		po.ID, po.SupplierID, po.Status, po.ReceivedAt, nullable(po.ReceivedBy),
		po.CreatedAt, po.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create purchase order: %w", err)
	}
	for _, it := range po.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_order_items (id, purchase_order_id, product_id, ordered_qty, received_qty, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, po.ID, it.ProductID, it.OrderedQty, it.ReceivedQty, it.UnitCost)
		if err != nil {
			return fmt.Errorf("create purchase order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden de compra con sus líneas.
func (r *PurchaseOrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	return r.get(id, false)
}

// GetForUpdate bloquea la orden de compra (SELECT FOR UPDATE) y carga sus líneas.
func (r *PurchaseOrderRepo) GetForUpdate(id string) (*entity.PurchaseOrder, error) {
	return r.get(id, true)
}

func (r *PurchaseOrderRepo) get(id string, forUpdate bool) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchase_orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	po, err := scanPurchaseOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil || po == nil {
		return po, err
	}
	if err := r.loadItems(po); err != nil {
		return nil, err
	}
	return po, nil
}

func (r *PurchaseOrderRepo) loadItems(po *entity.PurchaseOrder) error {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, purchase_order_id, product_id, ordered_qty, received_qty, unit_cost
		FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY product_id`, po.ID)
	if err != nil {
		return fmt.Errorf("load purchase order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.PurchaseOrderItem
		if err := rows.Scan(&it.ID, &it.PurchaseOrderID, &it.ProductID,
			&it.OrderedQty, &it.ReceivedQty, &it.UnitCost); err != nil {
			return fmt.Errorf("scan purchase order item: %w", err)
		}
		po.Items = append(po.Items, &it)
	}
	return rows.Err()
}

// Update persiste status, received_at y received_by.
func (r *PurchaseOrderRepo) Update(po *entity.PurchaseOrder) error {
	tag, err := r.q.Exec(context.Background(), `
		UPDATE purchase_orders
		SET status = $2, received_at = $3, received_by = $4, updated_at = $5
		WHERE id = $1`,
		po.ID, po.Status, po.ReceivedAt, nullable(po.ReceivedBy), po.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update purchase order: %s no existe", po.ID)
	}
	return nil
}

// UpdateItemReceived fija la cantidad recibida de una línea.
func (r *PurchaseOrderRepo) UpdateItemReceived(itemID string, receivedQty int) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE purchase_order_items SET received_qty = $2 WHERE id = $1`, itemID, receivedQty)
	if err != nil {
		return fmt.Errorf("update purchase order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update purchase order item: %s no existe", itemID)
	}
	return nil
}

// List órdenes de compra con líneas, más recientes primero.
func (r *PurchaseOrderRepo) List(limit, offset int) ([]*entity.PurchaseOrder, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT `+purchaseColumns+` FROM purchase_orders
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.PurchaseOrder
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, po)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, po := range list {
		if err := r.loadItems(po); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func scanPurchaseOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	var receivedBy *string
	err := row.Scan(&po.ID, &po.SupplierID, &po.Status, &po.ReceivedAt, &receivedBy,
		&po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan purchase order: %w", err)
	}
	if receivedBy != nil {
		po.ReceivedBy = *receivedBy
	}
	return &po, nil
}
