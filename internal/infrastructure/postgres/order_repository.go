package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/pedidos-api/internal/domain"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, customer_id, seller_id, status, fulfillment_type,
	subtotal, tax, delivery_fee, discount, total, coupon_id, delivery_address_id,
	cancel_reason, delivered_at, cancelled_at, created_at, updated_at`

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la orden y sus items.
func (r *OrderRepo) Create(o *entity.Order) error {
	ctx := context.Background()
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, o.CustomerID, o.SellerID, o.Status, o.FulfillmentType,
		o.Subtotal, o.Tax, o.DeliveryFee, o.Discount, o.Total, o.CouponID, o.DeliveryAddressID,
		nullable(o.CancelReason), o.DeliveredAt, o.CancelledAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create order: %w", err)
	}
	for _, it := range o.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		_, err := r.q.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, o.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus items.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene la orden con sus items y bloquea la fila (SELECT FOR UPDATE).
func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	return r.get(id, true)
}

func (r *OrderRepo) get(id string, forUpdate bool) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil || o == nil {
		return o, err
	}
	if err := r.loadItems(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) loadItems(o *entity.Order) error {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, line_total
		FROM order_items WHERE order_id = $1 ORDER BY product_name`, o.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, &it)
	}
	return rows.Err()
}

// ListByCustomer órdenes del cliente con items, más recientes primero.
func (r *OrderRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Order, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT `+orderColumns+` FROM orders
		WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders by customer: %w", err)
	}
	defer rows.Close()

	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range list {
		if err := r.loadItems(o); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// UpdateStatus persiste status, seller_id, timestamps terminales y razón de cancelación.
func (r *OrderRepo) UpdateStatus(o *entity.Order) error {
	query := `
		UPDATE orders
		SET status = $2, seller_id = $3, cancel_reason = $4, delivered_at = $5,
		    cancelled_at = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		o.ID, o.Status, o.SellerID, nullable(o.CancelReason), o.DeliveredAt, o.CancelledAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update order status: orden %s no existe", o.ID)
	}
	return nil
}

// AppendHistory agrega una fila al historial de estados (append-only).
func (r *OrderRepo) AppendHistory(h *entity.OrderStatusHistory) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO order_status_history (id, order_id, status, changed_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		h.ID, h.OrderID, h.Status, h.ChangedBy, nullable(h.Notes), h.CreatedAt)
	if err != nil {
		return fmt.Errorf("append order history: %w", err)
	}
	return nil
}

// ListHistory historial de la orden en orden cronológico.
func (r *OrderRepo) ListHistory(orderID string) ([]*entity.OrderStatusHistory, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, order_id, status, changed_by, notes, created_at
		FROM order_status_history WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order history: %w", err)
	}
	defer rows.Close()

	var list []*entity.OrderStatusHistory
	for rows.Next() {
		var h entity.OrderStatusHistory
		var notes *string
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.ChangedBy, &notes, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order history: %w", err)
		}
		if notes != nil {
			h.Notes = *notes
		}
		list = append(list, &h)
	}
	return list, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var cancelReason *string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.SellerID, &o.Status, &o.FulfillmentType,
		&o.Subtotal, &o.Tax, &o.DeliveryFee, &o.Discount, &o.Total, &o.CouponID, &o.DeliveryAddressID,
		&cancelReason, &o.DeliveredAt, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if cancelReason != nil {
		o.CancelReason = *cancelReason
	}
	return &o, nil
}
