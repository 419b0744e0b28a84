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

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

const deliveryColumns = `id, order_id, order_number, delivery_person_id, status,
	current_latitude, current_longitude, picked_up_at, delivered_at, elapsed_minutes,
	failure_reason, rating, rating_comment, created_at, updated_at`

// DeliveryRepo implementación de DeliveryRepository sobre PostgreSQL (usable con pool o tx).
type DeliveryRepo struct {
	q Querier
}

// NewDeliveryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

// Create inserta el domicilio. La restricción UNIQUE sobre order_id más
// ON CONFLICT DO NOTHING deja la inserción como reclamo atómico: devuelve
// false cuando otra transacción ya insertó el domicilio de la orden.
func (r *DeliveryRepo) Create(d *entity.Delivery) (bool, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	query := `
		INSERT INTO deliveries (` + deliveryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (order_id) DO NOTHING`
	tag, err := r.q.Exec(context.Background(), query,
		d.ID, d.OrderID, d.OrderNumber, d.DeliveryPersonID, d.Status,
		d.CurrentLatitude, d.CurrentLongitude, d.PickedUpAt, d.DeliveredAt, d.ElapsedMinutes,
		nullable(d.FailureReason), d.Rating, nullable(d.RatingComment), d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("create delivery: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID obtiene el domicilio por ID.
func (r *DeliveryRepo) GetByID(id string) (*entity.Delivery, error) {
	return r.getBy("id", id, false)
}

// GetByOrderID obtiene el domicilio de la orden.
func (r *DeliveryRepo) GetByOrderID(orderID string) (*entity.Delivery, error) {
	return r.getBy("order_id", orderID, false)
}

// GetForUpdate bloquea la fila del domicilio (SELECT FOR UPDATE).
func (r *DeliveryRepo) GetForUpdate(id string) (*entity.Delivery, error) {
	return r.getBy("id", id, true)
}

func (r *DeliveryRepo) getBy(column, value string, forUpdate bool) (*entity.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE ` + column + ` = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	return scanDelivery(r.q.QueryRow(context.Background(), query, value))
}

// Update persiste status, timestamps, razón de fallo y calificación.
func (r *DeliveryRepo) Update(d *entity.Delivery) error {
	query := `
		UPDATE deliveries
		SET status = $2, picked_up_at = $3, delivered_at = $4, elapsed_minutes = $5,
		    failure_reason = $6, rating = $7, rating_comment = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		d.ID, d.Status, d.PickedUpAt, d.DeliveredAt, d.ElapsedMinutes,
		nullable(d.FailureReason), d.Rating, nullable(d.RatingComment), d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update delivery: %s no existe", d.ID)
	}
	return nil
}

// UpdateLocation snapshot de posición sobre el domicilio más fila de historial.
// Es la ruta de escritura de alto volumen: dos statements en autocommit, sin
// SELECT FOR UPDATE.
func (r *DeliveryRepo) UpdateLocation(deliveryID string, lat, lng float64) error {
	ctx := context.Background()
	tag, err := r.q.Exec(ctx, `
		UPDATE deliveries
		SET current_latitude = $2, current_longitude = $3, updated_at = now()
		WHERE id = $1`, deliveryID, lat, lng)
	if err != nil {
		return fmt.Errorf("update delivery location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update delivery location: %s no existe", deliveryID)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO delivery_locations (id, delivery_id, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		uuid.New().String(), deliveryID, lat, lng)
	if err != nil {
		return fmt.Errorf("insert delivery location: %w", err)
	}
	return nil
}

// ListActiveByPerson domicilios no terminales del repartidor, más antiguos primero.
func (r *DeliveryRepo) ListActiveByPerson(deliveryPersonID string) ([]*entity.Delivery, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT `+deliveryColumns+` FROM deliveries
		WHERE delivery_person_id = $1 AND status IN ($2, $3, $4)
		ORDER BY created_at ASC`,
		deliveryPersonID,
		entity.DeliveryStatusAssigned, entity.DeliveryStatusPickedUp, entity.DeliveryStatusInTransit)
	if err != nil {
		return nil, fmt.Errorf("list active deliveries: %w", err)
	}
	defer rows.Close()

	var list []*entity.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// ListLocations historial de posiciones del domicilio, más recientes primero.
func (r *DeliveryRepo) ListLocations(deliveryID string, limit int) ([]*entity.DeliveryLocation, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, delivery_id, latitude, longitude, created_at
		FROM delivery_locations WHERE delivery_id = $1
		ORDER BY created_at DESC LIMIT $2`, deliveryID, limit)
	if err != nil {
		return nil, fmt.Errorf("list delivery locations: %w", err)
	}
	defer rows.Close()

	var list []*entity.DeliveryLocation
	for rows.Next() {
		var l entity.DeliveryLocation
		if err := rows.Scan(&l.ID, &l.DeliveryID, &l.Latitude, &l.Longitude, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan delivery location: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

func scanDelivery(row pgx.Row) (*entity.Delivery, error) {
	var d entity.Delivery
	var failureReason, ratingComment *string
	err := row.Scan(&d.ID, &d.OrderID, &d.OrderNumber, &d.DeliveryPersonID, &d.Status,
		&d.CurrentLatitude, &d.CurrentLongitude, &d.PickedUpAt, &d.DeliveredAt, &d.ElapsedMinutes,
		&failureReason, &d.Rating, &ratingComment, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan delivery: %w", err)
	}
	if failureReason != nil {
		d.FailureReason = *failureReason
	}
	if ratingComment != nil {
		d.RatingComment = *ratingComment
	}
	return &d, nil
}
