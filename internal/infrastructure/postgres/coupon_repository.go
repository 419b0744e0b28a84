package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

var _ repository.CouponRepository = (*CouponRepo)(nil)

const couponColumns = `id, code, type, value, max_discount, min_order_value,
	usage_limit, used_count, is_active, expires_at, created_at`

// CouponRepo implementación de CouponRepository sobre PostgreSQL.
type CouponRepo struct {
	q Querier
}

// NewCouponRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCouponRepository(q Querier) *CouponRepo {
	return &CouponRepo{q: q}
}

// GetByID obtiene el cupón por ID.
func (r *CouponRepo) GetByID(id string) (*entity.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	return scanCoupon(r.q.QueryRow(context.Background(), query, id))
}

// GetByCodeForUpdate bloquea el cupón por código (SELECT FOR UPDATE): validación
// y conteo de uso quedan serializados sobre el lock.
func (r *CouponRepo) GetByCodeForUpdate(code string) (*entity.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE upper(code) = upper($1) FOR UPDATE`
	return scanCoupon(r.q.QueryRow(context.Background(), query, code))
}

// IncrementUsage suma un uso al cupón.
func (r *CouponRepo) IncrementUsage(id string) error {
	return r.bumpUsage(id, `used_count + 1`)
}

// DecrementUsage devuelve un uso (cancelación de la orden que lo aplicó).
func (r *CouponRepo) DecrementUsage(id string) error {
	return r.bumpUsage(id, `greatest(used_count - 1, 0)`)
}

func (r *CouponRepo) bumpUsage(id, expr string) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE coupons SET used_count = `+expr+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update coupon usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update coupon usage: %s no existe", id)
	}
	return nil
}

func scanCoupon(row pgx.Row) (*entity.Coupon, error) {
	var c entity.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.Type, &c.Value, &c.MaxDiscount, &c.MinOrderValue,
		&c.UsageLimit, &c.UsedCount, &c.IsActive, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan coupon: %w", err)
	}
	return &c, nil
}
