package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, barcode, name, unit, price, tax_rate, stock, min_stock, is_active, created_at, updated_at`

// ProductRepo implementación de ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Unit, &p.Price, &p.TaxRate,
		&p.Stock, &p.MinStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.q.QueryRow(context.Background(), query, id))
}

// GetByBarcode obtiene un producto por código de barras.
func (r *ProductRepo) GetByBarcode(barcode string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE barcode = $1`
	return scanProduct(r.q.QueryRow(context.Background(), query, barcode))
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
// Los cambios de stock concurrentes se serializan sobre este lock.
func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	return scanProduct(r.q.QueryRow(context.Background(), query, id))
}

// UpdateStock fija el stock on-hand del producto.
func (r *ProductRepo) UpdateStock(id string, newStock int) error {
	query := `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, newStock)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock: producto %s no existe", id)
	}
	return nil
}

// ListLowStock productos con stock < min_stock ordenados por severidad
// (stock/min_stock ascendente), con el déficit calculado.
func (r *ProductRepo) ListLowStock() ([]*entity.LowStockProduct, error) {
	query := `
		SELECT ` + productColumns + `, min_stock - stock AS deficit
		FROM products
		WHERE is_active AND min_stock > 0 AND stock < min_stock
		ORDER BY stock::numeric / min_stock ASC, name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	var list []*entity.LowStockProduct
	for rows.Next() {
		var p entity.LowStockProduct
		if err := rows.Scan(&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Unit, &p.Price, &p.TaxRate,
			&p.Stock, &p.MinStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.Deficit); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
