package repository

import "github.com/tu-usuario/pedidos-api/internal/domain/entity"

// ProductRepository puerto de lectura del catálogo y actualización del stock on-hand.
// Las mutaciones de stock se hacen siempre dentro de una transacción con GetForUpdate.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	GetByBarcode(barcode string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Product, error)
	UpdateStock(id string, newStock int) error
	// ListLowStock productos con stock < min_stock, ordenados por severidad
	// (stock/min_stock ascendente), con el déficit calculado.
	ListLowStock() ([]*entity.LowStockProduct, error)
}
