package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo (el catálogo es de otro servicio;
// aquí se lee precio/impuesto/código de barras y se administra el stock on-hand).
type Product struct {
	ID        string
	SKU       string
	Barcode   string
	Name      string
	Unit      string // unidad de venta: "unidad", "kg", "caja"
	Price     decimal.Decimal
	TaxRate   decimal.Decimal // IVA: 0, 0.05, 0.19
	Stock     int
	MinStock  int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LowStockProduct fila del reporte de stock bajo, ordenado por severidad.
type LowStockProduct struct {
	Product
	Deficit int // min_stock - stock
}
