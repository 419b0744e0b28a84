package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/pedidos-api/internal/application/dto"
	"github.com/tu-usuario/pedidos-api/internal/domain"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
	"github.com/tu-usuario/pedidos-api/internal/domain/stock"
)

// StockUseCase libro de stock: registra movimientos de forma transaccional con
// bloqueo de fila (SELECT FOR UPDATE) y expone las consultas de inventario.
type StockUseCase struct {
	txRunner TxRunner
	products repository.ProductRepository
	movs     repository.InventoryMovementRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner, products repository.ProductRepository, movs repository.InventoryMovementRepository) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, products: products, movs: movs}
}

// MovementInput entrada para registrar un movimiento. Para ADJUSTMENT, Quantity
// es el nuevo total absoluto.
type MovementInput struct {
	ProductID   string
	Type        string
	Quantity    int
	Reason      string
	ReferenceID string
	ActorID     string
}

// RegisterMovement inicia una transacción, bloquea la fila del producto, aplica el
// movimiento y guarda el registro inmutable con el antes/después. Commit o Rollback.
func (uc *StockUseCase) RegisterMovement(ctx context.Context, in MovementInput) (*entity.InventoryMovement, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrInvalidInput)
	}
	if in.Quantity == 0 && in.Type != entity.MovementTypeADJUSTMENT {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}

	var mov *entity.InventoryMovement
	err := uc.txRunner.RunInventory(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		mov, err = ApplyInTx(movRepo, productRepo, product, in.Type, in.Quantity, in.Reason, in.ActorID, in.ReferenceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// AdjustStock atajo para gerentes: aplica un delta con signo como ADJUSTMENT,
// con la misma guarda de stock negativo que una salida.
func (uc *StockUseCase) AdjustStock(ctx context.Context, productID string, delta int, reason, actorID string) (*entity.InventoryMovement, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	if delta == 0 {
		return nil, fmt.Errorf("%w: el delta no puede ser cero", domain.ErrInvalidInput)
	}

	var mov *entity.InventoryMovement
	err := uc.txRunner.RunInventory(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetForUpdate(productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		target := product.Stock + delta
		if target < 0 {
			return fmt.Errorf("%w: disponible %d, delta %d", domain.ErrInsufficientStock, product.Stock, delta)
		}
		mov, err = ApplyInTx(movRepo, productRepo, product, entity.MovementTypeADJUSTMENT, target, reason, actorID, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// LowStock productos bajo el umbral mínimo, ordenados por severidad.
func (uc *StockUseCase) LowStock(ctx context.Context) ([]*entity.LowStockProduct, error) {
	return uc.products.ListLowStock()
}

// ListMovements movimientos del libro, filtrables por producto y rango de fechas.
func (uc *StockUseCase) ListMovements(ctx context.Context, productID string, from, to *time.Time, page dto.PageRequest) ([]*entity.InventoryMovement, error) {
	page.DefaultPage()
	return uc.movs.List(productID, from, to, page.Limit, page.Offset)
}

// ApplyInTx aplica un movimiento usando los repositorios del caller (misma transacción).
// Lo usan la creación/cancelación de órdenes y la recepción de compras para que el
// decremento/incremento de stock y su registro viajen en el commit del caller.
// El producto debe venir ya bloqueado con GetForUpdate.
func ApplyInTx(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	movType string, quantity int,
	reason, actorID, referenceID string,
) (*entity.InventoryMovement, error) {
	newStock, err := stock.Apply(movType, product.Stock, quantity)
	if err != nil {
		return nil, fmt.Errorf("producto %s: %w", product.Name, err)
	}
	qty := quantity
	if movType == entity.MovementTypeADJUSTMENT {
		qty = stock.Delta(product.Stock, newStock)
	}
	mov := &entity.InventoryMovement{
		ProductID:     product.ID,
		Type:          movType,
		Quantity:      qty,
		PreviousStock: product.Stock,
		NewStock:      newStock,
		Reason:        reason,
		PerformedBy:   actorID,
		ReferenceID:   referenceID,
		CreatedAt:     time.Now(),
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	if err := productRepo.UpdateStock(product.ID, newStock); err != nil {
		return nil, err
	}
	product.Stock = newStock
	return mov, nil
}
