package purchasing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pedidos-api/internal/application/dto"
	"github.com/tu-usuario/pedidos-api/internal/application/purchasing"
	"github.com/tu-usuario/pedidos-api/internal/domain"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memPurchaseRepo struct {
	mu  sync.Mutex
	pos map[string]*entity.PurchaseOrder
}

func (r *memPurchaseRepo) Create(po *entity.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos[po.ID] = po
	return nil
}

func (r *memPurchaseRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos[id], nil
}

func (r *memPurchaseRepo) GetForUpdate(id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(id)
}

func (r *memPurchaseRepo) Update(po *entity.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos[po.ID] = po
	return nil
}

func (r *memPurchaseRepo) UpdateItemReceived(itemID string, receivedQty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, po := range r.pos {
		for _, it := range po.Items {
			if it.ID == itemID {
				it.ReceivedQty = receivedQty
				return nil
			}
		}
	}
	return nil
}

func (r *memPurchaseRepo) List(limit, offset int) ([]*entity.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PurchaseOrder
	for _, po := range r.pos {
		out = append(out, po)
	}
	return out, nil
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id], nil
}

func (r *memProductRepo) GetByBarcode(barcode string) (*entity.Product, error) { return nil, nil }

func (r *memProductRepo) GetForUpdate(id string) (*entity.Product, error) { return r.GetByID(id) }

func (r *memProductRepo) UpdateStock(id string, newStock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		p.Stock = newStock
	}
	return nil
}

func (r *memProductRepo) ListLowStock() ([]*entity.LowStockProduct, error) { return nil, nil }

type memMovementRepo struct {
	mu   sync.Mutex
	rows []*entity.InventoryMovement
}

func (r *memMovementRepo) Create(m *entity.InventoryMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, m)
	return nil
}

func (r *memMovementRepo) GetByID(id string) (*entity.InventoryMovement, error) { return nil, nil }

func (r *memMovementRepo) List(productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	return nil, nil
}

type fakeTxRunner struct {
	mu       sync.Mutex
	pos      *memPurchaseRepo
	movs     *memMovementRepo
	products *memProductRepo
}

func (r *fakeTxRunner) RunPurchase(ctx context.Context, fn func(
	poRepo repository.PurchaseOrderRepository,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.pos, r.movs, r.products)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

func newFixture(t *testing.T) (*purchasing.PurchasingUseCase, *fakeTxRunner) {
	t.Helper()
	tx := &fakeTxRunner{
		pos:  &memPurchaseRepo{pos: map[string]*entity.PurchaseOrder{}},
		movs: &memMovementRepo{},
		products: &memProductRepo{products: map[string]*entity.Product{
			"p1": {ID: "p1", Name: "Café 500g", Stock: 2, MinStock: 5, IsActive: true},
			"p2": {ID: "p2", Name: "Azúcar 1kg", Stock: 0, MinStock: 5, IsActive: true},
		}},
	}
	uc := purchasing.NewPurchasingUseCase(tx, tx.pos)
	return uc, tx
}

func sampleRequest() dto.CreatePurchaseOrderRequest {
	return dto.CreatePurchaseOrderRequest{
		SupplierID: "sup-1",
		Items: []dto.PurchaseItemRequest{
			{ProductID: "p1", OrderedQty: 20, UnitCost: decimal.NewFromInt(8000)},
			{ProductID: "p2", OrderedQty: 10, UnitCost: decimal.NewFromInt(3000)},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_OrderedWithLines(t *testing.T) {
	uc, _ := newFixture(t)

	po, err := uc.Create(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusOrdered, po.Status)
	assert.NotEmpty(t, po.ID)
	require.Len(t, po.Items, 2)
	assert.Equal(t, 20, po.Items[0].OrderedQty)
	assert.Zero(t, po.Items[0].ReceivedQty)
}

func TestCreate_ValidatesInput(t *testing.T) {
	uc, _ := newFixture(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreatePurchaseOrderRequest{SupplierID: "", Items: sampleRequest().Items})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreatePurchaseOrderRequest{SupplierID: "sup-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin items")

	bad := sampleRequest()
	bad.Items[0].OrderedQty = 0
	_, err = uc.Create(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad no positiva")
}

// La recepción incrementa el stock de cada línea con un movimiento IN que referencia
// la orden de compra, y deja la orden en RECEIVED.
func TestReceive_IncrementsStockPerLine(t *testing.T) {
	uc, tx := newFixture(t)
	ctx := context.Background()

	po, err := uc.Create(ctx, sampleRequest())
	require.NoError(t, err)

	received, err := uc.Receive(ctx, po.ID, "manager-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusReceived, received.Status)
	require.NotNil(t, received.ReceivedAt)
	assert.Equal(t, "manager-1", received.ReceivedBy)
	for _, it := range received.Items {
		assert.Equal(t, it.OrderedQty, it.ReceivedQty)
	}

	p1, _ := tx.products.GetByID("p1")
	p2, _ := tx.products.GetByID("p2")
	assert.Equal(t, 22, p1.Stock)
	assert.Equal(t, 10, p2.Stock)

	require.Len(t, tx.movs.rows, 2)
	for _, m := range tx.movs.rows {
		assert.Equal(t, entity.MovementTypeIN, m.Type)
		assert.Equal(t, po.ID, m.ReferenceID)
		assert.Equal(t, "manager-1", m.PerformedBy)
	}
}

// Recibir dos veces la misma orden es conflicto y no duplica stock.
func TestReceive_SecondTimeConflicts(t *testing.T) {
	uc, tx := newFixture(t)
	ctx := context.Background()

	po, err := uc.Create(ctx, sampleRequest())
	require.NoError(t, err)
	_, err = uc.Receive(ctx, po.ID, "manager-1")
	require.NoError(t, err)

	_, err = uc.Receive(ctx, po.ID, "manager-1")
	assert.ErrorIs(t, err, domain.ErrConflict)

	p1, _ := tx.products.GetByID("p1")
	assert.Equal(t, 22, p1.Stock, "el stock no debe duplicarse")
}

func TestReceive_UnknownOrder(t *testing.T) {
	uc, _ := newFixture(t)

	_, err := uc.Receive(context.Background(), "no-existe", "manager-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByID_NotFound(t *testing.T) {
	uc, _ := newFixture(t)

	_, err := uc.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
