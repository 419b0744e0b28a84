package delivery_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pedidos-api/internal/application/delivery"
	"github.com/tu-usuario/pedidos-api/internal/application/notifications"
	"github.com/tu-usuario/pedidos-api/internal/domain"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
	"github.com/tu-usuario/pedidos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memDeliveryRepo struct {
	mu        sync.Mutex
	byID      map[string]*entity.Delivery
	byOrder   map[string]*entity.Delivery
	locations []*entity.DeliveryLocation
	nextID    int
}

// Create replica el INSERT ... ON CONFLICT (order_id) DO NOTHING: el segundo
// domicilio para la misma orden no inserta y devuelve false.
func (r *memDeliveryRepo) Create(d *entity.Delivery) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byOrder[d.OrderID]; exists {
		return false, nil
	}
	r.nextID++
	d.ID = "d" + string(rune('0'+r.nextID))
	r.byID[d.ID] = d
	r.byOrder[d.OrderID] = d
	return true, nil
}

func (r *memDeliveryRepo) GetByID(id string) (*entity.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

func (r *memDeliveryRepo) GetByOrderID(orderID string) (*entity.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byOrder[orderID], nil
}

func (r *memDeliveryRepo) GetForUpdate(id string) (*entity.Delivery, error) { return r.GetByID(id) }

func (r *memDeliveryRepo) Update(d *entity.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[d.ID] = d
	r.byOrder[d.OrderID] = d
	return nil
}

func (r *memDeliveryRepo) UpdateLocation(deliveryID string, lat, lng float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.byID[deliveryID]
	if d != nil {
		d.CurrentLatitude = &lat
		d.CurrentLongitude = &lng
	}
	r.locations = append(r.locations, &entity.DeliveryLocation{
		DeliveryID: deliveryID, Latitude: lat, Longitude: lng, CreatedAt: time.Now(),
	})
	return nil
}

func (r *memDeliveryRepo) ListActiveByPerson(deliveryPersonID string) ([]*entity.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Delivery
	for _, d := range r.byID {
		if d.DeliveryPersonID != deliveryPersonID {
			continue
		}
		switch d.Status {
		case entity.DeliveryStatusAssigned, entity.DeliveryStatusPickedUp, entity.DeliveryStatusInTransit:
			out = append(out, d)
		}
	}
	return out, nil
}

// ListLocations devuelve los pings más recientes primero, como la consulta real.
func (r *memDeliveryRepo) ListLocations(deliveryID string, limit int) ([]*entity.DeliveryLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.DeliveryLocation
	for i := len(r.locations) - 1; i >= 0 && len(out) < limit; i-- {
		if r.locations[i].DeliveryID == deliveryID {
			out = append(out, r.locations[i])
		}
	}
	return out, nil
}

type memOrderRepo struct {
	mu      sync.Mutex
	orders  map[string]*entity.Order
	history []*entity.OrderStatusHistory
}

func (r *memOrderRepo) Create(o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *memOrderRepo) GetByID(id string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id], nil
}

func (r *memOrderRepo) GetForUpdate(id string) (*entity.Order, error) { return r.GetByID(id) }

func (r *memOrderRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Order, error) {
	return nil, nil
}

func (r *memOrderRepo) UpdateStatus(o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *memOrderRepo) AppendHistory(h *entity.OrderStatusHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, h)
	return nil
}

func (r *memOrderRepo) ListHistory(orderID string) ([]*entity.OrderStatusHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.OrderStatusHistory
	for _, h := range r.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

type memUserRepo struct {
	users map[string]*entity.User
}

func (r *memUserRepo) GetByID(id string) (*entity.User, error) { return r.users[id], nil }

func (r *memUserRepo) ListByRole(role string) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		if u.Role == role && u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

type memNotificationRepo struct{}

func (memNotificationRepo) Create(n *entity.Notification) error { return nil }
func (memNotificationRepo) ListByUser(userID string, limit, offset int) ([]*entity.Notification, error) {
	return nil, nil
}
func (memNotificationRepo) CountUnread(userID string) (int, error)   { return 0, nil }
func (memNotificationRepo) MarkRead(id, userID string) (bool, error) { return false, nil }
func (memNotificationRepo) MarkAllRead(userID string) error          { return nil }
func (memNotificationRepo) GetPreferences(userID string) (*entity.NotificationPreferences, error) {
	return nil, nil
}
func (memNotificationRepo) UpsertPreferences(p *entity.NotificationPreferences) error { return nil }

type noopBroadcaster struct{}

func (noopBroadcaster) ToUser(userID, event string, payload any) {}
func (noopBroadcaster) ToRole(role, event string, payload any)   {}

// fakeCache registra los Set para verificar que los pings llegan al cache.
type fakeCache struct {
	mu   sync.Mutex
	lats map[string]float64
	lngs map[string]float64
}

func newFakeCache() *fakeCache {
	return &fakeCache{lats: map[string]float64{}, lngs: map[string]float64{}}
}

func (c *fakeCache) Set(ctx context.Context, deliveryID string, lat, lng float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lats[deliveryID] = lat
	c.lngs[deliveryID] = lng
	return nil
}

func (c *fakeCache) Get(ctx context.Context, deliveryID string) (float64, float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lat, ok := c.lats[deliveryID]
	if !ok {
		return 0, 0, false, nil
	}
	return lat, c.lngs[deliveryID], true, nil
}

type fakeTxRunner struct {
	mu         sync.Mutex
	deliveries *memDeliveryRepo
	orders     *memOrderRepo
}

func (r *fakeTxRunner) RunDelivery(ctx context.Context, fn func(
	deliveryRepo repository.DeliveryRepository,
	orderRepo repository.OrderRepository,
) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.deliveries, r.orders)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc    *delivery.DeliveryUseCase
	tx    *fakeTxRunner
	cache *fakeCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tx := &fakeTxRunner{
		deliveries: &memDeliveryRepo{byID: map[string]*entity.Delivery{}, byOrder: map[string]*entity.Delivery{}},
		orders:     &memOrderRepo{orders: map[string]*entity.Order{}},
	}
	users := &memUserRepo{users: map[string]*entity.User{
		"courier-1": {ID: "courier-1", Name: "Carlos Ruiz", Role: entity.RoleDelivery, IsActive: true},
		"courier-2": {ID: "courier-2", Name: "Diana Mora", Role: entity.RoleDelivery, IsActive: true},
		"seller-1":  {ID: "seller-1", Name: "Pedro Gómez", Role: entity.RoleSeller, IsActive: true},
		"inactive":  {ID: "inactive", Name: "Ex Repartidor", Role: entity.RoleDelivery, IsActive: false},
	}}
	cache := newFakeCache()
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	notifier := notifications.NewNotifier(memNotificationRepo{}, users, noopBroadcaster{}, log)
	uc := delivery.NewDeliveryUseCase(tx, tx.deliveries, users, cache, notifier, log)
	return &fixture{uc: uc, tx: tx, cache: cache}
}

func (f *fixture) seedOrder(t *testing.T, id, status string) *entity.Order {
	t.Helper()
	now := time.Now()
	o := &entity.Order{
		ID: id, OrderNumber: "ORD-20260827-" + id, CustomerID: "cust-1",
		Status: status, FulfillmentType: entity.FulfillmentDelivery,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.tx.orders.Create(o))
	return o
}

func (f *fixture) seedAssigned(t *testing.T, orderID string) *entity.Delivery {
	t.Helper()
	f.seedOrder(t, orderID, entity.OrderStatusReadyForPickup)
	d, err := f.uc.Assign(context.Background(), orderID, "courier-1")
	require.NoError(t, err)
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestAssign_HappyPath(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(t, "o1", entity.OrderStatusReadyForPickup)

	d, err := f.uc.Assign(context.Background(), o.ID, "courier-1")
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryStatusAssigned, d.Status)
	assert.Equal(t, "courier-1", d.DeliveryPersonID)
	assert.Equal(t, o.OrderNumber, d.OrderNumber)

	stored, _ := f.tx.orders.GetByID(o.ID)
	assert.Equal(t, entity.OrderStatusOutForDelivery, stored.Status)
	history, _ := f.tx.orders.ListHistory(o.ID)
	require.Len(t, history, 1)
	assert.Equal(t, entity.OrderStatusOutForDelivery, history[0].Status)
}

// Dos asignaciones sobre la misma orden: la segunda choca con la restricción
// de unicidad por order_id y recibe ErrConflict.
func TestAssign_SecondClaimConflicts(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(t, "o1", entity.OrderStatusReadyForPickup)
	ctx := context.Background()

	_, err := f.uc.Assign(ctx, o.ID, "courier-1")
	require.NoError(t, err)

	// La orden ya está OUT_FOR_DELIVERY: el segundo intento no pasa la transición
	_, err = f.uc.Assign(ctx, o.ID, "courier-2")
	require.Error(t, err)

	d, _ := f.tx.deliveries.GetByOrderID(o.ID)
	assert.Equal(t, "courier-1", d.DeliveryPersonID)
}

func TestAssign_RejectsNonCourier(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(t, "o1", entity.OrderStatusReadyForPickup)
	ctx := context.Background()

	_, err := f.uc.Assign(ctx, o.ID, "seller-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Assign(ctx, o.ID, "inactive")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssign_RejectsPickupOrders(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	o := &entity.Order{
		ID: "o1", OrderNumber: "ORD-20260827-o1", CustomerID: "cust-1",
		Status: entity.OrderStatusReadyForPickup, FulfillmentType: entity.FulfillmentPickup,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.tx.orders.Create(o))

	_, err := f.uc.Assign(context.Background(), o.ID, "courier-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateStatus_DeliveredPropagatesToOrder(t *testing.T) {
	f := newFixture(t)
	d := f.seedAssigned(t, "o1")
	ctx := context.Background()

	_, err := f.uc.UpdateStatus(ctx, d.ID, entity.DeliveryStatusPickedUp, "courier-1", "")
	require.NoError(t, err)
	_, err = f.uc.UpdateStatus(ctx, d.ID, entity.DeliveryStatusInTransit, "courier-1", "")
	require.NoError(t, err)
	final, err := f.uc.UpdateStatus(ctx, d.ID, entity.DeliveryStatusDelivered, "courier-1", "")
	require.NoError(t, err)

	assert.Equal(t, entity.DeliveryStatusDelivered, final.Status)
	require.NotNil(t, final.DeliveredAt)
	require.NotNil(t, final.ElapsedMinutes)
	assert.GreaterOrEqual(t, *final.ElapsedMinutes, 0)

	stored, _ := f.tx.orders.GetByID("o1")
	assert.Equal(t, entity.OrderStatusDelivered, stored.Status)
	require.NotNil(t, stored.DeliveredAt)

	history, _ := f.tx.orders.ListHistory("o1")
	last := history[len(history)-1]
	assert.Equal(t, entity.OrderStatusDelivered, last.Status)
	assert.Equal(t, "courier-1", last.ChangedBy)
}

func TestUpdateStatus_OnlyAssignedCourier(t *testing.T) {
	f := newFixture(t)
	d := f.seedAssigned(t, "o1")

	_, err := f.uc.UpdateStatus(context.Background(), d.ID, entity.DeliveryStatusPickedUp, "courier-2", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateStatus_FailedRequiresReason(t *testing.T) {
	f := newFixture(t)
	d := f.seedAssigned(t, "o1")
	ctx := context.Background()

	_, err := f.uc.UpdateStatus(ctx, d.ID, entity.DeliveryStatusPickedUp, "courier-1", "")
	require.NoError(t, err)
	_, err = f.uc.UpdateStatus(ctx, d.ID, entity.DeliveryStatusInTransit, "courier-1", "")
	require.NoError(t, err)

	_, err = f.uc.UpdateStatus(ctx, d.ID, entity.DeliveryStatusFailed, "courier-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	failed, err := f.uc.UpdateStatus(ctx, d.ID, entity.DeliveryStatusFailed, "courier-1", "cliente ausente")
	require.NoError(t, err)
	assert.Equal(t, "cliente ausente", failed.FailureReason)
}

func TestUpdateStatus_RejectsSkippedStates(t *testing.T) {
	f := newFixture(t)
	d := f.seedAssigned(t, "o1")

	// ASSIGNED no puede saltar directo a DELIVERED
	_, err := f.uc.UpdateStatus(context.Background(), d.ID, entity.DeliveryStatusDelivered, "courier-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUpdateLocation_PersistsAndCaches(t *testing.T) {
	f := newFixture(t)
	d := f.seedAssigned(t, "o1")
	ctx := context.Background()

	require.NoError(t, f.uc.UpdateLocation(ctx, d.ID, 4.60971, -74.08175, "courier-1"))

	stored, _ := f.tx.deliveries.GetByID(d.ID)
	require.NotNil(t, stored.CurrentLatitude)
	assert.InDelta(t, 4.60971, *stored.CurrentLatitude, 1e-9)

	locations, _ := f.tx.deliveries.ListLocations(d.ID, 50)
	require.Len(t, locations, 1)

	lat, lng, ok, err := f.cache.Get(ctx, d.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 4.60971, lat, 1e-9)
	assert.InDelta(t, -74.08175, lng, 1e-9)

	// Otro repartidor no puede reportar posición de este domicilio
	err = f.uc.UpdateLocation(ctx, d.ID, 4.61, -74.08, "courier-2")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLocations_HistoryVisibilityByRole(t *testing.T) {
	f := newFixture(t)
	d := f.seedAssigned(t, "o1")
	ctx := context.Background()

	require.NoError(t, f.uc.UpdateLocation(ctx, d.ID, 4.60971, -74.08175, "courier-1"))
	require.NoError(t, f.uc.UpdateLocation(ctx, d.ID, 4.61102, -74.08033, "courier-1"))

	// El repartidor asignado ve su historial, ping más reciente primero
	locations, err := f.uc.Locations(ctx, d.ID, "courier-1", entity.RoleDelivery, 0)
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.InDelta(t, 4.61102, locations[0].Latitude, 1e-9)

	// Otro repartidor no; el staff sí
	_, err = f.uc.Locations(ctx, d.ID, "courier-2", entity.RoleDelivery, 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	staffView, err := f.uc.Locations(ctx, d.ID, "manager-1", entity.RoleManager, 0)
	require.NoError(t, err)
	assert.Len(t, staffView, 2)

	_, err = f.uc.Locations(ctx, "no-existe", "courier-1", entity.RoleDelivery, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRate_RulesEnforced(t *testing.T) {
	f := newFixture(t)
	d := f.seedAssigned(t, "o1")
	ctx := context.Background()

	// Fuera de rango
	_, err := f.uc.Rate(ctx, d.ID, 6, "", "cust-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Antes de DELIVERED no se califica
	_, err = f.uc.Rate(ctx, d.ID, 5, "", "cust-1")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.uc.UpdateStatus(ctx, d.ID, entity.DeliveryStatusPickedUp, "courier-1", "")
	require.NoError(t, err)
	_, err = f.uc.UpdateStatus(ctx, d.ID, entity.DeliveryStatusInTransit, "courier-1", "")
	require.NoError(t, err)
	_, err = f.uc.UpdateStatus(ctx, d.ID, entity.DeliveryStatusDelivered, "courier-1", "")
	require.NoError(t, err)

	// Solo el dueño de la orden
	_, err = f.uc.Rate(ctx, d.ID, 5, "", "cust-2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	rated, err := f.uc.Rate(ctx, d.ID, 4, "rápido y amable", "cust-1")
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 4, *rated.Rating)
	assert.Equal(t, "rápido y amable", rated.RatingComment)

	// Una sola vez
	_, err = f.uc.Rate(ctx, d.ID, 5, "", "cust-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestListActive_MergesCachedPositions(t *testing.T) {
	f := newFixture(t)
	d := f.seedAssigned(t, "o1")
	ctx := context.Background()

	require.NoError(t, f.cache.Set(ctx, d.ID, 4.65, -74.05))

	list, err := f.uc.ListActive(ctx, "courier-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].CurrentLatitude)
	assert.InDelta(t, 4.65, *list[0].CurrentLatitude, 1e-9)
	assert.InDelta(t, -74.05, *list[0].CurrentLongitude, 1e-9)
}
