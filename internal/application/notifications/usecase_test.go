package notifications_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pedidos-api/internal/application/dto"
	"github.com/tu-usuario/pedidos-api/internal/application/notifications"
	"github.com/tu-usuario/pedidos-api/internal/domain"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memNotificationRepo struct {
	mu    sync.Mutex
	rows  []*entity.Notification
	prefs map[string]*entity.NotificationPreferences
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{prefs: map[string]*entity.NotificationPreferences{}}
}

func (r *memNotificationRepo) Create(n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, n)
	return nil
}

func (r *memNotificationRepo) ListByUser(userID string, limit, offset int) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) CountUnread(userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.rows {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) MarkRead(id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.ID == id && n.UserID == userID && !n.IsRead {
			n.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (r *memNotificationRepo) MarkAllRead(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *memNotificationRepo) GetPreferences(userID string) (*entity.NotificationPreferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prefs[userID], nil
}

func (r *memNotificationRepo) UpsertPreferences(p *entity.NotificationPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[p.UserID] = p
	return nil
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

// recordingBroadcaster captura los pushes emitidos para verificarlos.
type recordingBroadcaster struct {
	mu     sync.Mutex
	toUser []string // "userID/event"
	toRole []string // "role/event"
}

func (b *recordingBroadcaster) ToUser(userID, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toUser = append(b.toUser, userID+"/"+event)
}

func (b *recordingBroadcaster) ToRole(role, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toRole = append(b.toRole, role+"/"+event)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	notifier *notifications.Notifier
	repo     *memNotificationRepo
	cast     *recordingBroadcaster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemNotificationRepo()
	users := &memUserRepo{users: map[string]*entity.User{
		"admin-1":   {ID: "admin-1", Role: entity.RoleAdmin, IsActive: true},
		"seller-1":  {ID: "seller-1", Role: entity.RoleSeller, IsActive: true},
		"seller-2":  {ID: "seller-2", Role: entity.RoleSeller, IsActive: false},
		"courier-1": {ID: "courier-1", Role: entity.RoleDelivery, IsActive: true},
		"cust-1":    {ID: "cust-1", Role: entity.RoleCustomer, IsActive: true},
	}}
	cast := &recordingBroadcaster{}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	notifier := notifications.NewNotifier(repo, users, cast, log)
	return &fixture{notifier: notifier, repo: repo, cast: cast}
}

func sampleOrder() *entity.Order {
	return &entity.Order{
		ID: "o1", OrderNumber: "ORD-20260827-AAAA1111",
		CustomerID: "cust-1", Status: entity.OrderStatusConfirmed,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Sin fila de preferencias todo está activo: fila persistida y push emitido.
func TestStatusChanged_DefaultsPersistAndPush(t *testing.T) {
	f := newFixture(t)

	f.notifier.StatusChanged(context.Background(), sampleOrder())

	rows, _ := f.repo.ListByUser("cust-1", 50, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, entity.NotificationStatusChanged, rows[0].Type)
	assert.False(t, rows[0].IsRead)
	require.Len(t, f.cast.toUser, 1)
	assert.Equal(t, "cust-1/"+entity.NotificationStatusChanged, f.cast.toUser[0])
}

// orderUpdates:false silencia el evento por completo: ni fila ni push.
func TestStatusChanged_OrderUpdatesOffSkipsAll(t *testing.T) {
	f := newFixture(t)
	f.repo.prefs["cust-1"] = &entity.NotificationPreferences{
		UserID: "cust-1", OrderUpdates: false, Promotions: true, Push: true,
	}

	f.notifier.StatusChanged(context.Background(), sampleOrder())

	rows, _ := f.repo.ListByUser("cust-1", 50, 0)
	assert.Empty(t, rows)
	assert.Empty(t, f.cast.toUser)
}

// push:false persiste la fila (consultable después) pero no emite en vivo.
func TestStatusChanged_PushOffPersistsOnly(t *testing.T) {
	f := newFixture(t)
	f.repo.prefs["cust-1"] = &entity.NotificationPreferences{
		UserID: "cust-1", OrderUpdates: true, Promotions: true, Push: false,
	}

	f.notifier.StatusChanged(context.Background(), sampleOrder())

	rows, _ := f.repo.ListByUser("cust-1", 50, 0)
	require.Len(t, rows, 1)
	assert.Empty(t, f.cast.toUser)
}

// newOrder abre en abanico hacia el staff: una fila por usuario activo del rol
// y una emisión por sala de rol.
func TestNewOrder_FansOutToStaff(t *testing.T) {
	f := newFixture(t)

	f.notifier.NewOrder(context.Background(), sampleOrder())

	adminRows, _ := f.repo.ListByUser("admin-1", 50, 0)
	sellerRows, _ := f.repo.ListByUser("seller-1", 50, 0)
	inactiveRows, _ := f.repo.ListByUser("seller-2", 50, 0)
	custRows, _ := f.repo.ListByUser("cust-1", 50, 0)
	assert.Len(t, adminRows, 1)
	assert.Len(t, sellerRows, 1)
	assert.Empty(t, inactiveRows, "los usuarios inactivos no reciben filas")
	assert.Empty(t, custRows, "los clientes no están en el fan-out de staff")

	assert.Contains(t, f.cast.toRole, entity.RoleAdmin+"/"+entity.NotificationNewOrder)
	assert.Contains(t, f.cast.toRole, entity.RoleSeller+"/"+entity.NotificationNewOrder)
}

// readyForPickup notifica al pool de repartidores y al cliente.
func TestReadyForPickup_NotifiesCouriersAndCustomer(t *testing.T) {
	f := newFixture(t)

	f.notifier.ReadyForPickup(context.Background(), sampleOrder())

	courierRows, _ := f.repo.ListByUser("courier-1", 50, 0)
	custRows, _ := f.repo.ListByUser("cust-1", 50, 0)
	require.Len(t, courierRows, 1)
	require.Len(t, custRows, 1)
	assert.Contains(t, f.cast.toRole, entity.RoleDelivery+"/"+entity.NotificationReadyForPickup)
	assert.Contains(t, f.cast.toUser, "cust-1/"+entity.NotificationReadyForPickup)
}

func TestMarkRead_OwnershipAndIdempotence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, f.repo.Create(&entity.Notification{
		ID: "n1", UserID: "cust-1", Type: entity.NotificationStatusChanged, CreatedAt: now,
	}))

	// Otro usuario no puede marcarla
	err := f.notifier.MarkRead(ctx, "n1", "admin-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.notifier.MarkRead(ctx, "n1", "cust-1"))
	count, _ := f.notifier.UnreadCount(ctx, "cust-1")
	assert.Zero(t, count)

	// Ya leída: segunda marca no encuentra fila elegible
	err = f.notifier.MarkRead(ctx, "n1", "cust-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, f.repo.Create(&entity.Notification{
			ID: id, UserID: "cust-1", Type: entity.NotificationStatusChanged, CreatedAt: time.Now(),
		}))
	}

	require.NoError(t, f.notifier.MarkAllRead(ctx, "cust-1"))
	count, _ := f.notifier.UnreadCount(ctx, "cust-1")
	assert.Zero(t, count)
}

// Cambio parcial de preferencias: los campos omitidos conservan su valor.
func TestUpdatePreferences_PartialPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	push := false
	p, err := f.notifier.UpdatePreferences(ctx, "cust-1", dto.PreferencesRequest{Push: &push})
	require.NoError(t, err)
	assert.False(t, p.Push)
	assert.True(t, p.OrderUpdates, "los campos omitidos conservan el default")
	assert.True(t, p.Promotions)

	// La fila quedó persistida y una lectura posterior la devuelve
	stored, err := f.notifier.Preferences(ctx, "cust-1")
	require.NoError(t, err)
	assert.False(t, stored.Push)
}
