package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pedidos-api/internal/application/delivery"
	"github.com/tu-usuario/pedidos-api/internal/application/inventory"
	"github.com/tu-usuario/pedidos-api/internal/application/notifications"
	"github.com/tu-usuario/pedidos-api/internal/application/orders"
	"github.com/tu-usuario/pedidos-api/internal/application/picking"
	"github.com/tu-usuario/pedidos-api/internal/application/purchasing"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
	"github.com/tu-usuario/pedidos-api/internal/infrastructure/realtime"
	"github.com/tu-usuario/pedidos-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	OrderUC      *orders.OrderUseCase
	StockUC      *inventory.StockUseCase
	PickingUC    *picking.PickingUseCase
	DeliveryUC   *delivery.DeliveryUseCase
	PurchasingUC *purchasing.PurchasingUseCase
	Notifier     *notifications.Notifier
	Hub          *realtime.Hub
	Users        repository.UserRepository
	JWTSecret    string
	Log          *logger.Logger
}

// Router registra las rutas de la API con sus gates RBAC.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Websocket de notificaciones (token por query, fuera del middleware Bearer)
	wsHandler := NewWSHandler(deps.Hub, deps.Notifier, deps.Users, deps.JWTSecret, deps.Log)
	app.Get("/ws/notifications", wsHandler.Upgrade, wsHandler.Serve())

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	staff := RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleSeller)
	managers := RequireRole(entity.RoleAdmin, entity.RoleManager)

	// Orders
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	ordersGroup.Post("/", RequireRole(entity.RoleCustomer), orderHandler.Create)
	ordersGroup.Get("/my-orders", RequireRole(entity.RoleCustomer), orderHandler.ListMine)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Get("/:id/tracking", orderHandler.Tracking)
	ordersGroup.Patch("/:id/status", staff, orderHandler.UpdateStatus)
	ordersGroup.Post("/:id/cancel", RequireRole(entity.RoleCustomer), orderHandler.Cancel)

	// Inventory (libro de stock)
	invGroup := protected.Group("/inventory", managers)
	inventoryHandler := NewInventoryHandler(deps.StockUC)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Post("/adjust", inventoryHandler.AdjustStock)
	invGroup.Get("/low-stock", inventoryHandler.LowStock)

	// Picking (vendedores)
	sellerGroup := protected.Group("/seller", RequireRole(entity.RoleSeller))
	pickingHandler := NewPickingHandler(deps.PickingUC)
	sellerGroup.Post("/orders/:orderId/accept", pickingHandler.Accept)
	sellerGroup.Get("/picking", pickingHandler.Queue)
	sellerGroup.Get("/picking/:id", pickingHandler.GetByID)
	sellerGroup.Post("/picking/:id/scan", pickingHandler.Scan)
	sellerGroup.Post("/picking/:itemId/manual-pick", pickingHandler.ManualPick)
	sellerGroup.Post("/picking/:id/complete", pickingHandler.Complete)

	// Delivery (domicilios)
	deliveryGroup := protected.Group("/delivery")
	deliveryHandler := NewDeliveryHandler(deps.DeliveryUC)
	deliveryGroup.Post("/assign", managers, deliveryHandler.Assign)
	deliveryGroup.Get("/active", RequireRole(entity.RoleDelivery), deliveryHandler.ListActive)
	deliveryGroup.Patch("/:id/location", RequireRole(entity.RoleDelivery), deliveryHandler.UpdateLocation)
	deliveryGroup.Get("/:id/locations", RequireRole(entity.RoleDelivery, entity.RoleAdmin, entity.RoleManager), deliveryHandler.Locations)
	deliveryGroup.Patch("/:id/status", RequireRole(entity.RoleDelivery), deliveryHandler.UpdateStatus)
	deliveryGroup.Post("/:id/rate", RequireRole(entity.RoleCustomer), deliveryHandler.Rate)

	// Notifications
	notifGroup := protected.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.Notifier)
	notifGroup.Get("/", notificationHandler.List)
	notifGroup.Get("/unread-count", notificationHandler.UnreadCount)
	notifGroup.Get("/preferences", notificationHandler.GetPreferences)
	notifGroup.Patch("/preferences", notificationHandler.UpdatePreferences)
	notifGroup.Patch("/read-all", notificationHandler.MarkAllRead)
	notifGroup.Patch("/:id/read", notificationHandler.MarkRead)

	// Purchasing (compras a proveedor)
	purchGroup := protected.Group("/purchasing", managers)
	purchasingHandler := NewPurchasingHandler(deps.PurchasingUC)
	purchGroup.Post("/", purchasingHandler.Create)
	purchGroup.Get("/", purchasingHandler.List)
	purchGroup.Get("/:id", purchasingHandler.GetByID)
	purchGroup.Post("/:id/receive", purchasingHandler.Receive)
}
