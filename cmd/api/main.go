package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	appdelivery "github.com/tu-usuario/pedidos-api/internal/application/delivery"
	"github.com/tu-usuario/pedidos-api/internal/application/inventory"
	"github.com/tu-usuario/pedidos-api/internal/application/notifications"
	"github.com/tu-usuario/pedidos-api/internal/application/orders"
	"github.com/tu-usuario/pedidos-api/internal/application/picking"
	"github.com/tu-usuario/pedidos-api/internal/application/purchasing"
	"github.com/tu-usuario/pedidos-api/internal/infrastructure/postgres"
	"github.com/tu-usuario/pedidos-api/internal/infrastructure/realtime"
	"github.com/tu-usuario/pedidos-api/internal/infrastructure/rediscache"
	httpRouter "github.com/tu-usuario/pedidos-api/internal/interfaces/http"
	"github.com/tu-usuario/pedidos-api/pkg/config"
	"github.com/tu-usuario/pedidos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	pickingRepo := postgres.NewPickingRepository(pool)
	deliveryRepo := postgres.NewDeliveryRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	purchaseRepo := postgres.NewPurchaseOrderRepository(pool)
	addressRepo := postgres.NewAddressRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Cache de posiciones (opcional: REDIS_ADDR vacío la desactiva)
	var locationCache appdelivery.LocationCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, cache de posiciones desactivada")
		} else {
			locationCache = rediscache.NewLocationCache(rdb)
			defer rdb.Close()
		}
	}

	hub := realtime.NewHub(log)
	notifier := notifications.NewNotifier(notificationRepo, userRepo, hub, log)

	stockUC := inventory.NewStockUseCase(txRunner, productRepo, movementRepo)
	orderUC := orders.NewOrderUseCase(txRunner, orderRepo, addressRepo, notifier, orders.Config{
		DeliveryFee: cfg.Orders.DeliveryFee,
		OrderPrefix: cfg.Orders.OrderPrefix,
	})
	pickingUC := picking.NewPickingUseCase(txRunner, pickingRepo, notifier)
	deliveryUC := appdelivery.NewDeliveryUseCase(txRunner, deliveryRepo, userRepo, locationCache, notifier, log)
	purchasingUC := purchasing.NewPurchasingUseCase(txRunner, purchaseRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Pedidos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		OrderUC:      orderUC,
		StockUC:      stockUC,
		PickingUC:    pickingUC,
		DeliveryUC:   deliveryUC,
		PurchasingUC: purchasingUC,
		Notifier:     notifier,
		Hub:          hub,
		Users:        userRepo,
		JWTSecret:    cfg.JWT.Secret,
		Log:          log,
	})

	// Apagado ordenado: SIGINT/SIGTERM drenan conexiones antes de salir
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("apagando servidor")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := cfg.HTTP.Addr()
	log.Info().Str("addr", addr).Msg("servidor HTTP escuchando")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("servidor HTTP")
	}
	log.Info().Msg("servidor detenido")
}
