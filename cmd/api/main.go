package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Almacen-api/internal/application/fulfillment"
	"github.com/jhoicas/Almacen-api/internal/application/usecase"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/authz"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Almacen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Almacen-api/internal/interfaces/http"
	"github.com/jhoicas/Almacen-api/pkg/config"
	"github.com/jhoicas/Almacen-api/pkg/logger"
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

	// Repositorios fuera de transacción (lecturas y catálogo)
	itemRepo := postgres.NewItemRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	stockRepo := postgres.NewStockRowRepository(pool)
	movRepo := postgres.NewMovementRepository(pool)
	requestRepo := postgres.NewRequestRepository(pool)
	workOrders := postgres.NewWorkOrderDirectory(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Núcleo de aplicación
	ledger := fulfillment.NewStockLedger()
	recorder := fulfillment.NewMovementRecorder()
	reservations := fulfillment.NewReservationManager(ledger)
	router := fulfillment.NewTransferRouter(ledger, recorder)
	roleMatrix := authz.NewRoleMatrix()

	workflow := fulfillment.NewRequestWorkflow(
		txRunner, reservations, router, roleMatrix, workOrders,
		itemRepo, locationRepo, requestRepo, log,
	)
	stockOps := fulfillment.NewStockOperations(
		txRunner, ledger, recorder, router, roleMatrix,
		itemRepo, locationRepo, stockRepo, movRepo,
	)
	reconciler := fulfillment.NewReconciler(recorder, stockRepo, movRepo, log)
	itemUC := usecase.NewItemUseCase(itemRepo)

	// PDF: guía de entrega de materiales
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	deliveryNotes := fulfillment.NewDeliveryNoteService(
		pdfGenerator, requestRepo, itemRepo, locationRepo, movRepo,
	)

	collector := metrics.NewCollector()

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
		Title:    "Almacén API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(
		collector.Registry(), promhttp.HandlerOpts{},
	)))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Workflow:      workflow,
		StockOps:      stockOps,
		Reconciler:    reconciler,
		DeliveryNotes: deliveryNotes,
		ItemUC:        itemUC,
		LocationRepo:  locationRepo,
		Collector:     collector,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
