package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/fulfillment"
	"github.com/jhoicas/Almacen-api/internal/application/usecase"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Workflow      *fulfillment.RequestWorkflow
	StockOps      *fulfillment.StockOperations
	Reconciler    *fulfillment.Reconciler
	DeliveryNotes *fulfillment.DeliveryNoteService
	ItemUC        *usecase.ItemUseCase
	LocationRepo  repository.LocationRepository
	Collector     *metrics.Collector
	JWTSecret     string
}

// Router registra las rutas de la API. Todas las rutas de negocio requieren
// Bearer Token; la autorización fina por rol se resuelve en la capa de aplicación.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Solicitudes de materiales (protegido)
	requests := protected.Group("/requests")
	requestHandler := NewRequestHandler(deps.Workflow, deps.DeliveryNotes, deps.Collector)
	requests.Post("/", requestHandler.Create)
	requests.Get("/", requestHandler.List)
	requests.Get("/:id", requestHandler.GetByID)
	requests.Post("/:id/approve", requestHandler.Approve)
	requests.Post("/:id/reject", requestHandler.Reject)
	requests.Post("/:id/dispatch", requestHandler.Dispatch)
	requests.Post("/:id/receive", requestHandler.ReceiveTransit)
	requests.Post("/:id/confirm", requestHandler.Confirm)
	requests.Post("/:id/cancel", requestHandler.Cancel)
	requests.Get("/:id/delivery-note", requestHandler.DeliveryNote)

	// Stock y movimientos (protegido)
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockOps, deps.Reconciler, deps.Collector)
	stock.Get("/", stockHandler.GetStockRow)
	stock.Get("/movements", stockHandler.ListMovements)
	stock.Get("/reconcile", stockHandler.Reconcile)
	stock.Post("/adjust", stockHandler.Adjust)
	stock.Post("/returns", stockHandler.Return)
	stock.Post("/damage", stockHandler.Damage)

	// Catálogo de ítems (protegido)
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", itemHandler.Deactivate)

	// Directorio de ubicaciones (protegido, solo lectura)
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationRepo)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
}
