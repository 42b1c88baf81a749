package http

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/application/usecase"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/pkg/jwt"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC   *usecase.CatalogUseCase
	CommitUC    *inventory.CommitBatchUseCase
	BalanceUC   *inventory.BalanceUseCase
	MovementUC  *inventory.MovementUseCase
	DraftUC     *inventory.DraftUseCase
	ReportUC    *inventory.ReportUseCase
	DB          Pinger
	Metrics     prometheus.Gatherer // nil = sin /metrics
	Log         *logger.Logger
	JWTSecret   string
	JWTIssuer   string
	SwaggerFile string // vacío o inexistente = sin /docs
}

// NewApp construye la aplicación Fiber con recover, access log, swagger y métricas.
func NewApp(name string, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{AppName: name})
	app.Use(recover.New())
	if deps.Log != nil {
		app.Use(AccessLog(deps.Log))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	if deps.SwaggerFile != "" {
		if _, err := os.Stat(deps.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.SwaggerFile,
				Path:     "docs",
				Title:    "LabStock API",
			}))
		}
	}
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}
	Router(app, deps)
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	health := NewHealthHandler(deps.DB)
	app.Get("/health", health.Health)

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleInventario, jwt.RoleLaboratorista)
	stockRole := RequireRole(jwt.RoleAdmin, jwt.RoleInventario)

	catalog := api.Group("/catalog", anyRole)
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	catalog.Get("/items", catalogHandler.ListItems)
	catalog.Get("/sections", catalogHandler.ListSections)
	catalog.Get("/employees", catalogHandler.ListEmployees)

	inv := api.Group("/inventory")
	invHandler := NewInventoryHandler(deps.CommitUC, deps.BalanceUC, deps.MovementUC, deps.DraftUC)
	if deps.ReportUC != nil {
		reportHandler := NewReportHandler(deps.ReportUC)
		inv.Get("/balances/report", anyRole, reportHandler.Download)
		inv.Post("/balances/report/archive", stockRole, reportHandler.Archive)
	}
	inv.Get("/balances", anyRole, invHandler.ListBalances)
	inv.Get("/balances/:item_id", anyRole, invHandler.GetBalance)
	inv.Get("/movements", anyRole, invHandler.ListMovements)
	inv.Post("/drafts", anyRole, invHandler.OpenDraft)
	inv.Post("/drafts/eligible", anyRole, invHandler.Eligible)

	// Ingresos y bajas: inventario; consumos: también laboratorio.
	inv.Post("/batches/received", stockRole, invHandler.CommitBatch(entity.EntryKindReceived))
	inv.Post("/batches/removed", stockRole, invHandler.CommitBatch(entity.EntryKindRemoved))
	inv.Post("/batches/consumed", anyRole, invHandler.CommitBatch(entity.EntryKindConsumed))
	inv.Get("/batches/:batch_id", anyRole, invHandler.GetBatch)
}
