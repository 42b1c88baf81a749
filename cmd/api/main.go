package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jhoicas/labstock-api/docs"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/application/usecase"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/internal/infrastructure/blob"
	"github.com/jhoicas/labstock-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/labstock-api/internal/infrastructure/pdf"
	"github.com/jhoicas/labstock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/labstock-api/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/labstock-api/internal/interfaces/http"
	"github.com/jhoicas/labstock-api/pkg/config"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// @title                       LabStock API
// @version                     1.0
// @description                 Ledger de stock del laboratorio: ingresos, bajas, consumos, saldos e historial.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization

// store repositorios y transacciones del driver elegido.
type store struct {
	items     repository.ItemRepository
	sections  repository.SectionRepository
	employees repository.EmployeeRepository
	ledger    repository.LedgerRepository
	tx        inventory.TxRunner
	ping      httpRouter.PingFunc
	close     func()
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("abrir almacén del ledger")
	}
	defer st.close()

	reportStore, err := blob.Open(ctx, cfg.Reports)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Reports.Driver).Msg("abrir almacén de reportes")
	}

	registry := metrics.NewRegistry()
	observer, err := metrics.NewCommitObserver(registry)
	if err != nil {
		log.Fatal().Err(err).Msg("registrar métricas")
	}

	balanceUC := inventory.NewBalanceUseCase(st.items, st.ledger)
	commitUC := inventory.NewCommitBatchUseCase(st.tx, observer, log, inventory.CommitOptions{
		MaxRetries: cfg.Ledger.MaxCommitRetries,
		Backoff:    cfg.Ledger.RetryBackoff,
	})
	movementUC := inventory.NewMovementUseCase(st.ledger, st.items, st.employees, inventory.PageOptions{
		DefaultLimit: cfg.Ledger.DefaultPageSize,
		MaxLimit:     cfg.Ledger.MaxPageSize,
	})
	draftUC := inventory.NewDraftUseCase(balanceUC)
	reportUC := inventory.NewReportUseCase(balanceUC, st.sections, infrapdf.NewStockReportRenderer(), reportStore, log)
	catalogUC := usecase.NewCatalogUseCase(st.items, st.sections, st.employees)

	app := httpRouter.NewApp(cfg.App.Name, httpRouter.RouterDeps{
		CatalogUC:   catalogUC,
		CommitUC:    commitUC,
		BalanceUC:   balanceUC,
		MovementUC:  movementUC,
		DraftUC:     draftUC,
		ReportUC:    reportUC,
		DB:          st.ping,
		Metrics:     registry,
		Log:         log,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		SwaggerFile: "./docs/swagger.json",
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

// openStore abre PostgreSQL (pool + migraciones) o SQLite embebido según DB_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store, error) {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DB.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return &store{
			items:     sqlite.NewItemRepository(db),
			sections:  sqlite.NewSectionRepository(db),
			employees: sqlite.NewEmployeeRepository(db),
			ledger:    sqlite.NewLedgerRepository(db),
			tx:        sqlite.NewTxRunner(db),
			ping:      db.PingContext,
			close:     func() { _ = db.Close() },
		}, nil
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, log)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &store{
			items:     postgres.NewItemRepository(pool),
			sections:  postgres.NewSectionRepository(pool),
			employees: postgres.NewEmployeeRepository(pool),
			ledger:    postgres.NewLedgerRepository(pool),
			tx:        postgres.NewTxRunner(pool),
			ping:      pool.Ping,
			close:     pool.Close,
		}, nil
	}
}
