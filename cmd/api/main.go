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

	appstock "github.com/invorya/stock-ledger/internal/application/stock"
	domainstock "github.com/invorya/stock-ledger/internal/domain/stock"
	"github.com/invorya/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/invorya/stock-ledger/internal/interfaces/http"
	"github.com/invorya/stock-ledger/pkg/config"
	"github.com/invorya/stock-ledger/pkg/logger"
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

	policy := domainstock.Policy{CriticalDivisor: cfg.Stock.CriticalDivisor}

	recordRepo := postgres.NewStockRecordRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	catalogRepo := postgres.NewProductCatalogRepository(pool)
	viewRepo := postgres.NewStockViewRepository(pool, policy)
	txRunner := postgres.NewTxRunner(pool)

	guard := appstock.NewTenantGuard(catalogRepo)
	updateUC := appstock.NewUpdateUseCase(txRunner, recordRepo, guard, policy, cfg.Stock.UpdateRetries, log)
	queryUC := appstock.NewQueryUseCase(viewRepo, movementRepo, catalogRepo, policy, cfg.Stock.DefaultPageSize)

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
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockUpdate: updateUC,
		StockQuery:  queryUC,
		JWTSecret:   cfg.JWT.Secret,
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
