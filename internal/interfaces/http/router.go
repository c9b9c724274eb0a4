package http

import (
	"github.com/gofiber/fiber/v2"

	appstock "github.com/invorya/stock-ledger/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUpdate *appstock.UpdateUseCase
	StockQuery  *appstock.QueryUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todo el ledger va detrás del
// middleware de auth: actor y empresa salen siempre del token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	stockHandler := NewStockHandler(deps.StockUpdate, deps.StockQuery)
	stockGroup := api.Group("/stock")
	stockGroup.Get("/", stockHandler.List)
	stockGroup.Get("/movements", stockHandler.ListMovements)
	stockGroup.Post("/movement", stockHandler.ApplyMovement)
	stockGroup.Post("/update-current-stock", stockHandler.UpdateCurrentStock)
	stockGroup.Put("/update-reserved", stockHandler.UpdateReservedStock)
	stockGroup.Put("/update-minimum-stock", stockHandler.UpdateMinimumStock)
	stockGroup.Post("/bulk-update", stockHandler.BulkUpdate)
}
