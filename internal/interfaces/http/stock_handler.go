package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/stock-ledger/internal/application/dto"
	appstock "github.com/invorya/stock-ledger/internal/application/stock"
	"github.com/invorya/stock-ledger/internal/domain"
)

// StockHandler maneja las peticiones HTTP del ledger de stock (protegido).
type StockHandler struct {
	update *appstock.UpdateUseCase
	query  *appstock.QueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(update *appstock.UpdateUseCase, query *appstock.QueryUseCase) *StockHandler {
	return &StockHandler{update: update, query: query}
}

// statusFor mapea los errores de dominio al código HTTP del contrato:
// 400 validación/invariante, 404 no encontrado (incluye cruce de tenant),
// 409 conflicto de concurrencia, 503 almacenamiento caído.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvariantViolation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(dto.Fail(err.Error()))
}

// List godoc
// @Summary      Listado paginado de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        page          query  int     false  "Página (>=1)"
// @Param        page_size     query  int     false  "Tamaño de página (max 100)"
// @Param        search        query  string  false  "Nombre, marca o código de barras"
// @Param        stock_status  query  string  false  "out_of_stock | critical | low_stock | in_stock"
// @Param        category      query  string  false  "Categoría del producto"
// @Success      200  {object}  dto.APIResponse
// @Failure      400  {object}  dto.APIResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("token inválido"))
	}
	params := appstock.ListStockParams{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 0),
		Search:   c.Query("search"),
		Status:   c.Query("stock_status"),
		Category: c.Query("category"),
	}
	page, err := h.query.List(c.Context(), companyID, params)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}

// ListMovements godoc
// @Summary      Historial de movimientos (más recientes primero)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        page        query  int     false  "Página (>=1)"
// @Param        page_size   query  int     false  "Tamaño de página (max 100)"
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Success      200  {object}  dto.APIResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("token inválido"))
	}
	params := appstock.ListMovementsParams{
		Page:      c.QueryInt("page", 1),
		PageSize:  c.QueryInt("page_size", 0),
		ProductID: c.Query("product_id"),
	}
	page, err := h.query.Movements(c.Context(), companyID, params)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}

// ApplyMovement godoc
// @Summary      Registrar un movimiento de stock
// @Description  inbound suma, outbound resta con clamp en 0, adjustment fija el valor absoluto.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "product_id, movement_type, quantity, unit_cost (opcional), reason"
// @Success      200  {object}  dto.APIResponse
// @Failure      400  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Failure      409  {object}  dto.APIResponse
// @Router       /api/stock/movement [post]
func (h *StockHandler) ApplyMovement(c *fiber.Ctx) error {
	companyID, actorID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("token inválido"))
	}
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	if err := h.update.ApplyMovement(c.Context(), companyID, in.ProductID, in.Type, in.Quantity, in.UnitCost, in.Reason, actorID); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(fiber.Map{"message": "movimiento registrado"}))
}

// UpdateCurrentStock godoc
// @Summary      Fijar el stock actual (valor absoluto)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateCurrentStockRequest  true  "product_id, new_current_stock, reason"
// @Success      200  {object}  dto.APIResponse
// @Failure      400  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Failure      409  {object}  dto.APIResponse
// @Router       /api/stock/update-current-stock [post]
func (h *StockHandler) UpdateCurrentStock(c *fiber.Ctx) error {
	companyID, actorID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("token inválido"))
	}
	var in dto.UpdateCurrentStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	if err := h.update.SetCurrentStock(c.Context(), companyID, in.ProductID, in.NewCurrentStock, in.Reason, actorID); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(fiber.Map{"message": "stock actualizado"}))
}

// UpdateReservedStock godoc
// @Summary      Fijar la cantidad reservada
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateReservedStockRequest  true  "product_id, new_reserved_stock"
// @Success      200  {object}  dto.APIResponse
// @Failure      400  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/stock/update-reserved [put]
func (h *StockHandler) UpdateReservedStock(c *fiber.Ctx) error {
	companyID, actorID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("token inválido"))
	}
	var in dto.UpdateReservedStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	if err := h.update.SetReservedStock(c.Context(), companyID, in.ProductID, in.NewReservedStock, actorID); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(fiber.Map{"message": "reserva actualizada"}))
}

// UpdateMinimumStock godoc
// @Summary      Fijar el stock mínimo para alertas
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateMinimumStockRequest  true  "product_id, new_minimum_stock"
// @Success      200  {object}  dto.APIResponse
// @Failure      400  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/stock/update-minimum-stock [put]
func (h *StockHandler) UpdateMinimumStock(c *fiber.Ctx) error {
	companyID, actorID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("token inválido"))
	}
	var in dto.UpdateMinimumStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	if err := h.update.SetMinimumStock(c.Context(), companyID, in.ProductID, in.NewMinimumStock, actorID); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(fiber.Map{"message": "mínimo actualizado"}))
}

// BulkUpdate godoc
// @Summary      Operación masiva por producto (no transaccional entre items)
// @Description  Aplica add/subtract/set por producto de forma independiente y devuelve resultados parciales.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkUpdateRequest  true  "product_ids, operation (add|subtract|set), amount, reason"
// @Success      200  {object}  dto.APIResponse
// @Failure      400  {object}  dto.APIResponse
// @Router       /api/stock/bulk-update [post]
func (h *StockHandler) BulkUpdate(c *fiber.Ctx) error {
	companyID, actorID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("token inválido"))
	}
	var in dto.BulkUpdateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	res, err := h.update.ApplyBulkOperation(c.Context(), companyID, in.ProductIDs, in.Operation, in.Amount, in.Reason, actorID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(res))
}
