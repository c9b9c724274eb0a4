package stock

import (
	"context"

	"github.com/invorya/stock-ledger/internal/application/dto"
	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/repository"
	"github.com/invorya/stock-ledger/internal/domain/stock"
)

const maxPageSize = 100

// ListStockParams parámetros del listado paginado de stock.
type ListStockParams struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	Category string
}

// ListMovementsParams parámetros del historial de movimientos.
type ListMovementsParams struct {
	Page      int
	PageSize  int
	ProductID string
}

// QueryUseCase sirve las lecturas del ledger: listado de stock con campos de
// catálogo y estado derivado, e historial de movimientos. Solo lectura,
// siempre acotado a una empresa.
type QueryUseCase struct {
	view            repository.StockViewRepository
	movements       repository.StockMovementRepository
	catalog         repository.ProductCatalog
	policy          stock.Policy
	defaultPageSize int
}

// NewQueryUseCase construye la capa de consulta.
func NewQueryUseCase(view repository.StockViewRepository, movements repository.StockMovementRepository, catalog repository.ProductCatalog, policy stock.Policy, defaultPageSize int) *QueryUseCase {
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	return &QueryUseCase{view: view, movements: movements, catalog: catalog, policy: policy, defaultPageSize: defaultPageSize}
}

// normalizePage aplica defaults y topes a página y tamaño.
func (uc *QueryUseCase) normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = uc.defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func totalPages(totalItems, pageSize int) int {
	if totalItems == 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// List devuelve la página solicitada del stock de la empresa, enriquecida con
// los campos de presentación del catálogo. Una página pasada el final devuelve
// data vacía con metadatos exactos, no un error.
func (uc *QueryUseCase) List(ctx context.Context, companyID string, params ListStockParams) (*dto.PagedStockResponse, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	if params.Status != "" && !stock.ValidStatus(params.Status) {
		return nil, domain.ErrInvalidInput
	}
	page, pageSize := uc.normalizePage(params.Page, params.PageSize)

	filter := repository.StockListFilter{
		Search:   params.Search,
		Status:   stock.Status(params.Status),
		Category: params.Category,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}
	total, err := uc.view.Count(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	rows, err := uc.view.List(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.StockItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.StockItemDTO{
			ProductID:      row.Product.ID,
			Name:           row.Product.Name,
			Brand:          row.Product.Brand,
			Barcode:        row.Product.Barcode,
			Category:       row.Product.Category,
			Price:          row.Product.Price,
			CurrentStock:   row.Record.CurrentStock,
			ReservedStock:  row.Record.ReservedStock,
			AvailableStock: row.Record.AvailableStock(),
			MinimumStock:   row.Record.MinimumStock,
			Status:         string(uc.policy.Classify(row.Record.CurrentStock, row.Record.MinimumStock)),
			UpdatedAt:      row.Record.UpdatedAt,
		})
	}
	return &dto.PagedStockResponse{
		Data:        items,
		CurrentPage: page,
		TotalPages:  totalPages(total, pageSize),
		TotalItems:  total,
	}, nil
}

// Movements devuelve el historial de la empresa, más recientes primero,
// opcionalmente filtrado por producto.
func (uc *QueryUseCase) Movements(ctx context.Context, companyID string, params ListMovementsParams) (*dto.PagedMovementsResponse, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	page, pageSize := uc.normalizePage(params.Page, params.PageSize)

	total, err := uc.movements.CountByCompany(ctx, companyID, params.ProductID)
	if err != nil {
		return nil, err
	}
	list, err := uc.movements.ListByCompany(ctx, companyID, params.ProductID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	// Enriquecer con el nombre de producto del catálogo (una sola consulta por página).
	ids := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, m := range list {
		if !seen[m.ProductID] {
			seen[m.ProductID] = true
			ids = append(ids, m.ProductID)
		}
	}
	products, err := uc.catalog.DisplayFields(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MovementDTO, 0, len(list))
	for _, m := range list {
		var name string
		if p, ok := products[m.ProductID]; ok {
			name = p.Name
		}
		items = append(items, dto.MovementDTO{
			ID:                    m.ID,
			ProductID:             m.ProductID,
			ProductName:           name,
			Type:                  m.Type,
			QuantityDelta:         m.QuantityDelta,
			ResultingCurrentStock: m.ResultingCurrentStock,
			UnitCost:              m.UnitCost,
			Reason:                m.Reason,
			ActorID:               m.ActorID,
			CreatedAt:             m.CreatedAt,
		})
	}
	return &dto.PagedMovementsResponse{
		Data:        items,
		CurrentPage: page,
		TotalPages:  totalPages(total, pageSize),
		TotalItems:  total,
	}, nil
}
