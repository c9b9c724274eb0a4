package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/invorya/stock-ledger/internal/application/stock"
	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
	"github.com/invorya/stock-ledger/internal/domain/stock"
	apphttp "github.com/invorya/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/invorya/stock-ledger/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	otherCompany  = "00000000-0000-0000-0000-000000000009"
	testIssuer    = "stock-ledger-test"
)

// ──────────────────────────────────────────────────────────────────────────────
// Doble en memoria de los puertos (store CAS + libro + catálogo + tx)
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	products  map[string]bool
	records   map[string]entity.StockRecord
	movements []*entity.StockMovement
}

func newMemStore() *memStore {
	return &memStore{products: make(map[string]bool), records: make(map[string]entity.StockRecord)}
}

func skey(companyID, productID string) string { return companyID + "|" + productID }

func (s *memStore) Get(_ context.Context, companyID, productID string) (*entity.StockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[skey(companyID, productID)]; ok {
		out := rec
		return &out, nil
	}
	return &entity.StockRecord{CompanyID: companyID, ProductID: productID}, nil
}

func (s *memStore) Put(_ context.Context, record *entity.StockRecord, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := skey(record.CompanyID, record.ProductID)
	var stored int64
	if rec, ok := s.records[k]; ok {
		stored = rec.Version
	}
	if stored != expectedVersion {
		return domain.ErrConflict
	}
	s.records[k] = *record
	return nil
}

func (s *memStore) Append(_ context.Context, movement *entity.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *movement
	s.movements = append(s.movements, &cp)
	return nil
}

func (s *memStore) ListByCompany(_ context.Context, companyID, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*entity.StockMovement
	for i := len(s.movements) - 1; i >= 0; i-- {
		m := s.movements[i]
		if m.CompanyID != companyID || (productID != "" && m.ProductID != productID) {
			continue
		}
		all = append(all, m)
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *memStore) CountByCompany(_ context.Context, companyID, productID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.movements {
		if m.CompanyID == companyID && (productID == "" || m.ProductID == productID) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) Exists(_ context.Context, companyID, productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[skey(companyID, productID)], nil
}

func (s *memStore) DisplayFields(_ context.Context, companyID string, productIDs []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product)
	for _, id := range productIDs {
		if s.products[skey(companyID, id)] {
			out[id] = &entity.Product{ID: id, CompanyID: companyID, Name: "Producto " + id}
		}
	}
	return out, nil
}

func (s *memStore) List(_ context.Context, companyID string, filter repository.StockListFilter) ([]*repository.StockRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []*repository.StockRow
	for k, ok := range s.products {
		if !ok || k[:len(companyID)] != companyID {
			continue
		}
		rec := s.records[k]
		productID := k[len(companyID)+1:]
		rec.CompanyID = companyID
		rec.ProductID = productID
		rows = append(rows, &repository.StockRow{
			Record:  rec,
			Product: entity.Product{ID: productID, CompanyID: companyID, Name: "Producto " + productID},
		})
	}
	if filter.Offset >= len(rows) {
		return nil, nil
	}
	rows = rows[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(rows) {
		rows = rows[:filter.Limit]
	}
	return rows, nil
}

func (s *memStore) Count(_ context.Context, companyID string, _ repository.StockListFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.products {
		if k[:len(companyID)] == companyID {
			n++
		}
	}
	return n, nil
}

func (s *memStore) Run(_ context.Context, fn func(
	records repository.StockRecordRepository,
	movements repository.StockMovementRepository,
) error) error {
	s.mu.Lock()
	recSnapshot := make(map[string]entity.StockRecord, len(s.records))
	for k, v := range s.records {
		recSnapshot[k] = v
	}
	movLen := len(s.movements)
	s.mu.Unlock()

	if err := fn(s, s); err != nil {
		s.mu.Lock()
		s.records = recSnapshot
		s.movements = s.movements[:movLen]
		s.mu.Unlock()
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// buildApp arma la app Fiber completa (router + middleware) sobre el doble en memoria.
func buildApp(store *memStore) *fiber.App {
	guard := appstock.NewTenantGuard(store)
	update := appstock.NewUpdateUseCase(store, store, guard, stock.DefaultPolicy, 3, nil)
	query := appstock.NewQueryUseCase(store, store, store, stock.DefaultPolicy, 20)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		StockUpdate: update,
		StockQuery:  query,
		JWTSecret:   testJWTSecret,
	})
	return app
}

func bearer(t *testing.T) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, testIssuer, 60)
	require.NoError(t, err)
	return "Bearer " + tok
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, auth string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestStockAPI_SinTokenEs401(t *testing.T) {
	app := buildApp(newMemStore())
	resp, payload := doJSON(t, app, http.MethodGet, "/api/stock", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
}

func TestStockAPI_CicloCompleto(t *testing.T) {
	store := newMemStore()
	store.products[skey(testCompanyID, "p1")] = true
	app := buildApp(store)
	auth := bearer(t)

	// Fijar stock inicial.
	resp, payload := doJSON(t, app, http.MethodPost, "/api/stock/update-current-stock",
		fiber.Map{"product_id": "p1", "new_current_stock": 10, "reason": "carga inicial"}, auth)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["success"])

	// Reservar y fijar mínimo.
	resp, _ = doJSON(t, app, http.MethodPut, "/api/stock/update-reserved",
		fiber.Map{"product_id": "p1", "new_reserved_stock": 3}, auth)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPut, "/api/stock/update-minimum-stock",
		fiber.Map{"product_id": "p1", "new_minimum_stock": 5}, auth)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Movimiento outbound.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/stock/movement",
		fiber.Map{"product_id": "p1", "movement_type": "outbound", "quantity": 2, "reason": "venta"}, auth)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Listado refleja el estado final: current=8, reserved=3, available=5.
	resp, payload = doJSON(t, app, http.MethodGet, "/api/stock?page=1&page_size=10", nil, auth)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := payload["data"].(map[string]any)
	items := data["data"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.EqualValues(t, 8, item["current_stock"])
	assert.EqualValues(t, 3, item["reserved_stock"])
	assert.EqualValues(t, 5, item["available_stock"])
	assert.Equal(t, "in_stock", item["status"])

	// Historial: 4 movimientos, el outbound primero.
	resp, payload = doJSON(t, app, http.MethodGet, "/api/stock/movements", nil, auth)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	movs := payload["data"].(map[string]any)
	assert.EqualValues(t, 4, movs["total_items"])
	first := movs["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "outbound", first["movement_type"])
	assert.EqualValues(t, -2, first["quantity_delta"])
	assert.Equal(t, testUserID, first["actor_id"])
}

func TestStockAPI_MapeoDeErrores(t *testing.T) {
	store := newMemStore()
	store.products[skey(testCompanyID, "p1")] = true
	store.records[skey(testCompanyID, "p1")] = entity.StockRecord{
		CompanyID: testCompanyID, ProductID: "p1",
		CurrentStock: 10, ReservedStock: 4, Version: 1,
	}
	// Producto de otra empresa: debe verse como inexistente.
	store.products[skey(otherCompany, "ajeno")] = true
	app := buildApp(store)
	auth := bearer(t)

	// 400: validación (cantidad negativa).
	resp, payload := doJSON(t, app, http.MethodPost, "/api/stock/update-current-stock",
		fiber.Map{"product_id": "p1", "new_current_stock": -5}, auth)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.NotEmpty(t, payload["message"])

	// 400: invariante (bajo lo reservado).
	resp, _ = doJSON(t, app, http.MethodPost, "/api/stock/update-current-stock",
		fiber.Map{"product_id": "p1", "new_current_stock": 2}, auth)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// 404: producto inexistente.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/stock/movement",
		fiber.Map{"product_id": "nope", "movement_type": "inbound", "quantity": 1}, auth)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// 404: cruce de tenant enmascarado, nunca 403.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/stock/movement",
		fiber.Map{"product_id": "ajeno", "movement_type": "inbound", "quantity": 1}, auth)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStockAPI_BulkParcial(t *testing.T) {
	store := newMemStore()
	store.products[skey(testCompanyID, "a")] = true
	store.products[skey(testCompanyID, "c")] = true
	app := buildApp(store)
	auth := bearer(t)

	resp, payload := doJSON(t, app, http.MethodPost, "/api/stock/bulk-update",
		fiber.Map{"product_ids": []string{"a", "b", "c"}, "operation": "add", "amount": 5, "reason": "lote"}, auth)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := payload["data"].(map[string]any)
	assert.EqualValues(t, 2, data["succeeded"])
	assert.EqualValues(t, 1, data["failed"])
	results := data["results"].([]any)
	require.Len(t, results, 3)
	fallo := results[1].(map[string]any)
	assert.Equal(t, "b", fallo["product_id"])
	assert.Equal(t, false, fallo["success"])
}
