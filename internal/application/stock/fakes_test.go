package stock_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
	"github.com/invorya/stock-ledger/internal/domain/stock"
)

// memDB es un doble en memoria de los puertos de persistencia: store de
// registros con CAS por versión, libro de movimientos append-only, catálogo
// y TxRunner con semántica de rollback (snapshot + restore).
type memDB struct {
	mu        sync.Mutex
	products  map[string]*entity.Product     // key company|product
	records   map[string]entity.StockRecord  // key company|product
	movements []*entity.StockMovement

	policy stock.Policy

	// failPuts fuerza ErrConflict en los próximos N Puts (para probar reintentos).
	failPuts int
}

func newMemDB() *memDB {
	return &memDB{
		products: make(map[string]*entity.Product),
		records:  make(map[string]entity.StockRecord),
		policy:   stock.DefaultPolicy,
	}
}

func key(companyID, productID string) string { return companyID + "|" + productID }

func (db *memDB) addProduct(companyID, productID, name, category string) {
	db.products[key(companyID, productID)] = &entity.Product{
		ID: productID, CompanyID: companyID, Name: name, Category: category,
	}
}

func (db *memDB) seedRecord(companyID, productID string, current, reserved, minimum int) {
	db.records[key(companyID, productID)] = entity.StockRecord{
		CompanyID: companyID, ProductID: productID,
		CurrentStock: current, ReservedStock: reserved, MinimumStock: minimum,
		Version: 1,
	}
}

// --- repository.StockRecordRepository ---

func (db *memDB) Get(_ context.Context, companyID, productID string) (*entity.StockRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if rec, ok := db.records[key(companyID, productID)]; ok {
		out := rec
		return &out, nil
	}
	return &entity.StockRecord{CompanyID: companyID, ProductID: productID}, nil
}

func (db *memDB) Put(_ context.Context, record *entity.StockRecord, expectedVersion int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.failPuts > 0 {
		db.failPuts--
		return domain.ErrConflict
	}
	k := key(record.CompanyID, record.ProductID)
	var stored int64
	if rec, ok := db.records[k]; ok {
		stored = rec.Version
	}
	if stored != expectedVersion {
		return domain.ErrConflict
	}
	db.records[k] = *record
	return nil
}

// --- repository.StockMovementRepository ---

func (db *memDB) Append(_ context.Context, movement *entity.StockMovement) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := *movement
	db.movements = append(db.movements, &cp)
	return nil
}

func (db *memDB) ListByCompany(_ context.Context, companyID, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var all []*entity.StockMovement
	for _, m := range db.movements {
		if m.CompanyID != companyID {
			continue
		}
		if productID != "" && m.ProductID != productID {
			continue
		}
		all = append(all, m)
	}
	// Más recientes primero: orden de inserción invertido.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
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

func (db *memDB) CountByCompany(_ context.Context, companyID, productID string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, m := range db.movements {
		if m.CompanyID == companyID && (productID == "" || m.ProductID == productID) {
			n++
		}
	}
	return n, nil
}

// --- repository.ProductCatalog ---

func (db *memDB) Exists(_ context.Context, companyID, productID string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, ok := db.products[key(companyID, productID)]
	return ok, nil
}

func (db *memDB) DisplayFields(_ context.Context, companyID string, productIDs []string) (map[string]*entity.Product, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make(map[string]*entity.Product)
	for _, id := range productIDs {
		if p, ok := db.products[key(companyID, id)]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

// --- stock.TxRunner ---

// Run emula la transacción: si fn falla, registros y movimientos vuelven al
// estado previo (el par registro+movimiento confirma junto o ninguno).
func (db *memDB) Run(_ context.Context, fn func(
	records repository.StockRecordRepository,
	movements repository.StockMovementRepository,
) error) error {
	db.mu.Lock()
	recSnapshot := make(map[string]entity.StockRecord, len(db.records))
	for k, v := range db.records {
		recSnapshot[k] = v
	}
	movLen := len(db.movements)
	db.mu.Unlock()

	if err := fn(db, db); err != nil {
		db.mu.Lock()
		db.records = recSnapshot
		db.movements = db.movements[:movLen]
		db.mu.Unlock()
		return err
	}
	return nil
}

// --- repository.StockViewRepository ---

func (db *memDB) matchRows(companyID string, filter repository.StockListFilter) []*repository.StockRow {
	var rows []*repository.StockRow
	for k, p := range db.products {
		if p.CompanyID != companyID {
			continue
		}
		rec := db.records[k]
		rec.CompanyID = p.CompanyID
		rec.ProductID = p.ID
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(p.Name), s) &&
				!strings.Contains(strings.ToLower(p.Brand), s) && p.Barcode != filter.Search {
				continue
			}
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Status != "" && db.policy.Classify(rec.CurrentStock, rec.MinimumStock) != filter.Status {
			continue
		}
		rows = append(rows, &repository.StockRow{Record: rec, Product: *p})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Product.Name < rows[j].Product.Name })
	return rows
}

func (db *memDB) List(_ context.Context, companyID string, filter repository.StockListFilter) ([]*repository.StockRow, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	rows := db.matchRows(companyID, filter)
	if filter.Offset >= len(rows) {
		return nil, nil
	}
	rows = rows[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(rows) {
		rows = rows[:filter.Limit]
	}
	return rows, nil
}

func (db *memDB) Count(_ context.Context, companyID string, filter repository.StockListFilter) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.matchRows(companyID, filter)), nil
}
