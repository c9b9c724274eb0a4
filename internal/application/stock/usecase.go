package stock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/application/dto"
	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
	"github.com/invorya/stock-ledger/internal/domain/stock"
	"github.com/invorya/stock-ledger/pkg/logger"
)

// Operaciones de lote soportadas por ApplyBulkOperation.
const (
	BulkOpAdd      = "add"
	BulkOpSubtract = "subtract"
	BulkOpSet      = "set"
)

// UpdateUseCase coordina toda mutación de stock: valida, aplica invariantes y
// confirma registro+movimiento de forma atómica con reintento optimista.
// Una mutación o se aplica completa (nuevo estado + un movimiento) o falla
// completa (estado intacto, sin movimiento); nunca queda a medias.
type UpdateUseCase struct {
	txRunner TxRunner
	records  repository.StockRecordRepository
	guard    *TenantGuard
	policy   stock.Policy
	retries  int
	log      *logger.Logger
}

// NewUpdateUseCase construye el coordinador. records se usa para lecturas
// fuera de transacción; las escrituras pasan por txRunner. retries acota los
// reintentos ante domain.ErrConflict antes de rendirse.
func NewUpdateUseCase(
	txRunner TxRunner,
	records repository.StockRecordRepository,
	guard *TenantGuard,
	policy stock.Policy,
	retries int,
	log *logger.Logger,
) *UpdateUseCase {
	if retries < 1 {
		retries = 1
	}
	return &UpdateUseCase{
		txRunner: txRunner,
		records:  records,
		guard:    guard,
		policy:   policy,
		retries:  retries,
		log:      log,
	}
}

// mutateFn inspecciona el registro fresco (copia modificable) y devuelve el
// movimiento que describe el cambio. Movimiento nil = no-op: éxito sin escribir.
type mutateFn func(rec *entity.StockRecord) (*entity.StockMovement, error)

// mutate es el ciclo leer-modificar-escribir común a todas las operaciones:
// carga vía guard, aplica fn, y confirma Put(CAS)+Append en una transacción.
// Si otro writer ganó la carrera (ErrConflict) relee y reintenta.
func (uc *UpdateUseCase) mutate(ctx context.Context, companyID, productID string, fn mutateFn) error {
	for attempt := 0; attempt < uc.retries; attempt++ {
		current, err := uc.guard.Record(ctx, uc.records, companyID, productID)
		if err != nil {
			return err
		}
		updated := *current
		mov, err := fn(&updated)
		if err != nil {
			return err
		}
		if mov == nil {
			// Escritura sin cambio: contrato de idempotencia, sin movimiento.
			return nil
		}
		now := time.Now()
		updated.CompanyID = companyID
		updated.ProductID = productID
		updated.Version = current.Version + 1
		updated.UpdatedAt = now

		mov.ID = uuid.New().String()
		mov.CompanyID = companyID
		mov.ProductID = productID
		mov.ResultingCurrentStock = updated.CurrentStock
		mov.CreatedAt = now

		err = uc.txRunner.Run(ctx, func(
			records repository.StockRecordRepository,
			movements repository.StockMovementRepository,
		) error {
			if err := records.Put(ctx, &updated, current.Version); err != nil {
				return err
			}
			return movements.Append(ctx, mov)
		})
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err == nil {
			uc.notifyStatus(current, &updated)
		}
		return err
	}
	return domain.ErrConflict
}

// applyCurrentTarget lleva CurrentStock al valor objetivo validando invariantes
// y produce el movimiento. Estrategia única para entradas absolutas y relativas:
// movementType vacío = derivar del signo del delta (inbound/outbound).
func applyCurrentTarget(rec *entity.StockRecord, newValue int, movementType string, unitCost *decimal.Decimal, reason, actorID string) (*entity.StockMovement, error) {
	if newValue == rec.CurrentStock {
		return nil, nil
	}
	if newValue < 0 {
		return nil, domain.ErrInvariantViolation
	}
	if newValue < rec.ReservedStock {
		// El stock no puede caer bajo lo ya comprometido en reservas.
		return nil, domain.ErrInvariantViolation
	}
	delta := newValue - rec.CurrentStock
	if movementType == "" {
		if delta > 0 {
			movementType = entity.MovementTypeInbound
		} else {
			movementType = entity.MovementTypeOutbound
		}
	}
	rec.CurrentStock = newValue
	return &entity.StockMovement{
		Type:          movementType,
		QuantityDelta: delta,
		UnitCost:      unitCost,
		Reason:        reason,
		ActorID:       actorID,
	}, nil
}

// SetCurrentStock fija el stock actual en un valor absoluto.
// Igual al almacenado = no-op exitoso sin movimiento.
func (uc *UpdateUseCase) SetCurrentStock(ctx context.Context, companyID, productID string, newValue int, reason, actorID string) error {
	if newValue < 0 {
		return domain.ErrInvalidInput
	}
	return uc.mutate(ctx, companyID, productID, func(rec *entity.StockRecord) (*entity.StockMovement, error) {
		return applyCurrentTarget(rec, newValue, "", nil, reason, actorID)
	})
}

// SetReservedStock fija la cantidad reservada. Debe cumplir 0 <= nuevo <= current.
func (uc *UpdateUseCase) SetReservedStock(ctx context.Context, companyID, productID string, newValue int, actorID string) error {
	if newValue < 0 {
		return domain.ErrInvalidInput
	}
	return uc.mutate(ctx, companyID, productID, func(rec *entity.StockRecord) (*entity.StockMovement, error) {
		if newValue == rec.ReservedStock {
			return nil, nil
		}
		if newValue > rec.CurrentStock {
			return nil, domain.ErrInvariantViolation
		}
		delta := newValue - rec.ReservedStock
		rec.ReservedStock = newValue
		return &entity.StockMovement{
			Type:          entity.MovementTypeReservationChange,
			QuantityDelta: delta,
			ActorID:       actorID,
		}, nil
	})
}

// SetMinimumStock fija el umbral mínimo para alertas. No toca current ni reserved.
func (uc *UpdateUseCase) SetMinimumStock(ctx context.Context, companyID, productID string, newValue int, actorID string) error {
	if newValue < 0 {
		return domain.ErrInvalidInput
	}
	return uc.mutate(ctx, companyID, productID, func(rec *entity.StockRecord) (*entity.StockMovement, error) {
		if newValue == rec.MinimumStock {
			return nil, nil
		}
		delta := newValue - rec.MinimumStock
		rec.MinimumStock = newValue
		return &entity.StockMovement{
			Type:          entity.MovementTypeMinimumChange,
			QuantityDelta: delta,
			ActorID:       actorID,
		}, nil
	})
}

// ApplyMovement es la entrada generalizada relativa-o-absoluta:
// inbound suma, outbound resta con clamp en 0 (nunca negativo; el delta
// registrado es el efectivo), adjustment fija el valor absoluto. Los tres
// pasan por los mismos invariantes que SetCurrentStock antes de confirmar.
func (uc *UpdateUseCase) ApplyMovement(ctx context.Context, companyID, productID, movementType string, quantity int, unitCost *decimal.Decimal, reason, actorID string) error {
	switch movementType {
	case entity.MovementTypeInbound, entity.MovementTypeOutbound, entity.MovementTypeAdjustment:
	default:
		return domain.ErrInvalidInput
	}
	if quantity < 0 {
		return domain.ErrInvalidInput
	}
	if unitCost != nil && unitCost.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	return uc.mutate(ctx, companyID, productID, func(rec *entity.StockRecord) (*entity.StockMovement, error) {
		newValue := rec.CurrentStock
		switch movementType {
		case entity.MovementTypeInbound:
			newValue = rec.CurrentStock + quantity
		case entity.MovementTypeOutbound:
			newValue = rec.CurrentStock - quantity
			if newValue < 0 {
				newValue = 0
			}
		case entity.MovementTypeAdjustment:
			newValue = quantity
		}
		return applyCurrentTarget(rec, newValue, movementType, unitCost, reason, actorID)
	})
}

// ApplyBulkOperation aplica la operación por producto de forma independiente.
// No es transaccional entre items: el fallo de uno no bloquea ni revierte a
// los demás, y el lote siempre devuelve resultados parciales.
func (uc *UpdateUseCase) ApplyBulkOperation(ctx context.Context, companyID string, productIDs []string, operation string, amount int, reason, actorID string) (*dto.BulkUpdateResponse, error) {
	var movementType string
	switch operation {
	case BulkOpAdd:
		movementType = entity.MovementTypeInbound
	case BulkOpSubtract:
		movementType = entity.MovementTypeOutbound
	case BulkOpSet:
		movementType = entity.MovementTypeAdjustment
	default:
		return nil, domain.ErrInvalidInput
	}
	if amount < 0 || len(productIDs) == 0 {
		return nil, domain.ErrInvalidInput
	}

	res := &dto.BulkUpdateResponse{Results: make([]dto.BulkItemResult, 0, len(productIDs))}
	for _, productID := range productIDs {
		if err := uc.ApplyMovement(ctx, companyID, productID, movementType, amount, nil, reason, actorID); err != nil {
			res.Failed++
			res.Results = append(res.Results, dto.BulkItemResult{ProductID: productID, Success: false, Message: err.Error()})
			continue
		}
		res.Succeeded++
		res.Results = append(res.Results, dto.BulkItemResult{ProductID: productID, Success: true})
	}
	return res, nil
}

// notifyStatus registra la transición de estado como gancho de alertas
// cuando una mutación deja al producto bajo el mínimo o sin existencias.
func (uc *UpdateUseCase) notifyStatus(before, after *entity.StockRecord) {
	if uc.log == nil {
		return
	}
	prev := uc.policy.Classify(before.CurrentStock, before.MinimumStock)
	next := uc.policy.Classify(after.CurrentStock, after.MinimumStock)
	if prev == next || next == stock.StatusInStock {
		return
	}
	uc.log.Warn().
		Str("company_id", after.CompanyID).
		Str("product_id", after.ProductID).
		Str("status", string(next)).
		Int("current_stock", after.CurrentStock).
		Int("minimum_stock", after.MinimumStock).
		Msg("alerta de nivel de stock")
}
