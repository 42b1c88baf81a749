package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	invdomain "github.com/jhoicas/labstock-api/internal/domain/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// PageOptions tamaños de página del historial.
type PageOptions struct {
	DefaultLimit int
	MaxLimit     int
}

// MovementUseCase historial unificado de ingresos, bajas y consumos.
type MovementUseCase struct {
	ledgerRepo   repository.LedgerRepository
	itemRepo     repository.ItemRepository
	employeeRepo repository.EmployeeRepository
	page         PageOptions
}

// NewMovementUseCase construye el caso de uso del historial.
func NewMovementUseCase(
	ledgerRepo repository.LedgerRepository,
	itemRepo repository.ItemRepository,
	employeeRepo repository.EmployeeRepository,
	page PageOptions,
) *MovementUseCase {
	if page.DefaultLimit <= 0 {
		page.DefaultLimit = 20
	}
	if page.MaxLimit < page.DefaultLimit {
		page.MaxLimit = page.DefaultLimit
	}
	return &MovementUseCase{ledgerRepo: ledgerRepo, itemRepo: itemRepo, employeeRepo: employeeRepo, page: page}
}

// Movements devuelve una página del historial ordenado por (occurred_at desc, tipo, entry_id).
// Cada corriente aporta a lo sumo offset+limit filas; el merge decide la página.
func (uc *MovementUseCase) Movements(ctx context.Context, filter entity.MovementFilter, limit, offset int) (*entity.MovementPage, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset negativo", domain.ErrInvalidInput)
	}
	switch {
	case limit <= 0:
		limit = uc.page.DefaultLimit
	case limit > uc.page.MaxLimit:
		limit = uc.page.MaxLimit
	}

	streams := make([][]entity.MovementRecord, 0, len(entity.EntryKinds))
	total := 0
	for _, kind := range entity.EntryKinds {
		recs, err := uc.ledgerRepo.ListMovements(ctx, kind, filter, offset+limit)
		if err != nil {
			return nil, err
		}
		n, err := uc.ledgerRepo.CountMovements(ctx, kind, filter)
		if err != nil {
			return nil, err
		}
		streams = append(streams, recs)
		total += n
	}

	page := invdomain.PageMovements(invdomain.MergeMovements(streams...), offset, limit)
	if err := uc.resolve(ctx, page); err != nil {
		return nil, err
	}
	return &entity.MovementPage{Items: page, Total: total, Limit: limit, Offset: offset}, nil
}

// Batch movimientos de un lote confirmado, en el orden del historial.
func (uc *MovementUseCase) Batch(ctx context.Context, batchID string) ([]entity.MovementRecord, error) {
	recs, err := uc.ledgerRepo.ListBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, batchID)
	}
	recs = invdomain.MergeMovements(recs)
	if err := uc.resolve(ctx, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (uc *MovementUseCase) resolve(ctx context.Context, recs []entity.MovementRecord) error {
	if len(recs) == 0 {
		return nil
	}
	itemIDs := make([]string, 0, len(recs))
	empIDs := make([]string, 0, len(recs))
	for _, r := range recs {
		itemIDs = append(itemIDs, r.ItemID)
		empIDs = append(empIDs, r.PerformerID)
	}
	items, err := uc.itemRepo.GetByIDs(ctx, distinctNonEmpty(itemIDs))
	if err != nil {
		return err
	}
	emps, err := uc.employeeRepo.GetByIDs(ctx, distinctNonEmpty(empIDs))
	if err != nil {
		return err
	}
	itemByID := make(map[string]entity.Item, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
	}
	empByID := make(map[string]entity.Employee, len(emps))
	for _, e := range emps {
		empByID[e.ID] = e
	}
	invdomain.ResolvePerformers(recs, empByID, itemByID)
	return nil
}
