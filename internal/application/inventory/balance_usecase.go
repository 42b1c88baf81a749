package inventory

import (
	"context"
	"fmt"
	"slices"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	invdomain "github.com/jhoicas/labstock-api/internal/domain/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/pkg/textnorm"
)

// BalanceUseCase calcula los saldos actuales a partir del ledger. Solo lectura.
type BalanceUseCase struct {
	itemRepo   repository.ItemRepository
	ledgerRepo repository.LedgerRepository
}

// NewBalanceUseCase construye el caso de uso de saldos.
func NewBalanceUseCase(itemRepo repository.ItemRepository, ledgerRepo repository.LedgerRepository) *BalanceUseCase {
	return &BalanceUseCase{itemRepo: itemRepo, ledgerRepo: ledgerRepo}
}

// ComputeBalance saldo de un ítem. ErrItemNotFound si no está en el catálogo.
func (uc *BalanceUseCase) ComputeBalance(ctx context.Context, itemID string) (*entity.CurrentBalance, error) {
	items, err := uc.itemRepo.GetByIDs(ctx, []string{itemID})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}
	totals, err := uc.ledgerRepo.Totals(ctx, []string{itemID})
	if err != nil {
		return nil, err
	}
	b := invdomain.BuildBalance(items[0], totals[itemID])
	return &b, nil
}

// ComputeBalances saldos de todo el catálogo filtrados por sección, texto y estado.
// Movimientos que referencian ítems ausentes del catálogo devuelven *domain.IntegrityError.
func (uc *BalanceUseCase) ComputeBalances(ctx context.Context, filter entity.BalanceFilter) ([]entity.CurrentBalance, error) {
	catalog, err := uc.itemRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	totals, err := uc.ledgerRepo.Totals(ctx, nil)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entity.Item, len(catalog))
	for _, it := range catalog {
		byID[it.ID] = it
	}
	if orphans := invdomain.OrphanItemIDs(totals, byID); len(orphans) > 0 {
		slices.Sort(orphans)
		return nil, &domain.IntegrityError{ItemIDs: orphans}
	}

	match := textnorm.NewMatcher(filter.Search)
	out := make([]entity.CurrentBalance, 0, len(catalog))
	for _, it := range catalog {
		if filter.SectionID != "" && it.SectionID != filter.SectionID {
			continue
		}
		if !match.Match(it.Label) {
			continue
		}
		b := invdomain.BuildBalance(it, totals[it.ID])
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Snapshot stock actual de todo el catálogo (para abrir borradores).
func (uc *BalanceUseCase) Snapshot(ctx context.Context) ([]entity.Item, map[string]int64, error) {
	catalog, err := uc.itemRepo.List(ctx, "")
	if err != nil {
		return nil, nil, err
	}
	totals, err := uc.ledgerRepo.Totals(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	snapshot := make(map[string]int64, len(catalog))
	for _, it := range catalog {
		snapshot[it.ID] = totals[it.ID].Current()
	}
	return catalog, snapshot, nil
}
