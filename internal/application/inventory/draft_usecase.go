package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	invdomain "github.com/jhoicas/labstock-api/internal/domain/inventory"
)

// DraftUseCase abre borradores de lote y calcula la elegibilidad por fila.
// El servidor no guarda borradores: el cliente devuelve filas y snapshot en cada consulta.
type DraftUseCase struct {
	balances *BalanceUseCase
	now      func() time.Time
}

// NewDraftUseCase construye el caso de uso de borradores.
func NewDraftUseCase(balances *BalanceUseCase) *DraftUseCase {
	return &DraftUseCase{balances: balances, now: time.Now}
}

// Open abre un borrador con el snapshot de saldos del momento.
func (uc *DraftUseCase) Open(ctx context.Context, kind entity.EntryKind) (*invdomain.Draft, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: tipo de lote %q", domain.ErrInvalidInput, kind)
	}
	catalog, snapshot, err := uc.balances.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return invdomain.NewDraft(kind, catalog, snapshot, uc.now().UTC()), nil
}

// Eligible recalcula los ítems elegibles de cada fila.
// Si snapshot es nil se toma uno nuevo (el borrador venció o el cliente no lo conservó).
func (uc *DraftUseCase) Eligible(
	ctx context.Context,
	kind entity.EntryKind,
	rows []invdomain.RowDraft,
	snapshot map[string]int64,
) (*invdomain.Draft, [][]entity.Item, error) {
	if !kind.Valid() {
		return nil, nil, fmt.Errorf("%w: tipo de lote %q", domain.ErrInvalidInput, kind)
	}
	catalog, fresh, err := uc.balances.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	if snapshot == nil {
		snapshot = fresh
	}
	d := invdomain.RestoreDraft(kind, catalog, snapshot, rows, uc.now().UTC())
	return d, d.EligibleAll(), nil
}
