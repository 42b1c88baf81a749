package repository

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// LedgerRepository puerto del ledger de inventario: tres corrientes append-only.
// No existe ruta de actualización ni borrado.
type LedgerRepository interface {
	AppendReceived(ctx context.Context, entries []entity.ReceivedEntry) error
	AppendRemoved(ctx context.Context, entries []entity.RemovedEntry) error
	AppendConsumed(ctx context.Context, entries []entity.ConsumedEntry) error

	// Totals suma las tres corrientes por ítem. itemIDs vacío = todos los ítems con movimientos.
	// Ítems sin movimientos no aparecen en el mapa.
	Totals(ctx context.Context, itemIDs []string) (map[string]entity.StockTotals, error)

	// ListMovements devuelve hasta limit movimientos del tipo dado, ordenados por
	// occurred_at desc, id asc. Quantity siempre positivo.
	ListMovements(ctx context.Context, kind entity.EntryKind, filter entity.MovementFilter, limit int) ([]entity.MovementRecord, error)
	// CountMovements cuenta los movimientos del tipo dado que cumplen el filtro.
	CountMovements(ctx context.Context, kind entity.EntryKind, filter entity.MovementFilter) (int, error)
	// ListBatch devuelve los movimientos de un lote confirmado.
	ListBatch(ctx context.Context, batchID string) ([]entity.MovementRecord, error)
}
