package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// streamTable describe cómo se proyecta cada tabla del ledger sobre MovementRecord.
type streamTable struct {
	table     string
	occurred  string
	performer string
	refExpr   string
	remarks   string
}

var streams = map[entity.EntryKind]streamTable{
	entity.EntryKindReceived: {
		table: "stock_received", occurred: "received_at", performer: "recorded_by",
		refExpr: "COALESCE(NULLIF(reference, ''), supplier, '')", remarks: "COALESCE(remarks, '')",
	},
	entity.EntryKindRemoved: {
		table: "stock_removed", occurred: "removed_at", performer: "recorded_by",
		refExpr: "COALESCE(reference, '')", remarks: "COALESCE(remarks, '')",
	},
	entity.EntryKindConsumed: {
		table: "stock_consumed", occurred: "consumed_at", performer: "employee_id",
		refExpr: "purpose", remarks: "COALESCE(receipt_number, '')",
	},
}

// LedgerRepo ledger append-only sobre PostgreSQL (usable con pool o tx).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// AppendReceived inserta los ingresos en un solo round-trip (pgx.Batch).
func (r *LedgerRepo) AppendReceived(ctx context.Context, entries []entity.ReceivedEntry) error {
	b := &pgx.Batch{}
	for _, e := range entries {
		b.Queue(`
			INSERT INTO stock_received (id, batch_id, item_id, quantity, received_at, expiry_date, supplier,
				reference, remarks, lot_number, unit_cost, recorded_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			e.ID, e.BatchID, e.ItemID, e.Quantity, e.ReceivedAt, e.ExpiryDate, nullIfEmpty(e.Supplier),
			nullIfEmpty(e.Reference), nullIfEmpty(e.Remarks), nullIfEmpty(e.LotNumber), e.UnitCost,
			nullIfEmpty(e.RecordedBy), e.CreatedAt,
		)
	}
	return r.sendBatch(ctx, "append received", b)
}

// AppendRemoved inserta las bajas.
func (r *LedgerRepo) AppendRemoved(ctx context.Context, entries []entity.RemovedEntry) error {
	b := &pgx.Batch{}
	for _, e := range entries {
		b.Queue(`
			INSERT INTO stock_removed (id, batch_id, item_id, quantity, removed_at, reference, remarks, recorded_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.BatchID, e.ItemID, e.Quantity, e.RemovedAt, nullIfEmpty(e.Reference),
			nullIfEmpty(e.Remarks), nullIfEmpty(e.RecordedBy), e.CreatedAt,
		)
	}
	return r.sendBatch(ctx, "append removed", b)
}

// AppendConsumed inserta los consumos.
func (r *LedgerRepo) AppendConsumed(ctx context.Context, entries []entity.ConsumedEntry) error {
	b := &pgx.Batch{}
	for _, e := range entries {
		b.Queue(`
			INSERT INTO stock_consumed (id, batch_id, item_id, quantity, consumed_at, employee_id, purpose, receipt_number, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.BatchID, e.ItemID, e.Quantity, e.ConsumedAt, e.EmployeeID, e.Purpose,
			nullIfEmpty(e.ReceiptNumber), e.CreatedAt,
		)
	}
	return r.sendBatch(ctx, "append consumed", b)
}

func (r *LedgerRepo) sendBatch(ctx context.Context, op string, b *pgx.Batch) error {
	if b.Len() == 0 {
		return nil
	}
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Totals suma las tres corrientes por ítem en una sola consulta.
func (r *LedgerRepo) Totals(ctx context.Context, itemIDs []string) (map[string]entity.StockTotals, error) {
	query := `
		SELECT item_id,
			COALESCE(SUM(quantity) FILTER (WHERE kind = 'r'), 0)::bigint,
			COALESCE(SUM(quantity) FILTER (WHERE kind = 'd'), 0)::bigint,
			COALESCE(SUM(quantity) FILTER (WHERE kind = 'c'), 0)::bigint,
			COALESCE(SUM(quantity) FILTER (WHERE kind = 'r' AND unit_cost IS NOT NULL), 0)::bigint,
			COALESCE(SUM(quantity * unit_cost) FILTER (WHERE kind = 'r'), 0)
		FROM (
			SELECT item_id, 'r' AS kind, quantity, unit_cost FROM stock_received
			UNION ALL SELECT item_id, 'd', quantity, NULL FROM stock_removed
			UNION ALL SELECT item_id, 'c', quantity, NULL FROM stock_consumed
		) m
		WHERE $1 OR item_id = ANY($2)
		GROUP BY item_id`
	rows, err := r.q.Query(ctx, query, len(itemIDs) == 0, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("ledger totals: %w", err)
	}
	defer rows.Close()
	out := make(map[string]entity.StockTotals)
	for rows.Next() {
		var t entity.StockTotals
		if err := rows.Scan(&t.ItemID, &t.Received, &t.Removed, &t.Consumed, &t.ValuedQuantity, &t.ValuedTotal); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		out[t.ItemID] = t
	}
	return out, rows.Err()
}

// movementWhere arma el WHERE del historial con parámetros posicionales desde $1.
func movementWhere(st streamTable, filter entity.MovementFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	pos := 1
	if filter.From != nil {
		conds = append(conds, fmt.Sprintf("%s >= $%d", st.occurred, pos))
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		conds = append(conds, fmt.Sprintf("%s <= $%d", st.occurred, pos))
		args = append(args, *filter.To)
		pos++
	}
	if filter.ItemID != "" {
		conds = append(conds, fmt.Sprintf("item_id = $%d", pos))
		args = append(args, filter.ItemID)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (st streamTable) selectList(kind entity.EntryKind) string {
	return fmt.Sprintf(`SELECT '%s'::text, id::text, batch_id::text, item_id, quantity, %s, COALESCE(%s, ''), %s, %s FROM %s`,
		kind, st.occurred, st.performer, st.refExpr, st.remarks, st.table)
}

// ListMovements movimientos del tipo dado ordenados por occurred_at desc, id asc.
func (r *LedgerRepo) ListMovements(ctx context.Context, kind entity.EntryKind, filter entity.MovementFilter, limit int) ([]entity.MovementRecord, error) {
	st, ok := streams[kind]
	if !ok {
		return nil, fmt.Errorf("tipo de movimiento desconocido %q", kind)
	}
	query, args := listMovementsQuery(kind, st, filter, limit)
	return r.queryMovements(ctx, "list "+string(kind), query, args...)
}

// listMovementsQuery agrega el LIMIT como último parámetro posicional.
func listMovementsQuery(kind entity.EntryKind, st streamTable, filter entity.MovementFilter, limit int) (string, []any) {
	where, args := movementWhere(st, filter)
	query := st.selectList(kind) + where + fmt.Sprintf(" ORDER BY %s DESC, id ASC LIMIT $%d", st.occurred, len(args)+1)
	return query, append(args, limit)
}

// CountMovements cuenta los movimientos del tipo dado.
func (r *LedgerRepo) CountMovements(ctx context.Context, kind entity.EntryKind, filter entity.MovementFilter) (int, error) {
	st, ok := streams[kind]
	if !ok {
		return 0, fmt.Errorf("tipo de movimiento desconocido %q", kind)
	}
	where, args := movementWhere(st, filter)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM `+st.table+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return n, nil
}

// ListBatch movimientos de un lote (las tres tablas). Un id que no es UUID no tiene movimientos.
func (r *LedgerRepo) ListBatch(ctx context.Context, batchID string) ([]entity.MovementRecord, error) {
	if _, err := uuid.Parse(batchID); err != nil {
		return nil, nil
	}
	return r.queryMovements(ctx, "list batch", batchQuery(), batchID)
}

// batchQuery une las tres corrientes filtradas por el mismo $1.
func batchQuery() string {
	parts := make([]string, 0, len(entity.EntryKinds))
	for _, kind := range entity.EntryKinds {
		parts = append(parts, streams[kind].selectList(kind)+" WHERE batch_id = $1")
	}
	return strings.Join(parts, " UNION ALL ")
}

func (r *LedgerRepo) queryMovements(ctx context.Context, op, query string, args ...any) ([]entity.MovementRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.MovementRecord, error) {
		var m entity.MovementRecord
		var kind string
		err := row.Scan(&kind, &m.EntryID, &m.BatchID, &m.ItemID, &m.Quantity, &m.OccurredAt,
			&m.PerformerID, &m.ReferenceOrPurpose, &m.Remarks)
		m.Kind = entity.EntryKind(kind)
		m.OccurredAt = m.OccurredAt.UTC()
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
