package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const dateLayout = "2006-01-02"

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

type movementRow struct {
	Kind               string `db:"kind"`
	EntryID            string `db:"id"`
	BatchID            string `db:"batch_id"`
	ItemID             string `db:"item_id"`
	Quantity           int64  `db:"quantity"`
	OccurredAt         int64  `db:"occurred_at"`
	PerformerID        string `db:"performer"`
	ReferenceOrPurpose string `db:"ref"`
	Remarks            string `db:"remarks"`
}

func (m movementRow) toEntity() entity.MovementRecord {
	return entity.MovementRecord{
		EntryID:            m.EntryID,
		BatchID:            m.BatchID,
		Kind:               entity.EntryKind(m.Kind),
		ItemID:             m.ItemID,
		Quantity:           m.Quantity,
		OccurredAt:         fromNanos(m.OccurredAt),
		PerformerID:        m.PerformerID,
		ReferenceOrPurpose: m.ReferenceOrPurpose,
		Remarks:            m.Remarks,
	}
}

// LedgerRepo ledger append-only sobre SQLite (usable con *sqlx.DB o *sqlx.Tx).
type LedgerRepo struct {
	q sqlx.ExtContext
}

// NewLedgerRepository construye el adaptador.
func NewLedgerRepository(q sqlx.ExtContext) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// AppendReceived inserta los ingresos.
func (r *LedgerRepo) AppendReceived(ctx context.Context, entries []entity.ReceivedEntry) error {
	for _, e := range entries {
		var expiry, cost any
		if e.ExpiryDate != nil {
			expiry = e.ExpiryDate.UTC().Format(dateLayout)
		}
		if e.UnitCost != nil {
			cost = e.UnitCost.String()
		}
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO stock_received (id, batch_id, item_id, quantity, received_at, expiry_date, supplier,
				reference, remarks, lot_number, unit_cost, recorded_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.BatchID, e.ItemID, e.Quantity, toNanos(e.ReceivedAt), expiry, nullIfEmpty(e.Supplier),
			nullIfEmpty(e.Reference), nullIfEmpty(e.Remarks), nullIfEmpty(e.LotNumber), cost,
			nullIfEmpty(e.RecordedBy), toNanos(e.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("append received: %w", mapError(err))
		}
	}
	return nil
}

// AppendRemoved inserta las bajas.
func (r *LedgerRepo) AppendRemoved(ctx context.Context, entries []entity.RemovedEntry) error {
	for _, e := range entries {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO stock_removed (id, batch_id, item_id, quantity, removed_at, reference, remarks, recorded_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.BatchID, e.ItemID, e.Quantity, toNanos(e.RemovedAt), nullIfEmpty(e.Reference),
			nullIfEmpty(e.Remarks), nullIfEmpty(e.RecordedBy), toNanos(e.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("append removed: %w", mapError(err))
		}
	}
	return nil
}

// AppendConsumed inserta los consumos.
func (r *LedgerRepo) AppendConsumed(ctx context.Context, entries []entity.ConsumedEntry) error {
	for _, e := range entries {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO stock_consumed (id, batch_id, item_id, quantity, consumed_at, employee_id, purpose, receipt_number, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.BatchID, e.ItemID, e.Quantity, toNanos(e.ConsumedAt), e.EmployeeID, e.Purpose,
			nullIfEmpty(e.ReceiptNumber), toNanos(e.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("append consumed: %w", mapError(err))
		}
	}
	return nil
}

type totalsRow struct {
	ItemID         string `db:"item_id"`
	Received       int64  `db:"received"`
	Removed        int64  `db:"removed"`
	Consumed       int64  `db:"consumed"`
	ValuedQuantity int64  `db:"valued_qty"`
}

type costRow struct {
	ItemID   string `db:"item_id"`
	Quantity int64  `db:"quantity"`
	UnitCost string `db:"unit_cost"`
}

// Totals suma las tres corrientes por ítem. El total valorizado se suma en Go con decimal
// porque SQLite no tiene aritmética decimal exacta.
func (r *LedgerRepo) Totals(ctx context.Context, itemIDs []string) (map[string]entity.StockTotals, error) {
	filter, args := "", []any{}
	if len(itemIDs) > 0 {
		var err error
		filter, args, err = sqlx.In(" WHERE item_id IN (?)", itemIDs)
		if err != nil {
			return nil, err
		}
	}
	query := `
		SELECT item_id,
			COALESCE(SUM(CASE WHEN kind = 'r' THEN quantity END), 0) AS received,
			COALESCE(SUM(CASE WHEN kind = 'd' THEN quantity END), 0) AS removed,
			COALESCE(SUM(CASE WHEN kind = 'c' THEN quantity END), 0) AS consumed,
			COALESCE(SUM(CASE WHEN kind = 'r' AND unit_cost IS NOT NULL THEN quantity END), 0) AS valued_qty
		FROM (
			SELECT item_id, 'r' AS kind, quantity, unit_cost FROM stock_received
			UNION ALL SELECT item_id, 'd', quantity, NULL FROM stock_removed
			UNION ALL SELECT item_id, 'c', quantity, NULL FROM stock_consumed
		)` + filter + ` GROUP BY item_id`
	var rows []totalsRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, r.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("ledger totals: %w", mapError(err))
	}
	out := make(map[string]entity.StockTotals, len(rows))
	for _, t := range rows {
		out[t.ItemID] = entity.StockTotals{
			ItemID: t.ItemID, Received: t.Received, Removed: t.Removed, Consumed: t.Consumed,
			ValuedQuantity: t.ValuedQuantity, ValuedTotal: decimal.Zero,
		}
	}

	costQuery := `SELECT item_id, quantity, unit_cost FROM stock_received WHERE unit_cost IS NOT NULL`
	var costArgs []any
	if len(itemIDs) > 0 {
		var err error
		costQuery, costArgs, err = sqlx.In(costQuery+" AND item_id IN (?)", itemIDs)
		if err != nil {
			return nil, err
		}
	}
	var costs []costRow
	if err := sqlx.SelectContext(ctx, r.q, &costs, r.q.Rebind(costQuery), costArgs...); err != nil {
		return nil, fmt.Errorf("ledger valued totals: %w", mapError(err))
	}
	for _, c := range costs {
		unit, err := decimal.NewFromString(c.UnitCost)
		if err != nil {
			return nil, fmt.Errorf("unit_cost inválido en %s: %w", c.ItemID, err)
		}
		t := out[c.ItemID]
		t.ValuedTotal = t.ValuedTotal.Add(unit.Mul(decimal.NewFromInt(c.Quantity)))
		out[c.ItemID] = t
	}
	return out, nil
}

func movementWhere(st streamTable, filter entity.MovementFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.From != nil {
		conds = append(conds, st.occurred+" >= ?")
		args = append(args, toNanos(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, st.occurred+" <= ?")
		args = append(args, toNanos(*filter.To))
	}
	if filter.ItemID != "" {
		conds = append(conds, "item_id = ?")
		args = append(args, filter.ItemID)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (st streamTable) selectList(kind entity.EntryKind) string {
	return fmt.Sprintf(`SELECT '%s' AS kind, id, batch_id, item_id, quantity, %s AS occurred_at,
		COALESCE(%s, '') AS performer, %s AS ref, %s AS remarks FROM %s`,
		kind, st.occurred, st.performer, st.refExpr, st.remarks, st.table)
}

// ListMovements movimientos del tipo dado ordenados por occurred_at desc, id asc.
func (r *LedgerRepo) ListMovements(ctx context.Context, kind entity.EntryKind, filter entity.MovementFilter, limit int) ([]entity.MovementRecord, error) {
	st, ok := streams[kind]
	if !ok {
		return nil, fmt.Errorf("tipo de movimiento desconocido %q", kind)
	}
	where, args := movementWhere(st, filter)
	query := st.selectList(kind) + where + " ORDER BY " + st.occurred + " DESC, id ASC LIMIT ?"
	args = append(args, limit)
	return r.queryMovements(ctx, "list "+string(kind), query, args...)
}

// CountMovements cuenta los movimientos del tipo dado.
func (r *LedgerRepo) CountMovements(ctx context.Context, kind entity.EntryKind, filter entity.MovementFilter) (int, error) {
	st, ok := streams[kind]
	if !ok {
		return 0, fmt.Errorf("tipo de movimiento desconocido %q", kind)
	}
	where, args := movementWhere(st, filter)
	var n int
	if err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM `+st.table+where, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, mapError(err))
	}
	return n, nil
}

// ListBatch movimientos de un lote (las tres tablas).
func (r *LedgerRepo) ListBatch(ctx context.Context, batchID string) ([]entity.MovementRecord, error) {
	parts := make([]string, 0, len(entity.EntryKinds))
	args := make([]any, 0, len(entity.EntryKinds))
	for _, kind := range entity.EntryKinds {
		parts = append(parts, streams[kind].selectList(kind)+" WHERE batch_id = ?")
		args = append(args, batchID)
	}
	return r.queryMovements(ctx, "list batch", strings.Join(parts, " UNION ALL "), args...)
}

func (r *LedgerRepo) queryMovements(ctx context.Context, op, query string, args ...any) ([]entity.MovementRecord, error) {
	var rows []movementRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	out := make([]entity.MovementRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
