package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/application/ports"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

type harness struct {
	db        *sqlx.DB
	commit    *inventory.CommitBatchUseCase
	balances  *inventory.BalanceUseCase
	movements *inventory.MovementUseCase
	observer  *countingObserver
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes map[string]int
	retries  int
}

func (o *countingObserver) ObserveCommit(_ entity.EntryKind, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]int{}
	}
	o.outcomes[outcome]++
}

func (o *countingObserver) ObserveRetry(entity.EntryKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.retries++
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.SeedCatalog(ctx, db,
		[]entity.Section{{ID: "HEM", Name: "Hematología"}},
		[]entity.Item{
			{ID: "X", Label: "Tubo EDTA", SectionID: "HEM", Unit: "caja", ReorderLevel: 10},
			{ID: "Y", Label: "Lanceta", SectionID: "HEM", Unit: "caja", ReorderLevel: 5},
		},
		[]entity.Employee{{ID: "E1", FullName: "Ana Pérez", Active: true}},
	))

	obs := &countingObserver{}
	itemRepo := sqlite.NewItemRepository(db)
	ledgerRepo := sqlite.NewLedgerRepository(db)
	balances := inventory.NewBalanceUseCase(itemRepo, ledgerRepo)
	return &harness{
		db:        db,
		commit:    inventory.NewCommitBatchUseCase(sqlite.NewTxRunner(db), obs, logger.Nop(), inventory.CommitOptions{MaxRetries: 3, Backoff: time.Millisecond}),
		balances:  balances,
		movements: inventory.NewMovementUseCase(ledgerRepo, itemRepo, sqlite.NewEmployeeRepository(db), inventory.PageOptions{DefaultLimit: 20, MaxLimit: 100}),
		observer:  obs,
	}
}

func row(itemID string, qty int64) entity.BatchRow {
	return entity.BatchRow{ItemID: itemID, Quantity: decimal.NewFromInt(qty)}
}

func consumeRow(itemID string, qty int64) entity.BatchRow {
	r := row(itemID, qty)
	r.EmployeeID = "E1"
	r.Purpose = "control de calidad"
	return r
}

func (h *harness) stock(t *testing.T, itemID string) entity.CurrentBalance {
	t.Helper()
	b, err := h.balances.ComputeBalance(context.Background(), itemID)
	require.NoError(t, err)
	return *b
}

func (h *harness) ledgerRows(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, h.db.Get(&n, `SELECT (SELECT COUNT(*) FROM stock_received) + (SELECT COUNT(*) FROM stock_removed) + (SELECT COUNT(*) FROM stock_consumed)`))
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios del ledger: ingreso, consumo, baja insuficiente, repetidos, concurrencia.
// ──────────────────────────────────────────────────────────────────────────────

func TestCommit_EscenarioCompleto(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	batchID, err := h.commit.Commit(ctx, entity.Batch{
		Kind: entity.EntryKindReceived,
		Rows: []entity.BatchRow{row("X", 50)},
		Meta: entity.BatchMeta{Supplier: "Proveedor SA", RecordedBy: "E1"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, batchID)
	b := h.stock(t, "X")
	assert.Equal(t, int64(50), b.CurrentStock)
	assert.Equal(t, entity.StockStatusSufficient, b.Status)

	_, err = h.commit.Commit(ctx, entity.Batch{Kind: entity.EntryKindConsumed, Rows: []entity.BatchRow{consumeRow("X", 45)}})
	require.NoError(t, err)
	b = h.stock(t, "X")
	assert.Equal(t, int64(5), b.CurrentStock)
	assert.Equal(t, entity.StockStatusLow, b.Status)

	before := h.ledgerRows(t)
	_, err = h.commit.Commit(ctx, entity.Batch{Kind: entity.EntryKindRemoved, Rows: []entity.BatchRow{row("X", 6)}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	rows := domain.RowErrors(err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.RowCodeInsufficientStock, rows[0].Code)
	assert.Equal(t, int64(5), h.stock(t, "X").CurrentStock)
	assert.Equal(t, before, h.ledgerRows(t))

	_, err = h.commit.Commit(ctx, entity.Batch{Kind: entity.EntryKindReceived, Rows: []entity.BatchRow{row("Y", 1), row("Y", 2)}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateItemInBatch))
	assert.Equal(t, before, h.ledgerRows(t))

	assert.Equal(t, 2, h.observer.outcomes[ports.CommitOutcomeCommitted])
	assert.Equal(t, 2, h.observer.outcomes[ports.CommitOutcomeRejected])
}

func TestCommit_ConsumosConcurrentesSoloUnoConfirma(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.commit.Commit(ctx, entity.Batch{Kind: entity.EntryKindReceived, Rows: []entity.BatchRow{row("X", 40)}})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.commit.Commit(ctx, entity.Batch{Kind: entity.EntryKindConsumed, Rows: []entity.BatchRow{consumeRow("X", 30)}})
		}(i)
	}
	wg.Wait()

	ok, insufficient := 0, 0
	for _, e := range errs {
		switch {
		case e == nil:
			ok++
		case errors.Is(e, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(10), h.stock(t, "X").CurrentStock)
}

func TestCommit_AtomicidadLoteParcialmenteInvalido(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.commit.Commit(ctx, entity.Batch{Kind: entity.EntryKindReceived, Rows: []entity.BatchRow{row("X", 10), row("Y", 3)}})
	require.NoError(t, err)
	before := h.ledgerRows(t)

	_, err = h.commit.Commit(ctx, entity.Batch{Kind: entity.EntryKindRemoved, Rows: []entity.BatchRow{row("X", 2), row("Y", 4)}})

	require.True(t, errors.Is(err, domain.ErrInsufficientStock))
	rows := domain.RowErrors(err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, before, h.ledgerRows(t))
	assert.Equal(t, int64(10), h.stock(t, "X").CurrentStock)
}

func TestCommit_ValidacionEstructural(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.commit.Commit(ctx, entity.Batch{Kind: entity.EntryKindConsumed, Rows: []entity.BatchRow{
		row("X", 1),
		{ItemID: "NOPE", Quantity: decimal.RequireFromString("1.5")},
	}})

	require.True(t, errors.Is(err, domain.ErrValidation))
	codes := map[string]bool{}
	for _, r := range domain.RowErrors(err) {
		codes[r.Code] = true
	}
	assert.True(t, codes[domain.RowCodeMissingEmployee])
	assert.True(t, codes[domain.RowCodeMissingPurpose])
	assert.True(t, codes[domain.RowCodeItemNotFound])
	assert.True(t, codes[domain.RowCodeInvalidQuantity])
	assert.Zero(t, h.ledgerRows(t))

	_, err = h.commit.Commit(ctx, entity.Batch{Kind: entity.EntryKindReceived})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = h.commit.Commit(ctx, entity.Batch{Kind: "transfer", Rows: []entity.BatchRow{row("X", 1)}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCommit_MetadatosDelLote(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 2, 14, 30, 0, 0, time.UTC)

	batchID, err := h.commit.Commit(ctx, entity.Batch{
		Kind: entity.EntryKindReceived,
		Rows: []entity.BatchRow{row("X", 5), row("Y", 7)},
		Meta: entity.BatchMeta{OccurredAt: at, Reference: "OC-2024-18", RecordedBy: "E1"},
	})
	require.NoError(t, err)

	recs, err := h.movements.Batch(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, batchID, r.BatchID)
		assert.True(t, r.OccurredAt.Equal(at))
		assert.Equal(t, "OC-2024-18", r.ReferenceOrPurpose)
		assert.Equal(t, "Ana Pérez", r.PerformerLabel)
	}
	assert.Less(t, recs[0].EntryID, recs[1].EntryID, "ids v7 en orden de envío")
	assert.Equal(t, "X", recs[0].ItemID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reintentos ante conflicto de serialización
// ──────────────────────────────────────────────────────────────────────────────

type flakyRunner struct {
	failures int
	calls    int
}

func (r *flakyRunner) Run(_ context.Context, _ func(repository.LedgerRepository, repository.ItemRepository, repository.EmployeeRepository) error) error {
	r.calls++
	if r.calls <= r.failures {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

func TestCommit_ReintentaConflictos(t *testing.T) {
	runner := &flakyRunner{failures: 2}
	obs := &countingObserver{}
	uc := inventory.NewCommitBatchUseCase(runner, obs, nil, inventory.CommitOptions{MaxRetries: 3, Backoff: time.Millisecond})

	id, err := uc.Commit(context.Background(), entity.Batch{Kind: entity.EntryKindReceived, Rows: []entity.BatchRow{row("X", 1)}})

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 3, runner.calls)
	assert.Equal(t, 2, obs.retries)
}

func TestCommit_ReintentosAgotados(t *testing.T) {
	runner := &flakyRunner{failures: 10}
	obs := &countingObserver{}
	uc := inventory.NewCommitBatchUseCase(runner, obs, nil, inventory.CommitOptions{MaxRetries: 2, Backoff: time.Millisecond})

	_, err := uc.Commit(context.Background(), entity.Batch{Kind: entity.EntryKindReceived, Rows: []entity.BatchRow{row("X", 1)}})

	assert.True(t, errors.Is(err, domain.ErrConcurrencyConflict))
	assert.Equal(t, 3, runner.calls)
	assert.Equal(t, 1, obs.outcomes[ports.CommitOutcomeConflict])
}

func TestCommit_ContextoCanceladoDuranteEspera(t *testing.T) {
	runner := &flakyRunner{failures: 10}
	uc := inventory.NewCommitBatchUseCase(runner, nil, nil, inventory.CommitOptions{MaxRetries: 5, Backoff: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := uc.Commit(ctx, entity.Batch{Kind: entity.EntryKindReceived, Rows: []entity.BatchRow{row("X", 1)}})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, runner.calls)
}
