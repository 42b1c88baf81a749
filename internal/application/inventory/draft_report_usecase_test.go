package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/application/ports"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	invdomain "github.com/jhoicas/labstock-api/internal/domain/inventory"
	"github.com/jhoicas/labstock-api/internal/infrastructure/sqlite"
)

func itemIDs(items []entity.Item) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

// ──────────────────────────────────────────────────────────────────────────────
// Borradores
// ──────────────────────────────────────────────────────────────────────────────

func TestDraft_ConsumoExcluyeSinStock(t *testing.T) {
	h := newHarness(t)
	_, err := h.commit.Commit(context.Background(), entity.Batch{Kind: entity.EntryKindReceived, Rows: []entity.BatchRow{row("X", 4)}})
	require.NoError(t, err)
	uc := inventory.NewDraftUseCase(h.balances)

	d, err := uc.Open(context.Background(), entity.EntryKindConsumed)
	require.NoError(t, err)
	require.Len(t, d.Rows, 1)
	assert.Equal(t, int64(4), d.Snapshot()["X"])

	eligible, err := d.Eligible(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, itemIDs(eligible))

	rec, err := uc.Open(context.Background(), entity.EntryKindReceived)
	require.NoError(t, err)
	eligible, err = rec.Eligible(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "X"}, itemIDs(eligible), "orden del catálogo por etiqueta")
}

func TestDraft_ElegiblesExcluyenOtrasFilas(t *testing.T) {
	h := newHarness(t)
	uc := inventory.NewDraftUseCase(h.balances)

	_, eligible, err := uc.Eligible(context.Background(), entity.EntryKindReceived,
		[]invdomain.RowDraft{{ItemID: "X"}, {}}, nil)

	require.NoError(t, err)
	require.Len(t, eligible, 2)
	assert.Equal(t, []string{"Y", "X"}, itemIDs(eligible[0]))
	assert.Equal(t, []string{"Y"}, itemIDs(eligible[1]))
}

func TestDraft_UsaSnapshotDelCliente(t *testing.T) {
	h := newHarness(t)
	uc := inventory.NewDraftUseCase(h.balances)

	_, eligible, err := uc.Eligible(context.Background(), entity.EntryKindRemoved,
		[]invdomain.RowDraft{{}}, map[string]int64{"Y": 3})

	require.NoError(t, err)
	assert.Equal(t, []string{"Y"}, itemIDs(eligible[0]))
}

func TestDraft_TipoInvalido(t *testing.T) {
	h := newHarness(t)
	uc := inventory.NewDraftUseCase(h.balances)

	_, err := uc.Open(context.Background(), "transfer")

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes
// ──────────────────────────────────────────────────────────────────────────────

type captureRenderer struct {
	last ports.StockReport
}

func (r *captureRenderer) RenderStockBalances(report ports.StockReport) ([]byte, error) {
	r.last = report
	return []byte("%PDF-fake"), nil
}

type memoryStore struct {
	objects map[string][]byte
}

func (s *memoryStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = data
	return "mem://" + key, nil
}

func TestReport_GeneraYArchiva(t *testing.T) {
	h := newHarness(t)
	renderer := &captureRenderer{}
	store := &memoryStore{}
	uc := inventory.NewReportUseCase(h.balances, sqlite.NewSectionRepository(h.db), renderer, store, nil)

	data, err := uc.Generate(context.Background(), entity.BalanceFilter{Status: entity.StockStatusLow})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), data)
	assert.Len(t, renderer.last.Balances, 2)
	assert.Equal(t, "Hematología", renderer.last.Sections["HEM"])

	location, err := uc.Archive(context.Background(), entity.BalanceFilter{})
	require.NoError(t, err)
	assert.Contains(t, location, "mem://stock-balances/")
	assert.Len(t, store.objects, 1)
}

func TestReport_ArchivarSinAlmacen(t *testing.T) {
	h := newHarness(t)
	uc := inventory.NewReportUseCase(h.balances, sqlite.NewSectionRepository(h.db), &captureRenderer{}, nil, nil)

	_, err := uc.Archive(context.Background(), entity.BalanceFilter{})

	assert.Error(t, err)
}

func TestReportKey(t *testing.T) {
	at := time.Date(2024, 7, 9, 13, 4, 5, 0, time.FixedZone("COT", -5*3600))

	assert.Equal(t, "stock-balances/2024/07/09/stock-balances-20240709T180405Z.pdf", inventory.ReportKey(at))
}
