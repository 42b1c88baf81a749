package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/application/usecase"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/infrastructure/blob"
	"github.com/jhoicas/labstock-api/internal/infrastructure/metrics"
	"github.com/jhoicas/labstock-api/internal/infrastructure/pdf"
	"github.com/jhoicas/labstock-api/internal/infrastructure/sqlite"
	apphttp "github.com/jhoicas/labstock-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/labstock-api/pkg/jwt"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// newTestAPI arma la API completa sobre SQLite en memoria con un catálogo mínimo.
func newTestAPI(t *testing.T) *fiber.App {
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

	itemRepo := sqlite.NewItemRepository(db)
	sectionRepo := sqlite.NewSectionRepository(db)
	employeeRepo := sqlite.NewEmployeeRepository(db)
	ledgerRepo := sqlite.NewLedgerRepository(db)

	reg := prometheus.NewRegistry()
	observer, err := metrics.NewCommitObserver(reg)
	require.NoError(t, err)
	store, err := blob.NewFilesystem(t.TempDir())
	require.NoError(t, err)

	balanceUC := inventory.NewBalanceUseCase(itemRepo, ledgerRepo)
	return apphttp.NewApp("labstock-test", apphttp.RouterDeps{
		CatalogUC:  usecase.NewCatalogUseCase(itemRepo, sectionRepo, employeeRepo),
		CommitUC:   inventory.NewCommitBatchUseCase(sqlite.NewTxRunner(db), observer, nil, inventory.CommitOptions{MaxRetries: 2, Backoff: time.Millisecond}),
		BalanceUC:  balanceUC,
		MovementUC: inventory.NewMovementUseCase(ledgerRepo, itemRepo, employeeRepo, inventory.PageOptions{DefaultLimit: 20, MaxLimit: 100}),
		DraftUC:    inventory.NewDraftUseCase(balanceUC),
		ReportUC:   inventory.NewReportUseCase(balanceUC, sectionRepo, pdf.NewStockReportRenderer(), store, nil),
		DB:         apphttp.PingFunc(db.PingContext),
		Metrics:    reg,
		Log:        logger.Nop(),
		JWTSecret:  testJWTSecret,
		JWTIssuer:  testIssuer,
	})
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func batchBody(rows ...map[string]any) map[string]any {
	return map[string]any{"rows": rows, "meta": map[string]any{}}
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_IngresoConsumoYSaldo(t *testing.T) {
	app := newTestAPI(t)

	resp := call(t, app, http.MethodPost, "/api/inventory/batches/received", pkgjwt.RoleInventario,
		map[string]any{
			"rows": []map[string]any{{"item_id": "X", "quantity": 50, "unit_cost": "1000", "expiry_date": "2030-01-31"}},
			"meta": map[string]any{"supplier": "Proveedor SA"},
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.CommitBatchResponse](t, resp)
	assert.NotEmpty(t, created.BatchID)

	resp = call(t, app, http.MethodPost, "/api/inventory/batches/consumed", pkgjwt.RoleLaboratorista,
		batchBody(map[string]any{"item_id": "X", "quantity": 45, "employee_id": "E1", "purpose": "hemograma"}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/inventory/balances/X", pkgjwt.RoleLaboratorista, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bal := decode[dto.BalanceResponse](t, resp)
	assert.Equal(t, int64(5), bal.CurrentStock)
	assert.Equal(t, "low", bal.Status)
	assert.Equal(t, "5000", bal.StockValue.String())

	resp = call(t, app, http.MethodGet, "/api/inventory/batches/"+created.BatchID, pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	moves := decode[[]dto.MovementResponse](t, resp)
	require.Len(t, moves, 1)
	assert.Equal(t, "Proveedor SA", moves[0].ReferenceOrPurpose)
	assert.Equal(t, "Ana Pérez", moves[0].PerformerLabel, "recorded_by sale del token")
}

func TestAPI_BajaInsuficienteDevuelveFilas(t *testing.T) {
	app := newTestAPI(t)
	resp := call(t, app, http.MethodPost, "/api/inventory/batches/received", pkgjwt.RoleAdmin,
		batchBody(map[string]any{"item_id": "X", "quantity": 5}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/inventory/batches/removed", pkgjwt.RoleAdmin,
		batchBody(map[string]any{"item_id": "X", "quantity": 6}))

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, 0, body.Rows[0].Index)
	assert.Contains(t, body.Rows[0].Message, "disponible 5")
}

func TestAPI_ItemRepetidoEnLote(t *testing.T) {
	app := newTestAPI(t)

	resp := call(t, app, http.MethodPost, "/api/inventory/batches/received", pkgjwt.RoleAdmin,
		batchBody(map[string]any{"item_id": "Y", "quantity": 1}, map[string]any{"item_id": "Y", "quantity": 2}))

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "DUPLICATE_ITEM_IN_BATCH", body.Code)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, 1, body.Rows[0].Index)
}

func TestAPI_FechaDeVencimientoMalFormada(t *testing.T) {
	app := newTestAPI(t)

	resp := call(t, app, http.MethodPost, "/api/inventory/batches/received", pkgjwt.RoleAdmin,
		batchBody(map[string]any{"item_id": "X", "quantity": 1, "expiry_date": "31/01/2030"}))

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "expiry_date", body.Rows[0].Field)
}

func TestAPI_LoteConVariosErroresLosInformaTodos(t *testing.T) {
	app := newTestAPI(t)

	resp := call(t, app, http.MethodPost, "/api/inventory/batches/received", pkgjwt.RoleAdmin,
		batchBody(
			map[string]any{"item_id": "X", "quantity": 1, "expiry_date": "2024-13-40"},
			map[string]any{"item_id": "", "quantity": -3},
			map[string]any{"item_id": "X", "quantity": 2},
		))

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)

	codes := map[int][]string{}
	for _, r := range body.Rows {
		codes[r.Index] = append(codes[r.Index], r.Code)
	}
	assert.Equal(t, []string{"INVALID_EXPIRY"}, codes[0])
	assert.ElementsMatch(t, []string{"MISSING_ITEM", "INVALID_QUANTITY"}, codes[1])
	assert.Equal(t, []string{"DUPLICATE_ITEM"}, codes[2])
}

func TestAPI_CantidadNoNumericaEsErrorDeFila(t *testing.T) {
	app := newTestAPI(t)

	resp := call(t, app, http.MethodPost, "/api/inventory/batches/received", pkgjwt.RoleAdmin,
		batchBody(
			map[string]any{"item_id": "Y", "quantity": "2"},
			map[string]any{"item_id": "X", "quantity": "abc", "unit_cost": "gratis"},
		))

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	require.Len(t, body.Rows, 2)
	for _, r := range body.Rows {
		assert.Equal(t, 1, r.Index)
	}
	assert.Equal(t, "INVALID_QUANTITY", body.Rows[0].Code)
	assert.Equal(t, "INVALID_UNIT_COST", body.Rows[1].Code)

	resp = call(t, app, http.MethodGet, "/api/inventory/balances/Y", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), decode[dto.BalanceResponse](t, resp).CurrentStock, "el lote rechazado no deja filas")
}

func TestAPI_LaboratoristaNoRegistraIngresos(t *testing.T) {
	app := newTestAPI(t)

	resp := call(t, app, http.MethodPost, "/api/inventory/batches/received", pkgjwt.RoleLaboratorista,
		batchBody(map[string]any{"item_id": "X", "quantity": 1}))

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_SinToken(t *testing.T) {
	app := newTestAPI(t)

	resp := call(t, app, http.MethodGet, "/api/inventory/balances", "", nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_SaldosFiltradosYEstadoInvalido(t *testing.T) {
	app := newTestAPI(t)

	resp := call(t, app, http.MethodGet, "/api/inventory/balances?status=low&search=LANCETA", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]dto.BalanceResponse](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Y", list[0].ItemID)

	resp = call(t, app, http.MethodGet, "/api/inventory/balances?status=agotado", pkgjwt.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/inventory/balances/NOPE", pkgjwt.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ITEM_NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAPI_HistorialPaginado(t *testing.T) {
	app := newTestAPI(t)
	for _, q := range []int{3, 4, 5} {
		resp := call(t, app, http.MethodPost, "/api/inventory/batches/received", pkgjwt.RoleAdmin,
			batchBody(map[string]any{"item_id": "X", "quantity": q}))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := call(t, app, http.MethodGet, "/api/inventory/movements?limit=2&offset=0", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[dto.MovementPageResponse](t, resp)
	assert.Equal(t, 3, page.Page.Total)
	assert.Len(t, page.Items, 2)

	resp = call(t, app, http.MethodGet, "/api/inventory/movements?from=2030-01-02&to=2030-01-01", pkgjwt.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/inventory/movements?from=ayer", pkgjwt.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CatalogoYBorrador(t *testing.T) {
	app := newTestAPI(t)

	resp := call(t, app, http.MethodGet, "/api/catalog/items?search=tubo", pkgjwt.RoleLaboratorista, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[[]dto.ItemResponse](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, "X", items[0].ItemID)

	resp = call(t, app, http.MethodPost, "/api/inventory/drafts", pkgjwt.RoleLaboratorista, map[string]any{"kind": "consumed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	draft := decode[dto.DraftResponse](t, resp)
	require.Len(t, draft.Rows, 1)
	assert.Empty(t, draft.Eligible[0], "sin stock no hay ítems para consumir")

	resp = call(t, app, http.MethodPost, "/api/inventory/drafts/eligible", pkgjwt.RoleAdmin, map[string]any{
		"kind": "received",
		"rows": []map[string]any{{"item_id": "X"}, {"item_id": ""}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	draft = decode[dto.DraftResponse](t, resp)
	assert.Equal(t, [][]string{{"Y", "X"}, {"Y"}}, draft.Eligible)

	resp = call(t, app, http.MethodPost, "/api/inventory/drafts", pkgjwt.RoleAdmin, map[string]any{"kind": "transfer"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ReporteYArchivo(t *testing.T) {
	app := newTestAPI(t)

	resp := call(t, app, http.MethodGet, "/api/inventory/balances/report", pkgjwt.RoleLaboratorista, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	data, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	resp = call(t, app, http.MethodPost, "/api/inventory/balances/report/archive", pkgjwt.RoleInventario, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	archived := decode[dto.ArchiveReportResponse](t, resp)
	assert.True(t, strings.HasSuffix(archived.Location, ".pdf"))
}

func TestAPI_HealthYMetricas(t *testing.T) {
	app := newTestAPI(t)

	resp := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/inventory/batches/received", pkgjwt.RoleAdmin,
		batchBody(map[string]any{"item_id": "X", "quantity": 1}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `labstock_batch_commits_total{kind="received",outcome="committed"} 1`)
}
