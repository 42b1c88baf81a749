package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/application/ports"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/infrastructure/pdf"
)

func TestRenderStockBalances_GeneraPDF(t *testing.T) {
	r := pdf.NewStockReportRenderer()

	data, err := r.RenderStockBalances(ports.StockReport{
		Title:       "Saldos de inventario",
		GeneratedAt: time.Date(2024, 7, 9, 18, 0, 0, 0, time.UTC),
		Sections:    map[string]string{"HEM": "Hematología"},
		Balances: []entity.CurrentBalance{
			{ItemID: "X", Label: "Tubo EDTA", SectionID: "HEM", Unit: "caja", ReorderLevel: 10,
				TotalReceived: 50, TotalConsumed: 45, CurrentStock: 5, Status: entity.StockStatusLow,
				StockValue: decimal.RequireFromString("5000.00")},
			{ItemID: "Y", Label: "Lanceta", SectionID: "HEM", ReorderLevel: 2,
				TotalReceived: 12, CurrentStock: 12, Status: entity.StockStatusSufficient},
		},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderStockBalances_SinItems(t *testing.T) {
	data, err := pdf.NewStockReportRenderer().RenderStockBalances(ports.StockReport{Title: "Saldos"})

	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
