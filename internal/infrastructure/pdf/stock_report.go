// Package pdf genera el reporte de saldos de inventario en PDF.
//
// Layout de la página A4 horizontal:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + filtros     │  Fecha de generación        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ítem | Sección | Ingr | Bajas | Cons | Stock | ...  │
//	│         (filas en stock bajo resaltadas)                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: ítems / en stock bajo / valor total               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/labstock-api/internal/application/ports"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorLowBg   = &props.Color{Red: 253, Green: 226, Blue: 226}
	colorLowText = &props.Color{Red: 160, Green: 20, Blue: 20}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// StockReportRenderer implementa ports.ReportRenderer usando Maroto v2.
type StockReportRenderer struct{}

var _ ports.ReportRenderer = (*StockReportRenderer)(nil)

// NewStockReportRenderer construye el renderer.
func NewStockReportRenderer() *StockReportRenderer { return &StockReportRenderer{} }

// RenderStockBalances genera el PDF y devuelve sus bytes.
func (g *StockReportRenderer) RenderStockBalances(report ports.StockReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(report.Title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(report)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(report.Balances))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report ports.StockReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(report.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(filterSummary(report), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(report.GeneratedAt.Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

// filterSummary describe los filtros aplicados en una línea.
func filterSummary(report ports.StockReport) string {
	f := report.Filter
	parts := make([]string, 0, 3)
	if f.SectionID != "" {
		parts = append(parts, "Sección: "+nonEmpty(report.Sections[f.SectionID], f.SectionID))
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("Búsqueda: %q", f.Search))
	}
	if f.Status != "" {
		parts = append(parts, "Estado: "+statusLabel(f.Status))
	}
	if len(parts) == 0 {
		return "Todo el catálogo"
	}
	return strings.Join(parts, "   |   ")
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ítem", 3, align.Left),
		h("Sección", 2, align.Left),
		h("Ingresos", 1, align.Right),
		h("Bajas", 1, align.Right),
		h("Consumos", 1, align.Right),
		h("Stock", 1, align.Right),
		h("Mínimo", 1, align.Right),
		h("Valor", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableRows una fila por ítem; las de stock bajo van resaltadas.
func tableRows(report ports.StockReport) []core.Row {
	result := make([]core.Row, 0, len(report.Balances))
	for _, b := range report.Balances {
		low := b.Status == entity.StockStatusLow
		cell := func(s string, size int, a align.Type) core.Col {
			p := props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}
			if low {
				p.Color = colorLowText
			}
			return col.New(size).Add(text.New(s, p))
		}
		label := b.Label
		if b.Unit != "" {
			label += " (" + b.Unit + ")"
		}
		r := row.New(7).Add(
			cell(label, 3, align.Left),
			cell(nonEmpty(report.Sections[b.SectionID], b.SectionID), 2, align.Left),
			cell(formatInt(b.TotalReceived), 1, align.Right),
			cell(formatInt(b.TotalRemoved), 1, align.Right),
			cell(formatInt(b.TotalConsumed), 1, align.Right),
			cell(formatInt(b.CurrentStock), 1, align.Right),
			cell(formatInt(b.ReorderLevel), 1, align.Right),
			cell("$"+formatMoney(b.StockValue), 2, align.Right),
		)
		if low {
			r = r.WithStyle(&props.Cell{BackgroundColor: colorLowBg})
		}
		result = append(result, r)
	}
	if len(result) == 0 {
		result = append(result, row.New(10).Add(col.New(12).Add(
			text.New("Sin ítems para los filtros seleccionados", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}
	return result
}

func summaryRow(balances []entity.CurrentBalance) core.Row {
	low := 0
	total := decimal.Zero
	for _, b := range balances {
		if b.Status == entity.StockStatusLow {
			low++
		}
		total = total.Add(b.StockValue)
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(18).Add(
		col.New(6),
		col.New(3).Add(
			label("Ítems:"),
			label("En stock bajo:"),
			text.New("VALOR TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2,
			}),
		),
		col.New(3).Add(
			value(strconv.Itoa(len(balances))),
			value(strconv.Itoa(low)),
			text.New("$"+formatMoney(total), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func statusLabel(s entity.StockStatus) string {
	if s == entity.StockStatusLow {
		return "stock bajo"
	}
	return "suficiente"
}

func formatInt(n int64) string {
	if n < 0 {
		return "-" + groupThousands(strconv.FormatInt(-n, 10))
	}
	return groupThousands(strconv.FormatInt(n, 10))
}

// formatMoney monto con puntos de miles y coma decimal. Ej: 1234567.5 → "1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	out := groupThousands(intPart) + "," + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

// groupThousands inserta puntos de miles en un string de dígitos.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
