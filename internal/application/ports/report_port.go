package ports

import (
	"context"
	"time"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// StockReport datos del reporte de saldos listos para renderizar.
type StockReport struct {
	Title       string
	GeneratedAt time.Time
	Filter      entity.BalanceFilter
	Sections    map[string]string // section_id -> nombre
	Balances    []entity.CurrentBalance
}

// ReportRenderer puerto de salida para renderizar reportes (PDF con maroto u otro adaptador).
type ReportRenderer interface {
	RenderStockBalances(report StockReport) ([]byte, error)
}

// ReportStore puerto de salida para archivar reportes generados (sistema de archivos, S3, memoria).
// Put devuelve la ubicación final del objeto.
type ReportStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}
