package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/labstock-api/internal/application/ports"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// ReportContentType tipo MIME del reporte de saldos.
const ReportContentType = "application/pdf"

// ReportUseCase genera el reporte PDF de saldos y lo archiva en el almacén configurado.
type ReportUseCase struct {
	balances    *BalanceUseCase
	sectionRepo repository.SectionRepository
	renderer    ports.ReportRenderer
	store       ports.ReportStore
	log         *logger.Logger
	now         func() time.Time
}

// NewReportUseCase construye el caso de uso. store puede ser nil si no se archiva.
func NewReportUseCase(
	balances *BalanceUseCase,
	sectionRepo repository.SectionRepository,
	renderer ports.ReportRenderer,
	store ports.ReportStore,
	log *logger.Logger,
) *ReportUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReportUseCase{
		balances:    balances,
		sectionRepo: sectionRepo,
		renderer:    renderer,
		store:       store,
		log:         log.Component("reports"),
		now:         time.Now,
	}
}

// Generate renderiza el reporte de saldos filtrados.
func (uc *ReportUseCase) Generate(ctx context.Context, filter entity.BalanceFilter) ([]byte, error) {
	report, err := uc.build(ctx, filter)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderStockBalances(report)
}

// Archive renderiza el reporte y lo guarda; devuelve la ubicación del objeto.
func (uc *ReportUseCase) Archive(ctx context.Context, filter entity.BalanceFilter) (string, error) {
	if uc.store == nil {
		return "", fmt.Errorf("almacén de reportes no configurado")
	}
	report, err := uc.build(ctx, filter)
	if err != nil {
		return "", err
	}
	data, err := uc.renderer.RenderStockBalances(report)
	if err != nil {
		return "", err
	}
	key := ReportKey(report.GeneratedAt)
	location, err := uc.store.Put(ctx, key, ReportContentType, data)
	if err != nil {
		return "", fmt.Errorf("archivar reporte: %w", err)
	}
	uc.log.Info().Str("key", key).Int("bytes", len(data)).Int("items", len(report.Balances)).Msg("reporte archivado")
	return location, nil
}

// ReportKey clave del objeto archivado: stock-balances/AAAA/MM/DD/stock-balances-<ts>.pdf
func ReportKey(at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("stock-balances/%s/stock-balances-%s.pdf", at.Format("2006/01/02"), at.Format("20060102T150405Z"))
}

func (uc *ReportUseCase) build(ctx context.Context, filter entity.BalanceFilter) (ports.StockReport, error) {
	balances, err := uc.balances.ComputeBalances(ctx, filter)
	if err != nil {
		return ports.StockReport{}, err
	}
	sections, err := uc.sectionRepo.List(ctx)
	if err != nil {
		return ports.StockReport{}, err
	}
	names := make(map[string]string, len(sections))
	for _, s := range sections {
		names[s.ID] = s.Name
	}
	return ports.StockReport{
		Title:       "Saldos de inventario",
		GeneratedAt: uc.now().UTC(),
		Filter:      filter,
		Sections:    names,
		Balances:    balances,
	}, nil
}
