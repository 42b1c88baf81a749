package usecase

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/pkg/textnorm"
)

// CatalogUseCase lecturas del catálogo (ítems, secciones, empleados). El catálogo se administra fuera.
type CatalogUseCase struct {
	itemRepo     repository.ItemRepository
	sectionRepo  repository.SectionRepository
	employeeRepo repository.EmployeeRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(
	itemRepo repository.ItemRepository,
	sectionRepo repository.SectionRepository,
	employeeRepo repository.EmployeeRepository,
) *CatalogUseCase {
	return &CatalogUseCase{itemRepo: itemRepo, sectionRepo: sectionRepo, employeeRepo: employeeRepo}
}

// ListItems ítems filtrados por sección y texto (sin distinguir mayúsculas ni tildes).
func (uc *CatalogUseCase) ListItems(ctx context.Context, filter entity.ItemFilter) ([]dto.ItemResponse, error) {
	items, err := uc.itemRepo.List(ctx, filter.SectionID)
	if err != nil {
		return nil, err
	}
	match := textnorm.NewMatcher(filter.Search)
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		if !match.Match(it.Label) {
			continue
		}
		out = append(out, toItemResponse(it))
	}
	return out, nil
}

// ListSections secciones ordenadas por nombre.
func (uc *CatalogUseCase) ListSections(ctx context.Context) ([]dto.SectionResponse, error) {
	sections, err := uc.sectionRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SectionResponse, 0, len(sections))
	for _, s := range sections {
		out = append(out, dto.SectionResponse{SectionID: s.ID, Name: s.Name})
	}
	return out, nil
}

// ListEmployees empleados; activeOnly excluye los inactivos.
func (uc *CatalogUseCase) ListEmployees(ctx context.Context, activeOnly bool) ([]dto.EmployeeResponse, error) {
	emps, err := uc.employeeRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EmployeeResponse, 0, len(emps))
	for _, e := range emps {
		out = append(out, dto.EmployeeResponse{EmployeeID: e.ID, FullName: e.FullName, Active: e.Active})
	}
	return out, nil
}

func toItemResponse(it entity.Item) dto.ItemResponse {
	return dto.ItemResponse{
		ItemID:       it.ID,
		Label:        it.Label,
		SectionID:    it.SectionID,
		Unit:         it.Unit,
		ReorderLevel: it.ReorderLevel,
	}
}
