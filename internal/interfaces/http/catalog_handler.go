package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/labstock-api/internal/application/usecase"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// CatalogHandler lecturas del catálogo (protegido).
type CatalogHandler struct {
	uc *usecase.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// ListItems godoc
// @Summary      Listar ítems del catálogo
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        section_id  query  string  false  "Sección"
// @Param        search      query  string  false  "Texto (sin distinguir mayúsculas ni tildes)"
// @Success      200  {array}   dto.ItemResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/catalog/items [get]
func (h *CatalogHandler) ListItems(c *fiber.Ctx) error {
	out, err := h.uc.ListItems(c.UserContext(), entity.ItemFilter{
		SectionID: c.Query("section_id"),
		Search:    c.Query("search"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListSections godoc
// @Summary      Listar secciones
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SectionResponse
// @Router       /api/catalog/sections [get]
func (h *CatalogHandler) ListSections(c *fiber.Ctx) error {
	out, err := h.uc.ListSections(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListEmployees godoc
// @Summary      Listar empleados
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        all  query  bool  false  "Incluir inactivos"
// @Success      200  {array}  dto.EmployeeResponse
// @Router       /api/catalog/employees [get]
func (h *CatalogHandler) ListEmployees(c *fiber.Ctx) error {
	out, err := h.uc.ListEmployees(c.UserContext(), !c.QueryBool("all", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
