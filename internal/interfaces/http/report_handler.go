package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
)

// ReportHandler reporte PDF de saldos (protegido).
type ReportHandler struct {
	uc *inventory.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *inventory.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Download godoc
// @Summary      Reporte PDF de saldos
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        section_id  query  string  false  "Sección"
// @Param        search      query  string  false  "Texto sobre la etiqueta"
// @Param        status      query  string  false  "low | sufficient"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances/report [get]
func (h *ReportHandler) Download(c *fiber.Ctx) error {
	filter, err := balanceFilter(c)
	if err != nil {
		return badRequest(c, "INVALID_STATUS", err.Error())
	}
	data, err := h.uc.Generate(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, inventory.ReportContentType)
	c.Set(fiber.HeaderContentDisposition, `inline; filename="saldos-inventario.pdf"`)
	return c.Send(data)
}

// Archive godoc
// @Summary      Archivar reporte PDF de saldos
// @Description  Genera el reporte y lo guarda en el almacén configurado (fs o s3).
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        section_id  query  string  false  "Sección"
// @Param        search      query  string  false  "Texto sobre la etiqueta"
// @Param        status      query  string  false  "low | sufficient"
// @Success      201  {object}  dto.ArchiveReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances/report/archive [post]
func (h *ReportHandler) Archive(c *fiber.Ctx) error {
	filter, err := balanceFilter(c)
	if err != nil {
		return badRequest(c, "INVALID_STATUS", err.Error())
	}
	location, err := h.uc.Archive(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ArchiveReportResponse{Location: location})
}
