package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// InventoryHandler saldos, historial, borradores y confirmación de lotes (protegido).
type InventoryHandler struct {
	commit    *inventory.CommitBatchUseCase
	balances  *inventory.BalanceUseCase
	movements *inventory.MovementUseCase
	drafts    *inventory.DraftUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	commit *inventory.CommitBatchUseCase,
	balances *inventory.BalanceUseCase,
	movements *inventory.MovementUseCase,
	drafts *inventory.DraftUseCase,
) *InventoryHandler {
	return &InventoryHandler{commit: commit, balances: balances, movements: movements, drafts: drafts}
}

// ListBalances godoc
// @Summary      Saldos actuales
// @Description  Saldo derivado del ledger por ítem, con estado frente al punto de reorden y valorización.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        section_id  query  string  false  "Sección"
// @Param        search      query  string  false  "Texto sobre la etiqueta"
// @Param        status      query  string  false  "low | sufficient"
// @Success      200  {array}   dto.BalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	filter, err := balanceFilter(c)
	if err != nil {
		return badRequest(c, "INVALID_STATUS", err.Error())
	}
	list, err := h.balances.ComputeBalances(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.BalanceResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.ToBalanceResponse(b))
	}
	return c.JSON(out)
}

// GetBalance godoc
// @Summary      Saldo de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id  path  string  true  "ID del ítem"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances/{item_id} [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	b, err := h.balances.ComputeBalance(c.UserContext(), c.Params("item_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToBalanceResponse(*b))
}

// ListMovements godoc
// @Summary      Historial unificado de movimientos
// @Description  Ingresos, bajas y consumos ordenados por fecha descendente (desempate: ingreso, baja, consumo; luego id).
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        from     query  string  false  "Desde (RFC3339 o AAAA-MM-DD, inclusivo)"
// @Param        to       query  string  false  "Hasta (RFC3339 o AAAA-MM-DD, inclusivo)"
// @Param        item_id  query  string  false  "Ítem"
// @Param        limit    query  int     false  "Límite"  default(20)
// @Param        offset   query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filter := entity.MovementFilter{ItemID: c.Query("item_id")}
	if s := c.Query("from"); s != "" {
		t, err := parseBound(s, false)
		if err != nil {
			return badRequest(c, "INVALID_FROM", err.Error())
		}
		filter.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := parseBound(s, true)
		if err != nil {
			return badRequest(c, "INVALID_TO", err.Error())
		}
		filter.To = &t
	}
	page, err := h.movements.Movements(c.UserContext(), filter, c.QueryInt("limit", 0), c.QueryInt("offset", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementPageResponse{
		Items: dto.ToMovementResponses(page.Items),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: page.Total},
	})
}

// GetBatch godoc
// @Summary      Movimientos de un lote
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        batch_id  path  string  true  "ID del lote"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/{batch_id} [get]
func (h *InventoryHandler) GetBatch(c *fiber.Ctx) error {
	recs, err := h.movements.Batch(c.UserContext(), c.Params("batch_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToMovementResponses(recs))
}

// OpenDraft godoc
// @Summary      Abrir borrador de lote
// @Description  Devuelve una fila vacía, el snapshot de saldos y los ítems elegibles. El cliente conserva el borrador.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenDraftRequest  true  "kind: received | removed | consumed"
// @Success      200   {object}  dto.DraftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/drafts [post]
func (h *InventoryHandler) OpenDraft(c *fiber.Ctx) error {
	var in dto.OpenDraftRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	kind, err := entity.ParseEntryKind(in.Kind)
	if err != nil {
		return badRequest(c, "INVALID_KIND", err.Error())
	}
	d, err := h.drafts.Open(c.UserContext(), kind)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToDraftResponse(d, d.EligibleAll()))
}

// Eligible godoc
// @Summary      Ítems elegibles por fila
// @Description  Recalcula la elegibilidad de cada fila del borrador (un ítem por lote; bajas y consumos excluyen ítems sin stock).
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EligibleRequest  true  "kind, filas y snapshot del borrador"
// @Success      200   {object}  dto.DraftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/drafts/eligible [post]
func (h *InventoryHandler) Eligible(c *fiber.Ctx) error {
	var in dto.EligibleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	kind, err := entity.ParseEntryKind(in.Kind)
	if err != nil {
		return badRequest(c, "INVALID_KIND", err.Error())
	}
	d, eligible, err := h.drafts.Eligible(c.UserContext(), kind, in.Rows, in.Snapshot)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToDraftResponse(d, eligible))
}

// CommitBatch godoc
// @Summary      Confirmar lote
// @Description  Valida y agrega todas las filas al ledger en una transacción. Cualquier fila inválida rechaza el lote completo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string                  true  "received | removed | consumed"
// @Param        body  body  dto.CommitBatchRequest  true  "Filas y metadatos del lote"
// @Success      201   {object}  dto.CommitBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/{kind} [post]
func (h *InventoryHandler) CommitBatch(kind entity.EntryKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in dto.CommitBatchRequest
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "INVALID_BODY", "cuerpo inválido")
		}
		batchID, err := h.commit.Commit(c.UserContext(), in.ToBatch(kind, GetEmployeeID(c)))
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(dto.CommitBatchResponse{BatchID: batchID})
	}
}

// balanceFilter lee section_id, search y status de la query.
func balanceFilter(c *fiber.Ctx) (entity.BalanceFilter, error) {
	status, ok := entity.ParseStockStatus(c.Query("status"))
	if !ok {
		return entity.BalanceFilter{}, fmt.Errorf("status inválido %q (low | sufficient)", c.Query("status"))
	}
	return entity.BalanceFilter{
		SectionID: c.Query("section_id"),
		Search:    c.Query("search"),
		Status:    status,
	}, nil
}

// parseBound acepta RFC3339 o AAAA-MM-DD. Una fecha sin hora como cota superior
// cubre el día completo.
func parseBound(s string, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	d, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida %q (RFC3339 o AAAA-MM-DD)", s)
	}
	if upper {
		d = d.Add(24*time.Hour - time.Nanosecond)
	}
	return d, nil
}
