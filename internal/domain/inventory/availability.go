package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// RowDraft fila en edición; solo el ítem elegido afecta la elegibilidad.
type RowDraft struct {
	ItemID string `json:"item_id"`
}

// EligibleItems calcula los ítems que la fila rowIndex todavía puede elegir.
// rowIndex fuera de rango (p. ej. -1) representa una fila nueva sin selección propia.
// Para bajas y consumos se excluyen los ítems con stock <= 0 según snapshot,
// salvo la selección propia de la fila. El catálogo conserva su orden.
func EligibleItems(
	kind entity.EntryKind,
	catalog []entity.Item,
	snapshot map[string]int64,
	rows []RowDraft,
	rowIndex int,
) []entity.Item {
	own := ""
	if rowIndex >= 0 && rowIndex < len(rows) {
		own = rows[rowIndex].ItemID
	}
	taken := make(map[string]struct{}, len(rows))
	for i, r := range rows {
		if i == rowIndex || r.ItemID == "" {
			continue
		}
		taken[r.ItemID] = struct{}{}
	}
	return filterEligible(kind, catalog, snapshot, taken, own)
}

func filterEligible(
	kind entity.EntryKind,
	catalog []entity.Item,
	snapshot map[string]int64,
	taken map[string]struct{},
	own string,
) []entity.Item {
	out := make([]entity.Item, 0, len(catalog))
	for _, it := range catalog {
		if it.ID == own && own != "" {
			out = append(out, it)
			continue
		}
		if _, ok := taken[it.ID]; ok {
			continue
		}
		if kind.DrawsStock() && snapshot[it.ID] <= 0 {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Draft lote en edición. Es un valor explícito sin persistencia:
// descartarlo equivale a cancelar. El snapshot de saldos se toma al abrirlo
// y solo sirve para filtrar opciones; el commit vuelve a validar contra el ledger.
type Draft struct {
	Kind     entity.EntryKind `json:"kind"`
	OpenedAt time.Time        `json:"opened_at"`
	Rows     []RowDraft       `json:"rows"`

	catalog  []entity.Item
	snapshot map[string]int64
}

// NewDraft abre un borrador con una fila vacía.
func NewDraft(kind entity.EntryKind, catalog []entity.Item, snapshot map[string]int64, openedAt time.Time) *Draft {
	if snapshot == nil {
		snapshot = map[string]int64{}
	}
	return &Draft{
		Kind:     kind,
		OpenedAt: openedAt,
		Rows:     []RowDraft{{}},
		catalog:  catalog,
		snapshot: snapshot,
	}
}

// RestoreDraft reconstruye un borrador a partir de filas serializadas por el cliente.
func RestoreDraft(kind entity.EntryKind, catalog []entity.Item, snapshot map[string]int64, rows []RowDraft, openedAt time.Time) *Draft {
	d := NewDraft(kind, catalog, snapshot, openedAt)
	if len(rows) > 0 {
		d.Rows = append([]RowDraft(nil), rows...)
	}
	return d
}

// AddRow agrega una fila vacía y devuelve su índice.
func (d *Draft) AddRow() int {
	d.Rows = append(d.Rows, RowDraft{})
	return len(d.Rows) - 1
}

// RemoveRow elimina la fila i. Un borrador siempre conserva al menos una fila.
func (d *Draft) RemoveRow(i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.Rows = append(d.Rows[:i], d.Rows[i+1:]...)
	if len(d.Rows) == 0 {
		d.Rows = []RowDraft{{}}
	}
	return nil
}

// SelectItem fija el ítem de la fila i. itemID vacío limpia la selección.
func (d *Draft) SelectItem(i int, itemID string) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if itemID != "" && !d.isEligible(i, itemID) {
		return fmt.Errorf("%w: el ítem %s no es elegible en la fila %d", domain.ErrInvalidInput, itemID, i)
	}
	d.Rows[i].ItemID = itemID
	return nil
}

// Eligible ítems elegibles para la fila i.
func (d *Draft) Eligible(i int) ([]entity.Item, error) {
	if err := d.checkIndex(i); err != nil {
		return nil, err
	}
	return EligibleItems(d.Kind, d.catalog, d.snapshot, d.Rows, i), nil
}

// EligibleAll ítems elegibles por fila. El conteo de selecciones se arma una sola vez.
func (d *Draft) EligibleAll() [][]entity.Item {
	counts := make(map[string]int, len(d.Rows))
	for _, r := range d.Rows {
		if r.ItemID != "" {
			counts[r.ItemID]++
		}
	}
	out := make([][]entity.Item, len(d.Rows))
	for i, r := range d.Rows {
		taken := make(map[string]struct{}, len(counts))
		for id, n := range counts {
			if id == r.ItemID && n == 1 {
				continue
			}
			taken[id] = struct{}{}
		}
		out[i] = filterEligible(d.Kind, d.catalog, d.snapshot, taken, r.ItemID)
	}
	return out
}

// Snapshot stock por ítem tomado al abrir el borrador.
func (d *Draft) Snapshot() map[string]int64 { return d.snapshot }

func (d *Draft) isEligible(i int, itemID string) bool {
	for _, it := range EligibleItems(d.Kind, d.catalog, d.snapshot, d.Rows, i) {
		if it.ID == itemID {
			return true
		}
	}
	return false
}

func (d *Draft) checkIndex(i int) error {
	if i < 0 || i >= len(d.Rows) {
		return fmt.Errorf("%w: fila %d fuera de rango", domain.ErrInvalidInput, i)
	}
	return nil
}
