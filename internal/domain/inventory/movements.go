package inventory

import (
	"slices"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// CompareMovements orden total del historial: occurred_at desc, tipo (ingreso, baja, consumo), entry_id asc.
func CompareMovements(a, b entity.MovementRecord) int {
	if !a.OccurredAt.Equal(b.OccurredAt) {
		if a.OccurredAt.After(b.OccurredAt) {
			return -1
		}
		return 1
	}
	if ra, rb := a.Kind.Rank(), b.Kind.Rank(); ra != rb {
		return ra - rb
	}
	switch {
	case a.EntryID < b.EntryID:
		return -1
	case a.EntryID > b.EntryID:
		return 1
	}
	return 0
}

// MergeMovements intercala las corrientes del ledger en un único historial.
// Cada corriente se ordena si no llega ordenada; luego se hace un merge k-way.
func MergeMovements(streams ...[]entity.MovementRecord) []entity.MovementRecord {
	total := 0
	sorted := make([][]entity.MovementRecord, len(streams))
	for i, s := range streams {
		total += len(s)
		if !slices.IsSortedFunc(s, CompareMovements) {
			s = slices.Clone(s)
			slices.SortFunc(s, CompareMovements)
		}
		sorted[i] = s
	}
	out := make([]entity.MovementRecord, 0, total)
	heads := make([]int, len(sorted))
	for len(out) < total {
		best := -1
		for i, s := range sorted {
			if heads[i] >= len(s) {
				continue
			}
			if best < 0 || CompareMovements(s[heads[i]], sorted[best][heads[best]]) < 0 {
				best = i
			}
		}
		out = append(out, sorted[best][heads[best]])
		heads[best]++
	}
	return out
}

// PageMovements recorta el historial combinado. offset más allá del final devuelve vacío.
func PageMovements(merged []entity.MovementRecord, offset, limit int) []entity.MovementRecord {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(merged) || limit <= 0 {
		return []entity.MovementRecord{}
	}
	end := offset + limit
	if end > len(merged) {
		end = len(merged)
	}
	return merged[offset:end]
}

// ResolvePerformers completa PerformerLabel e ItemLabel.
// Ingresos y bajas sin registrador se atribuyen a "Sistema"; un id desconocido se muestra tal cual.
func ResolvePerformers(records []entity.MovementRecord, employees map[string]entity.Employee, items map[string]entity.Item) {
	for i := range records {
		r := &records[i]
		if it, ok := items[r.ItemID]; ok {
			r.ItemLabel = it.Label
		} else if r.ItemLabel == "" {
			r.ItemLabel = r.ItemID
		}
		switch {
		case r.PerformerID == "":
			r.PerformerLabel = entity.SystemPerformer
		default:
			if e, ok := employees[r.PerformerID]; ok {
				r.PerformerLabel = e.FullName
			} else {
				r.PerformerLabel = r.PerformerID
			}
		}
	}
}
