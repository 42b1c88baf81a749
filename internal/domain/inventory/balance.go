package inventory

import "github.com/jhoicas/labstock-api/internal/domain/entity"

// Classify clasifica el saldo: bajo si current <= reorderLevel (el límite cuenta como bajo).
func Classify(currentStock, reorderLevel int64) entity.StockStatus {
	if currentStock <= reorderLevel {
		return entity.StockStatusLow
	}
	return entity.StockStatusSufficient
}

// BuildBalance combina el ítem del catálogo con los totales del ledger.
// Un ítem sin movimientos tiene totales en cero.
func BuildBalance(item entity.Item, totals entity.StockTotals) entity.CurrentBalance {
	current := totals.Current()
	avg := AverageUnitCost(totals.ValuedQuantity, totals.ValuedTotal)
	return entity.CurrentBalance{
		ItemID:          item.ID,
		Label:           item.Label,
		SectionID:       item.SectionID,
		Unit:            item.Unit,
		ReorderLevel:    item.ReorderLevel,
		TotalReceived:   totals.Received,
		TotalRemoved:    totals.Removed,
		TotalConsumed:   totals.Consumed,
		CurrentStock:    current,
		Status:          Classify(current, item.ReorderLevel),
		AverageUnitCost: avg,
		StockValue:      StockValue(current, avg),
	}
}

// OrphanItemIDs devuelve los ids presentes en los totales del ledger que no existen en el catálogo.
func OrphanItemIDs(totals map[string]entity.StockTotals, catalog map[string]entity.Item) []string {
	var orphans []string
	for id := range totals {
		if _, ok := catalog[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	return orphans
}
