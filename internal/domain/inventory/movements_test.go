package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
)

func mv(id string, kind entity.EntryKind, at time.Time) entity.MovementRecord {
	return entity.MovementRecord{EntryID: id, Kind: kind, ItemID: "X", Quantity: 1, OccurredAt: at}
}

func entryIDs(recs []entity.MovementRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.EntryID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Merge del historial: occurred_at desc, tipo, entry_id.
// ──────────────────────────────────────────────────────────────────────────────

func TestMergeMovements_OrdenYDesempate(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	received := []entity.MovementRecord{mv("r2", entity.EntryKindReceived, t0.Add(time.Hour)), mv("r1", entity.EntryKindReceived, t0)}
	removed := []entity.MovementRecord{mv("d1", entity.EntryKindRemoved, t0)}
	consumed := []entity.MovementRecord{mv("c2", entity.EntryKindConsumed, t0), mv("c1", entity.EntryKindConsumed, t0)}

	got := inventory.MergeMovements(received, removed, consumed)

	assert.Equal(t, []string{"r2", "r1", "d1", "c1", "c2"}, entryIDs(got))
}

func TestMergeMovements_NoModificaLasEntradas(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	unsorted := []entity.MovementRecord{mv("c2", entity.EntryKindConsumed, t0), mv("c1", entity.EntryKindConsumed, t0.Add(time.Hour))}
	streams := [][]entity.MovementRecord{unsorted}

	got := inventory.MergeMovements(streams...)

	assert.Equal(t, []string{"c1", "c2"}, entryIDs(got))
	assert.Equal(t, []string{"c2", "c1"}, entryIDs(streams[0]), "la corriente del llamador queda intacta")
	assert.Equal(t, []string{"c2", "c1"}, entryIDs(unsorted))
}

func TestMergeMovements_Vacio(t *testing.T) {
	assert.Empty(t, inventory.MergeMovements(nil, nil, nil))
}

func TestPageMovements(t *testing.T) {
	t0 := time.Now()
	all := []entity.MovementRecord{mv("a", entity.EntryKindReceived, t0), mv("b", entity.EntryKindReceived, t0), mv("c", entity.EntryKindReceived, t0)}

	assert.Equal(t, []string{"b", "c"}, entryIDs(inventory.PageMovements(all, 1, 5)))
	assert.Empty(t, inventory.PageMovements(all, 3, 5))
	assert.Empty(t, inventory.PageMovements(all, 0, 0))
}

func TestResolvePerformers(t *testing.T) {
	recs := []entity.MovementRecord{
		{Kind: entity.EntryKindReceived, ItemID: "X"},
		{Kind: entity.EntryKindRemoved, ItemID: "X", PerformerID: "E1"},
		{Kind: entity.EntryKindConsumed, ItemID: "GONE", PerformerID: "E9"},
	}
	employees := map[string]entity.Employee{"E1": {ID: "E1", FullName: "Ana Pérez"}}
	items := map[string]entity.Item{"X": {ID: "X", Label: "Tubo EDTA"}}

	inventory.ResolvePerformers(recs, employees, items)

	require.Len(t, recs, 3)
	assert.Equal(t, entity.SystemPerformer, recs[0].PerformerLabel)
	assert.Equal(t, "Tubo EDTA", recs[0].ItemLabel)
	assert.Equal(t, "Ana Pérez", recs[1].PerformerLabel)
	assert.Equal(t, "E9", recs[2].PerformerLabel)
	assert.Equal(t, "GONE", recs[2].ItemLabel)
}
