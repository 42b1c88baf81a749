package entity

import "time"

// SystemPerformer etiqueta usada cuando un ingreso/baja no tiene empleado registrador.
const SystemPerformer = "Sistema"

// MovementRecord proyección de solo lectura de un movimiento para el historial unificado.
type MovementRecord struct {
	EntryID            string
	BatchID            string
	Kind               EntryKind
	ItemID             string
	ItemLabel          string
	Quantity           int64 // siempre positivo; el sentido lo da Kind
	OccurredAt         time.Time
	PerformerID        string
	PerformerLabel     string
	ReferenceOrPurpose string
	Remarks            string
}

// SignedQuantity cantidad con signo para presentación (+ ingreso, - baja/consumo).
func (m MovementRecord) SignedQuantity() int64 {
	return m.Kind.Sign() * m.Quantity
}

// MovementFilter filtros del historial. From/To inclusivos.
type MovementFilter struct {
	From   *time.Time
	To     *time.Time
	ItemID string
}

// MovementPage página de resultados del historial.
type MovementPage struct {
	Items  []MovementRecord
	Total  int
	Limit  int
	Offset int
}
