package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchRow fila de entrada de un lote tal como llega del formulario.
// Quantity llega como decimal y se valida que sea entero positivo.
type BatchRow struct {
	ItemID        string
	Quantity      decimal.Decimal
	ExpiryDate    *time.Time
	LotNumber     string
	UnitCost      *decimal.Decimal
	Remarks       string
	EmployeeID    string
	Purpose       string
	ReceiptNumber string

	// Texto recibido que no pudo interpretarse; la validación lo informa como error de la fila.
	MalformedQuantity string
	MalformedExpiry   string
	MalformedUnitCost string
}

// BatchMeta metadatos comunes a todas las filas del lote.
type BatchMeta struct {
	OccurredAt    time.Time // cero = momento del commit
	Supplier      string
	Reference     string
	Remarks       string
	ReceiptNumber string
	RecordedBy    string // employee_id del usuario autenticado
}

// Batch lote completo a confirmar atómicamente.
type Batch struct {
	Kind EntryKind
	Rows []BatchRow
	Meta BatchMeta
}

// ItemIDs ids referenciados por las filas (en orden, con repetidos).
func (b Batch) ItemIDs() []string {
	ids := make([]string, 0, len(b.Rows))
	for _, r := range b.Rows {
		ids = append(ids, r.ItemID)
	}
	return ids
}
