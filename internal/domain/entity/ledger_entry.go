package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind tipo de movimiento del ledger (cada tipo vive en su propia tabla append-only).
type EntryKind string

const (
	EntryKindReceived EntryKind = "received" // ingreso de stock
	EntryKindRemoved  EntryKind = "removed"  // baja (vencido, dañado, devolución)
	EntryKindConsumed EntryKind = "consumed" // consumo en el laboratorio
)

// EntryKinds en el orden de desempate del historial.
var EntryKinds = []EntryKind{EntryKindReceived, EntryKindRemoved, EntryKindConsumed}

// ParseEntryKind valida el tipo recibido desde la API.
func ParseEntryKind(s string) (EntryKind, error) {
	k := EntryKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("tipo de movimiento desconocido %q", s)
	}
	return k, nil
}

// Valid informa si el tipo es uno de los tres soportados.
func (k EntryKind) Valid() bool {
	return k == EntryKindReceived || k == EntryKindRemoved || k == EntryKindConsumed
}

// Rank posición del tipo en la clave compuesta (occurred_at desc, kind, entry_id).
func (k EntryKind) Rank() int {
	switch k {
	case EntryKindReceived:
		return 0
	case EntryKindRemoved:
		return 1
	case EntryKindConsumed:
		return 2
	}
	return 3
}

// Sign +1 para ingresos, -1 para bajas y consumos.
func (k EntryKind) Sign() int64 {
	if k == EntryKindReceived {
		return 1
	}
	return -1
}

// DrawsStock informa si el tipo descuenta stock (requiere validar saldo).
func (k EntryKind) DrawsStock() bool {
	return k == EntryKindRemoved || k == EntryKindConsumed
}

// ReceivedEntry ingreso de stock. Campos string vacíos se persisten como NULL.
type ReceivedEntry struct {
	ID         string
	BatchID    string
	ItemID     string
	Quantity   int64
	ReceivedAt time.Time
	ExpiryDate *time.Time
	Supplier   string
	Reference  string
	Remarks    string
	LotNumber  string
	UnitCost   *decimal.Decimal
	RecordedBy string // employee_id de quien registró (vacío = sistema)
	CreatedAt  time.Time
}

// RemovedEntry baja de stock.
type RemovedEntry struct {
	ID         string
	BatchID    string
	ItemID     string
	Quantity   int64
	RemovedAt  time.Time
	Reference  string
	Remarks    string
	RecordedBy string
	CreatedAt  time.Time
}

// ConsumedEntry consumo de stock por un empleado con un propósito.
type ConsumedEntry struct {
	ID            string
	BatchID       string
	ItemID        string
	Quantity      int64
	ConsumedAt    time.Time
	EmployeeID    string
	Purpose       string
	ReceiptNumber string
	CreatedAt     time.Time
}
