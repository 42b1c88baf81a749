package entity

import "github.com/shopspring/decimal"

// StockStatus clasificación del saldo frente al punto de reorden.
type StockStatus string

const (
	StockStatusLow        StockStatus = "low"
	StockStatusSufficient StockStatus = "sufficient"
)

// ParseStockStatus valida el filtro de estado ("" = sin filtro).
func ParseStockStatus(s string) (StockStatus, bool) {
	switch StockStatus(s) {
	case "", StockStatusLow, StockStatusSufficient:
		return StockStatus(s), true
	}
	return "", false
}

// StockTotals sumas por ítem de las tres corrientes del ledger.
// ValuedQuantity/ValuedTotal solo cubren ingresos con costo unitario informado.
type StockTotals struct {
	ItemID         string
	Received       int64
	Removed        int64
	Consumed       int64
	ValuedQuantity int64
	ValuedTotal    decimal.Decimal
}

// Current stock actual = ingresos - bajas - consumos.
func (t StockTotals) Current() int64 {
	return t.Received - t.Removed - t.Consumed
}

// CurrentBalance saldo derivado (no persistido) de un ítem.
type CurrentBalance struct {
	ItemID          string
	Label           string
	SectionID       string
	Unit            string
	ReorderLevel    int64
	TotalReceived   int64
	TotalRemoved    int64
	TotalConsumed   int64
	CurrentStock    int64
	Status          StockStatus
	AverageUnitCost decimal.Decimal
	StockValue      decimal.Decimal
}

// BalanceFilter filtros del listado de saldos.
type BalanceFilter struct {
	SectionID string
	Search    string
	Status    StockStatus
}
