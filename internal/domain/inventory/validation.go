package inventory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// MaxRowQuantity límite superior de cantidad por fila.
var MaxRowQuantity = decimal.NewFromInt(1_000_000)

// ValidRow fila que superó la validación estructural, con la cantidad ya convertida.
type ValidRow struct {
	Index    int
	Row      entity.BatchRow
	Quantity int64
}

// ValidateRows aplica la validación estructural por fila.
// items y employees son los registros del catálogo indexados por id.
func ValidateRows(
	kind entity.EntryKind,
	rows []entity.BatchRow,
	occurredAt time.Time,
	items map[string]entity.Item,
	employees map[string]entity.Employee,
) ([]ValidRow, []domain.RowError) {
	var (
		valid []ValidRow
		errs  []domain.RowError
	)
	for i, r := range rows {
		rowErrs := validateRow(kind, i, r, occurredAt, items, employees)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		valid = append(valid, ValidRow{Index: i, Row: r, Quantity: r.Quantity.IntPart()})
	}
	return valid, errs
}

func validateRow(
	kind entity.EntryKind,
	i int,
	r entity.BatchRow,
	occurredAt time.Time,
	items map[string]entity.Item,
	employees map[string]entity.Employee,
) []domain.RowError {
	var errs []domain.RowError
	add := func(field, code, msg string) {
		errs = append(errs, domain.RowError{Index: i, Field: field, Code: code, Message: msg})
	}

	switch {
	case r.ItemID == "":
		add("item_id", domain.RowCodeMissingItem, "seleccione un ítem")
	default:
		if _, ok := items[r.ItemID]; !ok {
			add("item_id", domain.RowCodeItemNotFound, "el ítem no existe en el catálogo")
		}
	}

	switch {
	case r.MalformedQuantity != "":
		add("quantity", domain.RowCodeInvalidQuantity, fmt.Sprintf("cantidad no numérica %s", r.MalformedQuantity))
	case !r.Quantity.IsInteger() || !r.Quantity.IsPositive() || r.Quantity.GreaterThan(MaxRowQuantity):
		add("quantity", domain.RowCodeInvalidQuantity, "la cantidad debe ser un entero positivo")
	}

	switch kind {
	case entity.EntryKindReceived:
		switch {
		case r.MalformedUnitCost != "":
			add("unit_cost", domain.RowCodeInvalidUnitCost, fmt.Sprintf("costo unitario no numérico %s", r.MalformedUnitCost))
		case r.UnitCost != nil && r.UnitCost.IsNegative():
			add("unit_cost", domain.RowCodeInvalidUnitCost, "el costo unitario no puede ser negativo")
		}
		switch {
		case r.MalformedExpiry != "":
			add("expiry_date", domain.RowCodeInvalidExpiry, fmt.Sprintf("fecha inválida %q, use AAAA-MM-DD", r.MalformedExpiry))
		case r.ExpiryDate != nil && dateOnly(*r.ExpiryDate).Before(dateOnly(occurredAt)):
			add("expiry_date", domain.RowCodeInvalidExpiry, "la fecha de vencimiento es anterior a la fecha de ingreso")
		}
	case entity.EntryKindConsumed:
		if r.EmployeeID == "" {
			add("employee_id", domain.RowCodeMissingEmployee, "indique el empleado que consume")
		} else if e, ok := employees[r.EmployeeID]; !ok || !e.Active {
			add("employee_id", domain.RowCodeEmployeeNotFound, "empleado inexistente o inactivo")
		}
		if r.Purpose == "" {
			add("purpose", domain.RowCodeMissingPurpose, "indique el propósito del consumo")
		}
	}
	return errs
}

// CheckExclusivity marca cada fila que repite un ítem ya elegido por una fila anterior del mismo lote.
func CheckExclusivity(rows []entity.BatchRow) []domain.RowError {
	first := make(map[string]int, len(rows))
	var errs []domain.RowError
	for i, r := range rows {
		if r.ItemID == "" {
			continue
		}
		if j, seen := first[r.ItemID]; seen {
			errs = append(errs, domain.RowError{
				Index:   i,
				Field:   "item_id",
				Code:    domain.RowCodeDuplicateItem,
				Message: fmt.Sprintf("el ítem ya fue elegido en la fila %d", j),
			})
			continue
		}
		first[r.ItemID] = i
	}
	return errs
}

// CheckAvailability compara cada fila contra el saldo leído al momento del commit.
// Cada ítem aparece una sola vez en el lote (CheckExclusivity ya se aplicó).
func CheckAvailability(rows []ValidRow, totals map[string]entity.StockTotals) []domain.RowError {
	var errs []domain.RowError
	for _, r := range rows {
		available := totals[r.Row.ItemID].Current()
		if r.Quantity > available {
			errs = append(errs, domain.RowError{
				Index:   r.Index,
				Field:   "quantity",
				Code:    domain.RowCodeInsufficientStock,
				Message: fmt.Sprintf("solicitado %d, disponible %d", r.Quantity, available),
			})
		}
	}
	return errs
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
