package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrValidation           = errors.New("validación de filas fallida")
	ErrDuplicateItemInBatch = errors.New("ítem repetido en el lote")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrItemNotFound         = errors.New("ítem no encontrado en el catálogo")
	ErrConcurrencyConflict  = errors.New("conflicto de concurrencia, intente nuevamente")
)

// Códigos de error por fila (estables, consumidos por la UI para resaltar filas).
const (
	RowCodeMissingItem       = "MISSING_ITEM"
	RowCodeItemNotFound      = "ITEM_NOT_FOUND"
	RowCodeInvalidQuantity   = "INVALID_QUANTITY"
	RowCodeMissingEmployee   = "MISSING_EMPLOYEE"
	RowCodeEmployeeNotFound  = "EMPLOYEE_NOT_FOUND"
	RowCodeMissingPurpose    = "MISSING_PURPOSE"
	RowCodeInvalidExpiry     = "INVALID_EXPIRY"
	RowCodeInvalidUnitCost   = "INVALID_UNIT_COST"
	RowCodeDuplicateItem     = "DUPLICATE_ITEM"
	RowCodeInsufficientStock = "INSUFFICIENT_STOCK"
)

// RowError describe el motivo de rechazo de una fila del lote (índice base 0).
type RowError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchError agrupa los errores por fila de un lote rechazado.
// Cause es uno de ErrValidation, ErrDuplicateItemInBatch, ErrInsufficientStock o ErrItemNotFound.
type BatchError struct {
	Cause error
	Rows  []RowError
}

func (e *BatchError) Error() string {
	if len(e.Rows) == 0 {
		return e.Cause.Error()
	}
	parts := make([]string, 0, len(e.Rows))
	for _, r := range e.Rows {
		parts = append(parts, fmt.Sprintf("fila %d (%s): %s", r.Index, r.Field, r.Message))
	}
	return e.Cause.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap permite errors.Is(err, domain.ErrInsufficientStock), etc.
func (e *BatchError) Unwrap() error { return e.Cause }

// NewBatchError construye el error de lote; devuelve nil si no hay filas con error.
func NewBatchError(cause error, rows []RowError) error {
	if len(rows) == 0 {
		return nil
	}
	return &BatchError{Cause: cause, Rows: rows}
}

// RowErrors extrae los errores por fila de err (nil si err no es un BatchError).
func RowErrors(err error) []RowError {
	var be *BatchError
	if errors.As(err, &be) {
		return be.Rows
	}
	return nil
}

// IntegrityError indica movimientos del ledger que referencian ítems inexistentes en el catálogo.
type IntegrityError struct {
	ItemIDs []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integridad del ledger: movimientos con ítems inexistentes [%s]", strings.Join(e.ItemIDs, ", "))
}

func (e *IntegrityError) Unwrap() error { return ErrItemNotFound }
