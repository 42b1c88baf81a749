package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/labstock-api/internal/domain"
)

// Códigos SQLSTATE relevantes para el ledger.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
)

// mapError traduce errores del driver a errores de dominio, conservando el original en el mensaje.
// Errores que no son de PostgreSQL se devuelven sin cambios.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %s", domain.ErrConcurrencyConflict, pgErr.Message)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, pgErr.Detail)
	case codeCheckViolation:
		return fmt.Errorf("%w: %s", domain.ErrValidation, pgErr.ConstraintName)
	}
	return err
}

// nullIfEmpty persiste "" como NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
