package sqlite

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jhoicas/labstock-api/internal/domain"
)

// mapError traduce códigos SQLite a errores de dominio.
// BUSY/LOCKED equivalen a un conflicto de serialización: el committer reintenta.
func mapError(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	code := se.Code()
	switch {
	case code&0xff == sqlite3.SQLITE_BUSY, code&0xff == sqlite3.SQLITE_LOCKED:
		return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
	case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: %v", domain.ErrItemNotFound, err)
	case code == sqlite3.SQLITE_CONSTRAINT_CHECK:
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return err
}
