package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción SQLite.
// Con una sola conexión abierta, las transacciones concurrentes esperan su turno.
type TxRunner struct {
	db *sqlx.DB
}

// NewTxRunner construye el runner.
func NewTxRunner(db *sqlx.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Dentro de fn solo deben usarse los repos recibidos: la conexión única la tiene la tx.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ledgerRepo repository.LedgerRepository,
	itemRepo repository.ItemRepository,
	employeeRepo repository.EmployeeRepository,
) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", mapError(err))
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(NewLedgerRepository(tx), NewItemRepository(tx), NewEmployeeRepository(tx)); err != nil {
		return mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapError(err))
	}
	return nil
}
