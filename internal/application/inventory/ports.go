package inventory

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad del lote: si fn devuelve error no queda ninguna fila escrita.
// Los conflictos de serialización se devuelven como domain.ErrConcurrencyConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledgerRepo repository.LedgerRepository,
		itemRepo repository.ItemRepository,
		employeeRepo repository.EmployeeRepository,
	) error) error
}
