package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/labstock-api/internal/domain"
)

func TestMapError(t *testing.T) {
	serialization := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "40001", Message: "could not serialize access"})
	assert.True(t, errors.Is(mapError(serialization), domain.ErrConcurrencyConflict))

	deadlock := &pgconn.PgError{Code: "40P01"}
	assert.True(t, errors.Is(mapError(deadlock), domain.ErrConcurrencyConflict))

	fk := &pgconn.PgError{Code: "23503", Detail: "Key (item_id)=(X) is not present"}
	assert.True(t, errors.Is(mapError(fk), domain.ErrItemNotFound))

	check := &pgconn.PgError{Code: "23514", ConstraintName: "stock_received_quantity_check"}
	assert.True(t, errors.Is(mapError(check), domain.ErrValidation))

	other := errors.New("conexión cerrada")
	assert.Equal(t, other, mapError(other))

	batchErr := domain.NewBatchError(domain.ErrInsufficientStock, []domain.RowError{{Index: 0}})
	assert.Equal(t, batchErr, mapError(batchErr))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "lote-7", nullIfEmpty("lote-7"))
}
