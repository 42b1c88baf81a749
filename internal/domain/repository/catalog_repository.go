package repository

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// ItemRepository puerto de lectura del catálogo de ítems (administrado fuera del ledger).
type ItemRepository interface {
	// List devuelve el catálogo ordenado por etiqueta; sectionID vacío = todas las secciones.
	List(ctx context.Context, sectionID string) ([]entity.Item, error)
	// GetByIDs devuelve los ítems existentes entre ids (los inexistentes se omiten).
	GetByIDs(ctx context.Context, ids []string) ([]entity.Item, error)
	// LockByIDs bloquea las filas de los ítems dentro de la transacción en curso,
	// en orden de id para evitar deadlocks entre lotes concurrentes.
	LockByIDs(ctx context.Context, ids []string) ([]entity.Item, error)
}

// SectionRepository puerto de lectura de secciones.
type SectionRepository interface {
	List(ctx context.Context) ([]entity.Section, error)
}

// EmployeeRepository puerto de lectura de empleados.
type EmployeeRepository interface {
	// List devuelve los empleados ordenados por nombre; activeOnly filtra los inactivos.
	List(ctx context.Context, activeOnly bool) ([]entity.Employee, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Employee, error)
}
