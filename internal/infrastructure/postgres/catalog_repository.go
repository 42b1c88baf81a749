package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var (
	_ repository.ItemRepository     = (*ItemRepo)(nil)
	_ repository.SectionRepository  = (*SectionRepo)(nil)
	_ repository.EmployeeRepository = (*EmployeeRepo)(nil)
)

const itemColumns = `item_id, label, section_id, unit, reorder_level`

// ItemRepo lectura del catálogo de ítems sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// List devuelve el catálogo ordenado por etiqueta.
func (r *ItemRepo) List(ctx context.Context, sectionID string) ([]entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE ($1 = '' OR section_id = $1) ORDER BY label, item_id`
	return r.query(ctx, "list items", query, sectionID)
}

// GetByIDs devuelve los ítems existentes entre ids.
func (r *ItemRepo) GetByIDs(ctx context.Context, ids []string) ([]entity.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE item_id = ANY($1) ORDER BY item_id`
	return r.query(ctx, "get items", query, ids)
}

// LockByIDs SELECT ... FOR UPDATE en orden de item_id: dos lotes que tocan el mismo ítem se serializan.
func (r *ItemRepo) LockByIDs(ctx context.Context, ids []string) ([]entity.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE item_id = ANY($1) ORDER BY item_id FOR UPDATE`
	return r.query(ctx, "lock items", query, ids)
}

func (r *ItemRepo) query(ctx context.Context, op, query string, args ...any) ([]entity.Item, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Item, error) {
		var it entity.Item
		err := row.Scan(&it.ID, &it.Label, &it.SectionID, &it.Unit, &it.ReorderLevel)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// SectionRepo lectura de secciones.
type SectionRepo struct {
	q Querier
}

// NewSectionRepository construye el adaptador.
func NewSectionRepository(q Querier) *SectionRepo {
	return &SectionRepo{q: q}
}

// List secciones ordenadas por nombre.
func (r *SectionRepo) List(ctx context.Context) ([]entity.Section, error) {
	rows, err := r.q.Query(ctx, `SELECT section_id, name FROM sections ORDER BY name, section_id`)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Section, error) {
		var s entity.Section
		err := row.Scan(&s.ID, &s.Name)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return list, nil
}

// EmployeeRepo lectura de empleados.
type EmployeeRepo struct {
	q Querier
}

// NewEmployeeRepository construye el adaptador.
func NewEmployeeRepository(q Querier) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

// List empleados ordenados por nombre.
func (r *EmployeeRepo) List(ctx context.Context, activeOnly bool) ([]entity.Employee, error) {
	query := `SELECT employee_id, full_name, active FROM employees WHERE (NOT $1 OR active) ORDER BY full_name, employee_id`
	return r.query(ctx, "list employees", query, activeOnly)
}

// GetByIDs empleados existentes entre ids (activos o no).
func (r *EmployeeRepo) GetByIDs(ctx context.Context, ids []string) ([]entity.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT employee_id, full_name, active FROM employees WHERE employee_id = ANY($1) ORDER BY employee_id`
	return r.query(ctx, "get employees", query, ids)
}

func (r *EmployeeRepo) query(ctx context.Context, op, query string, args ...any) ([]entity.Employee, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Employee, error) {
		var e entity.Employee
		err := row.Scan(&e.ID, &e.FullName, &e.Active)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
