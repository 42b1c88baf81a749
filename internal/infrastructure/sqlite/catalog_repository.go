package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var (
	_ repository.ItemRepository     = (*ItemRepo)(nil)
	_ repository.SectionRepository  = (*SectionRepo)(nil)
	_ repository.EmployeeRepository = (*EmployeeRepo)(nil)
)

type itemRow struct {
	ID           string `db:"item_id"`
	Label        string `db:"label"`
	SectionID    string `db:"section_id"`
	Unit         string `db:"unit"`
	ReorderLevel int64  `db:"reorder_level"`
}

func (r itemRow) toEntity() entity.Item {
	return entity.Item{ID: r.ID, Label: r.Label, SectionID: r.SectionID, Unit: r.Unit, ReorderLevel: r.ReorderLevel}
}

type sectionRow struct {
	ID   string `db:"section_id"`
	Name string `db:"name"`
}

type employeeRow struct {
	ID       string `db:"employee_id"`
	FullName string `db:"full_name"`
	Active   bool   `db:"active"`
}

// ItemRepo lectura del catálogo de ítems (usable con *sqlx.DB o *sqlx.Tx).
type ItemRepo struct {
	q sqlx.ExtContext
}

// NewItemRepository construye el adaptador.
func NewItemRepository(q sqlx.ExtContext) *ItemRepo {
	return &ItemRepo{q: q}
}

// List devuelve el catálogo ordenado por etiqueta.
func (r *ItemRepo) List(ctx context.Context, sectionID string) ([]entity.Item, error) {
	var rows []itemRow
	query := `SELECT item_id, label, section_id, unit, reorder_level FROM items
		WHERE (? = '' OR section_id = ?) ORDER BY label, item_id`
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, sectionID, sectionID); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return toItems(rows), nil
}

// GetByIDs devuelve los ítems existentes entre ids.
func (r *ItemRepo) GetByIDs(ctx context.Context, ids []string) ([]entity.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT item_id, label, section_id, unit, reorder_level FROM items
		WHERE item_id IN (?) ORDER BY item_id`, ids)
	if err != nil {
		return nil, err
	}
	var rows []itemRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, r.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return toItems(rows), nil
}

// LockByIDs en SQLite la transacción ya tiene la única conexión de escritura; basta con leer.
func (r *ItemRepo) LockByIDs(ctx context.Context, ids []string) ([]entity.Item, error) {
	return r.GetByIDs(ctx, ids)
}

func toItems(rows []itemRow) []entity.Item {
	out := make([]entity.Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out
}

// SectionRepo lectura de secciones.
type SectionRepo struct {
	q sqlx.ExtContext
}

// NewSectionRepository construye el adaptador.
func NewSectionRepository(q sqlx.ExtContext) *SectionRepo {
	return &SectionRepo{q: q}
}

// List secciones ordenadas por nombre.
func (r *SectionRepo) List(ctx context.Context) ([]entity.Section, error) {
	var rows []sectionRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, `SELECT section_id, name FROM sections ORDER BY name, section_id`); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	out := make([]entity.Section, 0, len(rows))
	for _, s := range rows {
		out = append(out, entity.Section{ID: s.ID, Name: s.Name})
	}
	return out, nil
}

// EmployeeRepo lectura de empleados.
type EmployeeRepo struct {
	q sqlx.ExtContext
}

// NewEmployeeRepository construye el adaptador.
func NewEmployeeRepository(q sqlx.ExtContext) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

// List empleados ordenados por nombre.
func (r *EmployeeRepo) List(ctx context.Context, activeOnly bool) ([]entity.Employee, error) {
	var rows []employeeRow
	query := `SELECT employee_id, full_name, active FROM employees WHERE (? = 0 OR active = 1) ORDER BY full_name, employee_id`
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, activeOnly); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return toEmployees(rows), nil
}

// GetByIDs empleados existentes entre ids.
func (r *EmployeeRepo) GetByIDs(ctx context.Context, ids []string) ([]entity.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT employee_id, full_name, active FROM employees WHERE employee_id IN (?) ORDER BY employee_id`, ids)
	if err != nil {
		return nil, err
	}
	var rows []employeeRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, r.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get employees: %w", err)
	}
	return toEmployees(rows), nil
}

func toEmployees(rows []employeeRow) []entity.Employee {
	out := make([]entity.Employee, 0, len(rows))
	for _, e := range rows {
		out = append(out, entity.Employee{ID: e.ID, FullName: e.FullName, Active: e.Active})
	}
	return out
}

// SeedCatalog inserta o actualiza el catálogo de referencia (pruebas y cmd/seed_catalog).
func SeedCatalog(ctx context.Context, db *sqlx.DB, sections []entity.Section, items []entity.Item, employees []entity.Employee) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range sections {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO sections (section_id, name) VALUES (:section_id, :name)
			ON CONFLICT (section_id) DO UPDATE SET name = excluded.name`, sectionRow{ID: s.ID, Name: s.Name}); err != nil {
			return fmt.Errorf("seed section %s: %w", s.ID, err)
		}
	}
	for _, it := range items {
		row := itemRow{ID: it.ID, Label: it.Label, SectionID: it.SectionID, Unit: it.Unit, ReorderLevel: it.ReorderLevel}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO items (item_id, label, section_id, unit, reorder_level)
			VALUES (:item_id, :label, :section_id, :unit, :reorder_level)
			ON CONFLICT (item_id) DO UPDATE SET label = excluded.label, section_id = excluded.section_id,
				unit = excluded.unit, reorder_level = excluded.reorder_level`, row); err != nil {
			return fmt.Errorf("seed item %s: %w", it.ID, err)
		}
	}
	for _, e := range employees {
		row := employeeRow{ID: e.ID, FullName: e.FullName, Active: e.Active}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO employees (employee_id, full_name, active)
			VALUES (:employee_id, :full_name, :active)
			ON CONFLICT (employee_id) DO UPDATE SET full_name = excluded.full_name, active = excluded.active`, row); err != nil {
			return fmt.Errorf("seed employee %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}
