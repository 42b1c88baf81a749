package main

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// catalogFile formato del YAML de catálogo.
type catalogFile struct {
	Sections []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"sections"`
	Items []struct {
		ID           string `yaml:"id"`
		Label        string `yaml:"label"`
		Section      string `yaml:"section"`
		Unit         string `yaml:"unit"`
		ReorderLevel int64  `yaml:"reorder_level"`
	} `yaml:"items"`
	Employees []struct {
		ID       string `yaml:"id"`
		FullName string `yaml:"full_name"`
		Active   *bool  `yaml:"active"` // ausente = activo
	} `yaml:"employees"`
}

// parseCatalog decodifica y valida referencias e ids repetidos.
func parseCatalog(r io.Reader) (*catalogFile, error) {
	var c catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decodificar: %w", err)
	}
	sections := make(map[string]bool, len(c.Sections))
	for _, s := range c.Sections {
		if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("sección sin id o nombre")
		}
		if sections[s.ID] {
			return nil, fmt.Errorf("sección repetida %q", s.ID)
		}
		sections[s.ID] = true
	}
	items := make(map[string]bool, len(c.Items))
	for _, it := range c.Items {
		if strings.TrimSpace(it.ID) == "" || strings.TrimSpace(it.Label) == "" {
			return nil, fmt.Errorf("ítem sin id o etiqueta")
		}
		if items[it.ID] {
			return nil, fmt.Errorf("ítem repetido %q", it.ID)
		}
		items[it.ID] = true
		if !sections[it.Section] {
			return nil, fmt.Errorf("ítem %q: sección %q inexistente", it.ID, it.Section)
		}
		if it.ReorderLevel < 0 {
			return nil, fmt.Errorf("ítem %q: reorder_level negativo", it.ID)
		}
	}
	employees := make(map[string]bool, len(c.Employees))
	for _, e := range c.Employees {
		if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.FullName) == "" {
			return nil, fmt.Errorf("empleado sin id o nombre")
		}
		if employees[e.ID] {
			return nil, fmt.Errorf("empleado repetido %q", e.ID)
		}
		employees[e.ID] = true
	}
	return &c, nil
}

func (c *catalogFile) entities() ([]entity.Section, []entity.Item, []entity.Employee) {
	sections := make([]entity.Section, 0, len(c.Sections))
	for _, s := range c.Sections {
		sections = append(sections, entity.Section{ID: s.ID, Name: s.Name})
	}
	items := make([]entity.Item, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, entity.Item{
			ID: it.ID, Label: it.Label, SectionID: it.Section, Unit: it.Unit, ReorderLevel: it.ReorderLevel,
		})
	}
	employees := make([]entity.Employee, 0, len(c.Employees))
	for _, e := range c.Employees {
		active := e.Active == nil || *e.Active
		employees = append(employees, entity.Employee{ID: e.ID, FullName: e.FullName, Active: active})
	}
	return sections, items, employees
}

// writeSQL escribe INSERT ... ON CONFLICT DO UPDATE para que el seed sea re-ejecutable.
func writeSQL(w io.Writer, sections []entity.Section, items []entity.Item, employees []entity.Employee) error {
	var b strings.Builder
	b.WriteString("-- Seed del catálogo generado por cmd/seed_catalog. Re-ejecutable.\n\n")

	b.WriteString("-- 1. Secciones\n")
	for _, s := range sections {
		fmt.Fprintf(&b, "INSERT INTO sections (section_id, name) VALUES ('%s', '%s')\n", escapeSQL(s.ID), escapeSQL(s.Name))
		b.WriteString("ON CONFLICT (section_id) DO UPDATE SET name = EXCLUDED.name;\n")
	}

	b.WriteString("\n-- 2. Ítems\n")
	for _, it := range items {
		fmt.Fprintf(&b, "INSERT INTO items (item_id, label, section_id, unit, reorder_level) VALUES ('%s', '%s', '%s', '%s', %d)\n",
			escapeSQL(it.ID), escapeSQL(it.Label), escapeSQL(it.SectionID), escapeSQL(it.Unit), it.ReorderLevel)
		b.WriteString("ON CONFLICT (item_id) DO UPDATE SET label = EXCLUDED.label, section_id = EXCLUDED.section_id, unit = EXCLUDED.unit, reorder_level = EXCLUDED.reorder_level;\n")
	}

	b.WriteString("\n-- 3. Empleados\n")
	for _, e := range employees {
		fmt.Fprintf(&b, "INSERT INTO employees (employee_id, full_name, active) VALUES ('%s', '%s', %t)\n",
			escapeSQL(e.ID), escapeSQL(e.FullName), e.Active)
		b.WriteString("ON CONFLICT (employee_id) DO UPDATE SET full_name = EXCLUDED.full_name, active = EXCLUDED.active;\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
