// seed_catalog genera el script SQL idempotente del catálogo (secciones, ítems, empleados)
// a partir de un archivo YAML. Con -sqlite carga el catálogo directamente en la base embebida.
//
// Uso: go run ./cmd/seed_catalog [-out archivo.sql] [-sqlite labstock.db] [catalogo.yaml]
// Por defecto lee catalog.yaml y escribe internal/infrastructure/postgres/migrations/900_seed_catalog.sql
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/labstock-api/internal/infrastructure/sqlite"
)

func main() {
	outPath := flag.String("out", "", "archivo SQL de salida")
	sqlitePath := flag.String("sqlite", "", "cargar el catálogo en esta base SQLite en lugar de generar SQL")
	flag.Parse()

	yamlPath := "catalog.yaml"
	if flag.NArg() > 0 {
		yamlPath = flag.Arg(0)
	}
	f, err := os.Open(yamlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir YAML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	cat, err := parseCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Catálogo inválido: %v\n", err)
		os.Exit(1)
	}
	sections, items, employees := cat.entities()

	if *sqlitePath != "" {
		ctx := context.Background()
		db, err := sqlite.Open(ctx, *sqlitePath, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Abrir SQLite: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := sqlite.SeedCatalog(ctx, db, sections, items, employees); err != nil {
			fmt.Fprintf(os.Stderr, "Cargar catálogo: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cargado %s: %d secciones, %d ítems, %d empleados\n", *sqlitePath, len(sections), len(items), len(employees))
		return
	}

	if *outPath == "" {
		*outPath = filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "900_seed_catalog.sql")
	}
	out, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear SQL: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := writeSQL(out, sections, items, employees); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d secciones, %d ítems, %d empleados\n", *outPath, len(sections), len(items), len(employees))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
