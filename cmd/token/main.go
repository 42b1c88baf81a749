// token emite un JWT de desarrollo para un empleado y rol (el login vive fuera de esta API).
//
// Uso: go run ./cmd/token -employee E1 -role inventario
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/jhoicas/labstock-api/pkg/config"
	"github.com/jhoicas/labstock-api/pkg/jwt"
)

func main() {
	employeeID := flag.String("employee", "", "employee_id del token (requerido)")
	role := flag.String("role", jwt.RoleInventario, "admin | inventario | laboratorista")
	flag.Parse()

	if *employeeID == "" {
		fmt.Fprintln(os.Stderr, "-employee es requerido")
		os.Exit(2)
	}
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *employeeID, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
