// Package sqlite implementa los puertos del ledger sobre SQLite embebido (driver puro Go).
// Pensado para despliegues de un solo nodo y para las pruebas de integración.
package sqlite

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jhoicas/labstock-api/pkg/logger"
)

//go:embed schema.sql
var schema string

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Open abre (o crea) la base, aplica PRAGMAs y el esquema embebido.
// Una sola conexión: las transacciones quedan serializadas y ":memory:" conserva su estado.
func Open(ctx context.Context, path string, log *logger.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("aplicar esquema: %w", err)
	}
	if log != nil {
		log.Info().Str("path", path).Msg("ledger SQLite listo")
	}
	return db, nil
}

func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }
