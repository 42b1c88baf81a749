package ports

import (
	"time"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// Resultados de un intento de commit de lote.
const (
	CommitOutcomeCommitted = "committed"
	CommitOutcomeRejected  = "rejected"
	CommitOutcomeConflict  = "conflict"
	CommitOutcomeError     = "error"
)

// CommitObserver puerto de métricas del committer (Prometheus en producción).
type CommitObserver interface {
	ObserveCommit(kind entity.EntryKind, outcome string, elapsed time.Duration)
	ObserveRetry(kind entity.EntryKind)
}

// NopObserver descarta las observaciones.
type NopObserver struct{}

func (NopObserver) ObserveCommit(entity.EntryKind, string, time.Duration) {}
func (NopObserver) ObserveRetry(entity.EntryKind)                         {}
