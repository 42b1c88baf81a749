package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/labstock-api/internal/application/ports"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// CommitObserver publica en Prometheus los resultados del committer de lotes.
type CommitObserver struct {
	commits  *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ ports.CommitObserver = (*CommitObserver)(nil)

// NewCommitObserver registra las métricas en reg.
func NewCommitObserver(reg prometheus.Registerer) (*CommitObserver, error) {
	o := &CommitObserver{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labstock",
			Name:      "batch_commits_total",
			Help:      "Lotes procesados por tipo y resultado.",
		}, []string{"kind", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labstock",
			Name:      "batch_commit_retries_total",
			Help:      "Reintentos por conflicto de serialización.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "labstock",
			Name:      "batch_commit_duration_seconds",
			Help:      "Duración del commit de un lote, reintentos incluidos.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{o.commits, o.retries, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// NewRegistry registro propio con los colectores de proceso y runtime de Go.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (o *CommitObserver) ObserveCommit(kind entity.EntryKind, outcome string, elapsed time.Duration) {
	o.commits.WithLabelValues(string(kind), outcome).Inc()
	o.duration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

func (o *CommitObserver) ObserveRetry(kind entity.EntryKind) {
	o.retries.WithLabelValues(string(kind)).Inc()
}
