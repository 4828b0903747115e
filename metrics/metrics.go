// Package metrics exposes the engine's runtime counters over Prometheus, the
// way a long-running fuzzing worker would surface progress to an operator
// without scraping log lines.
package metrics

import (
	"github.com/VividCortex/gohistogram"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry groups every metric a worker reports. Callers construct one per
// process and pass it down instead of reaching for prometheus's default
// registerer directly, so tests can use an isolated registry.
type Registry struct {
	Registerer prometheus.Registerer

	ProgramsGenerated prometheus.Counter
	MutationsApplied  *prometheus.CounterVec
	CorpusSize        prometheus.Gauge
	Crashes           prometheus.Counter
	ExecDuration      prometheus.Histogram

	mu            programLengthHist
	coverPerInput programLengthHist
}

// programLengthHist wraps a gohistogram streaming histogram behind a mutex-
// free, single-writer usage contract (callers serialize their own Add calls,
// matching how a single generator goroutine drives it).
type programLengthHist struct {
	h *gohistogram.NumericHistogram
}

// NewRegistry builds and registers every metric against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		Registerer: reg,
		ProgramsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flicker",
			Name:      "programs_generated_total",
			Help:      "Number of programs produced by the generator.",
		}),
		MutationsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flicker",
			Name:      "mutations_applied_total",
			Help:      "Mutations applied, partitioned by mutator kind and outcome.",
		}, []string{"mutator", "result"}),
		CorpusSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flicker",
			Name:      "corpus_size",
			Help:      "Number of programs currently retained in the corpus.",
		}),
		Crashes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flicker",
			Name:      "crashes_total",
			Help:      "Number of executions that ended in a crash.",
		}),
		ExecDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flicker",
			Name:      "exec_duration_seconds",
			Help:      "Wall-clock duration of one program execution.",
			Buckets:   prometheus.DefBuckets,
		}),
		mu:            programLengthHist{h: gohistogram.NewHistogram(64)},
		coverPerInput: programLengthHist{h: gohistogram.NewHistogram(64)},
	}
	reg.MustRegister(r.ProgramsGenerated, r.MutationsApplied, r.CorpusSize, r.Crashes, r.ExecDuration)
	return r
}

// ObserveProgramLength records a generated/mutated program's call count in
// the streaming length histogram.
func (r *Registry) ObserveProgramLength(calls int) {
	r.mu.h.Add(float64(calls))
}

// ProgramLengthQuantile returns the q-th quantile (0..1) of observed program
// lengths so far.
func (r *Registry) ProgramLengthQuantile(q float64) float64 {
	return r.mu.h.Quantile(q)
}

// ObserveCoverPerInput records the number of new edges one execution found.
func (r *Registry) ObserveCoverPerInput(edges int) {
	r.coverPerInput.h.Add(float64(edges))
}

// CoverPerInputQuantile returns the q-th quantile (0..1) of new-edge counts.
func (r *Registry) CoverPerInputQuantile(q float64) float64 {
	return r.coverPerInput.h.Quantile(q)
}
