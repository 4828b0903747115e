package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryRegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.ProgramsGenerated.Inc()
	r.Crashes.Inc()
	r.CorpusSize.Set(5)
	r.MutationsApplied.WithLabelValues("Splice", "Mutated").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestProgramLengthQuantileTracksObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	for i := 1; i <= 100; i++ {
		r.ObserveProgramLength(i)
	}
	q := r.ProgramLengthQuantile(0.5)
	require.Greater(t, q, 0.0)
	require.Less(t, q, 101.0)
}

func TestCoverPerInputQuantile(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	for i := 0; i < 20; i++ {
		r.ObserveCoverPerInput(i * 2)
	}
	require.GreaterOrEqual(t, r.CoverPerInputQuantile(0.9), 0.0)
}
