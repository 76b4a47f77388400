package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistererRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegisterer(registry)

	if m.TransactionsRecorded == nil || m.HTTPRequests == nil || m.PaymentsRegistered == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.TransfersCompleted.Inc()
	m.TransactionsRecorded.WithLabelValues("INGRESO").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}

	if got := testutil.ToFloat64(m.TransfersCompleted); got != 1 {
		t.Errorf("expected transfers counter 1, got %v", got)
	}
}

func TestNewWithRegistererIsolatedRegistries(t *testing.T) {
	a := NewWithRegisterer(prometheus.NewRegistry())
	b := NewWithRegisterer(prometheus.NewRegistry())

	a.TransfersCompleted.Inc()

	if got := testutil.ToFloat64(b.TransfersCompleted); got != 0 {
		t.Errorf("registries must not share counters, got %v", got)
	}
}
