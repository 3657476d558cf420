package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWith(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWith(reg)

	m.EngineOps.WithLabelValues("add").Inc()
	m.EngineOps.WithLabelValues("add").Inc()
	m.CacheHits.Inc()

	if got := testutil.ToFloat64(m.EngineOps.WithLabelValues("add")); got != 2 {
		t.Errorf("expected 2 engine ops, got %v", got)
	}

	if got := testutil.ToFloat64(m.CacheHits); got != 1 {
		t.Errorf("expected 1 cache hit, got %v", got)
	}

	// A second registry must not collide with the first.
	if m2 := NewWith(prometheus.NewRegistry()); m2 == nil {
		t.Fatal("expected metrics instance")
	}
}
