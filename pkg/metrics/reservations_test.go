package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestReservationMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReservationMetrics(reg)

	m.AddReserved(3)
	m.AddReserved(0)
	m.AddReleased("expired", 2)
	m.AddReleased("removed", 1)
	m.AddConsumed(4)
	m.IncConflict("line")
	m.IncConflict("line")
	m.IncRejected()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	checks := []struct {
		name  string
		label string
		value string
		want  float64
	}{
		{name: "cartreserve_reservation_reserved_units_total", want: 3},
		{name: "cartreserve_reservation_released_units_total", label: "reason", value: "expired", want: 2},
		{name: "cartreserve_reservation_released_units_total", label: "reason", value: "removed", want: 1},
		{name: "cartreserve_reservation_consumed_units_total", want: 4},
		{name: "cartreserve_cart_reservation_conflicts_total", label: "kind", value: "line", want: 2},
		{name: "cartreserve_reservation_over_requests_total", want: 1},
	}
	for _, c := range checks {
		got, err := fetchCounterValue(mfs, c.name, c.label, c.value)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s{%s=%s}: expected %v, got %v", c.name, c.label, c.value, c.want, got)
		}
	}
}
