package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ReservationMetrics tracks stock moving between available, reserved and sold.
type ReservationMetrics struct {
	reserved  prometheus.Counter
	released  *prometheus.CounterVec
	consumed  prometheus.Counter
	conflicts *prometheus.CounterVec
	rejected  prometheus.Counter
}

// NewReservationMetrics registers the reservation metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewReservationMetrics(reg prometheus.Registerer) *ReservationMetrics {
	if reg == nil {
		return &ReservationMetrics{}
	}
	reserved := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_reserved_units_total",
		Help:      "Units moved from available to reserved by cart holds.",
	})
	released := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_released_units_total",
		Help:      "Units returned to available stock, by reason.",
	}, []string{"reason"})
	consumed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_consumed_units_total",
		Help:      "Reserved units converted into sales at checkout.",
	})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_reservation_conflicts_total",
		Help:      "Concurrent cart updates that had to be retried or rejected.",
	}, []string{"kind"})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_over_requests_total",
		Help:      "Add-to-cart requests rejected for exceeding available stock.",
	})
	reg.MustRegister(reserved, released, consumed, conflicts, rejected)
	return &ReservationMetrics{
		reserved:  reserved,
		released:  released,
		consumed:  consumed,
		conflicts: conflicts,
		rejected:  rejected,
	}
}

func (m *ReservationMetrics) AddReserved(units int) {
	if m == nil || m.reserved == nil || units <= 0 {
		return
	}
	m.reserved.Add(float64(units))
}

func (m *ReservationMetrics) AddReleased(reason string, units int) {
	if m == nil || m.released == nil || units <= 0 {
		return
	}
	m.released.WithLabelValues(normalizeLabel(reason)).Add(float64(units))
}

func (m *ReservationMetrics) AddConsumed(units int) {
	if m == nil || m.consumed == nil || units <= 0 {
		return
	}
	m.consumed.Add(float64(units))
}

// IncConflict counts a lost race; kind is "line" for a stale line quantity,
// "stock" for a reservation that lost the available-quantity guard and
// "transaction" for a deadlock or serialization abort.
func (m *ReservationMetrics) IncConflict(kind string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *ReservationMetrics) IncRejected() {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.Inc()
}
