package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/cartreserve-backend/pkg/enums"
	"github.com/angelmondragon/cartreserve-backend/pkg/metrics"
)

func TestMetricsServerExposesReleasedUnits(t *testing.T) {
	registry := prometheus.NewRegistry()
	reservations := metrics.NewReservationMetrics(registry)
	reservations.AddReleased(enums.ReleaseExpired.String(), 3)

	srv := newMetricsServer(":0", registry)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `cartreserve_reservation_released_units_total{reason="expired"} 3`) {
		t.Fatalf("released units missing from scrape:\n%s", body)
	}
}

func TestLockNameDefaultsToLocal(t *testing.T) {
	if got := lockName(""); got != "cron-worker:local" {
		t.Fatalf("unexpected lock name %q", got)
	}
	if got := lockName("prod"); got != "cron-worker:prod" {
		t.Fatalf("unexpected lock name %q", got)
	}
}
