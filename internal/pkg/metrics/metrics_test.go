package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/samirrijal/transitcat/internal/pkg/metrics"
)

type fakeStat struct{ acquired, idle, total int32 }

func (s fakeStat) AcquiredConns() int32 { return s.acquired }
func (s fakeStat) IdleConns() int32     { return s.idle }
func (s fakeStat) TotalConns() int32    { return s.total }

func TestObserveGraph(t *testing.T) {
	metrics.ObserveGraph(8, 10, 5*time.Millisecond)
	if got := testutil.ToFloat64(metrics.GraphVertices); got != 8 {
		t.Errorf("expected 8 vertices, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.GraphEdges); got != 10 {
		t.Errorf("expected 10 edges, got %v", got)
	}
}

func TestUpdateDBPoolMetrics(t *testing.T) {
	metrics.UpdateDBPoolMetrics(fakeStat{acquired: 2, idle: 3, total: 5})
	if got := testutil.ToFloat64(metrics.DBPoolConnsOpen); got != 5 {
		t.Errorf("expected 5 open conns, got %v", got)
	}

	// Unknown stat types are ignored.
	metrics.UpdateDBPoolMetrics("not a pool")
	if got := testutil.ToFloat64(metrics.DBPoolConnsOpen); got != 5 {
		t.Errorf("expected open conns unchanged, got %v", got)
	}
}

func TestHandler_ExposesTransitMetrics(t *testing.T) {
	metrics.RoutingQueries.WithLabelValues(metrics.OutcomeFound).Inc()

	app := fiber.New()
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `transitcat_routing_queries_total{outcome="found"}`) {
		t.Errorf("routing counter missing from exposition")
	}
}
