//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/transitcat/internal/adapters/http"
	"github.com/samirrijal/transitcat/internal/adapters/postgres"
	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/core/snapshot"
	"github.com/samirrijal/transitcat/internal/core/usecases"
	"github.com/samirrijal/transitcat/internal/pkg/config"
	"github.com/samirrijal/transitcat/internal/pkg/render"
)

// setupTestDB connects to the test database and applies the schema.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("transitcat-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "001_network_tables.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	return &postgres.DB{Pool: pool}
}

func integrationDocument() *domain.NetworkDocument {
	return &domain.NetworkDocument{
		Stops: []domain.StopRecord{
			{Name: "Moyua", Latitude: 43.2630, Longitude: -2.9350, RoadDistances: map[string]int{"Abando": 600}},
			{Name: "Abando", Latitude: 43.2610, Longitude: -2.9280, RoadDistances: map[string]int{"Casco Viejo": 900}},
			{Name: "Casco Viejo", Latitude: 43.2590, Longitude: -2.9230, RoadDistances: map[string]int{"Moyua": 1700}},
		},
		Routes: []domain.RouteRecord{
			{Name: "A1", Stops: []string{"Moyua", "Abando", "Casco Viejo", "Moyua"}, IsRoundtrip: true},
		},
	}
}

// TestNetworkRepo_Integration_RoundTrip saves a document and rebuilds a snapshot from the tables.
func TestNetworkRepo_Integration_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	repo := postgres.NewNetworkRepo(db)
	ctx := context.Background()

	if err := repo.Save(ctx, integrationDocument()); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Stops) != 3 || len(loaded.Routes) != 1 {
		t.Fatalf("unexpected document: %d stops, %d routes", len(loaded.Stops), len(loaded.Routes))
	}
	if got := loaded.Routes[0].Stops; len(got) != 4 || got[0] != "Moyua" || got[3] != "Moyua" {
		t.Errorf("stop order not preserved: %v", got)
	}

	snap, err := snapshot.Build(ctx, loaded, snapshot.Options{
		Settings: domain.RoutingSettings{BusWaitTime: 2, BusVelocity: 30},
	})
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}

	network := usecases.NewNetworkService(snap, nil, 0)
	app := setupApp(&http.Dependencies{
		Network:  network,
		Requests: usecases.NewRequestService(network, render.DefaultSettings()),
		Render:   render.DefaultSettings(),
		DB:       db,
	})

	req := httptest.NewRequest("GET", "/v1/routes/A1", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var route domain.RouteDetail
	if err := json.NewDecoder(resp.Body).Decode(&route); err != nil {
		t.Fatal(err)
	}
	if route.Stats.RouteLength != 3200 {
		t.Errorf("expected route length 3200, got %d", route.Stats.RouteLength)
	}

	req = httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Errorf("expected ready with database, got %d", resp.StatusCode)
	}
}
