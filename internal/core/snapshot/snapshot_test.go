package snapshot_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/core/routing"
	"github.com/samirrijal/transitcat/internal/core/snapshot"
)

var defaults = snapshot.Options{
	Settings: domain.RoutingSettings{BusWaitTime: 6, BusVelocity: 40},
}

func document() *domain.NetworkDocument {
	return &domain.NetworkDocument{
		Stops: []domain.StopRecord{
			{Name: "A", Latitude: 0, Longitude: 0, RoadDistances: map[string]int{"B": 1000}},
			{Name: "B", Latitude: 0, Longitude: 1, RoadDistances: map[string]int{"C": 1000}},
			{Name: "C", Latitude: 0, Longitude: 2},
			{Name: "D", Latitude: 5, Longitude: 5},
		},
		Routes: []domain.RouteRecord{
			{Name: "1", Stops: []string{"A", "B", "C", "A"}, IsRoundtrip: true},
		},
	}
}

func TestBuild_LoadsAndRoutes(t *testing.T) {
	snap, err := snapshot.Build(context.Background(), document(), defaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.ID == uuid.Nil {
		t.Error("expected a snapshot id")
	}

	stats, err := snap.Catalogue.RouteInfoByNumber("1")
	if err != nil {
		t.Fatalf("route info: %v", err)
	}
	if stats.StopsCount != 4 || stats.UniqueStopsCount != 3 || stats.RouteLength != 2000 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	it, err := snap.Router.Plan("A", "C")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if math.Abs(it.TotalTime-9) > 1e-9 {
		t.Errorf("expected 9 minutes, got %v", it.TotalTime)
	}
}

func TestBuild_DocumentSettingsWin(t *testing.T) {
	doc := document()
	doc.Routing = &domain.RoutingSettings{BusWaitTime: 2, BusVelocity: 20}

	snap, err := snapshot.Build(context.Background(), doc, defaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := snap.Router.Settings(); got != *doc.Routing {
		t.Errorf("expected document settings, got %+v", got)
	}
}

func TestBuild_Summary(t *testing.T) {
	opts := defaults
	opts.Engine = routing.EngineCH

	snap, err := snapshot.Build(context.Background(), document(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := snap.Summary()
	if sum.Stops != 4 || sum.Routes != 1 {
		t.Errorf("unexpected counts: %+v", sum)
	}
	if sum.Vertices != 8 || sum.Edges != 10 {
		t.Errorf("unexpected graph size: %d vertices, %d edges", sum.Vertices, sum.Edges)
	}
	if sum.Engine != "ch" {
		t.Errorf("expected engine ch, got %q", sum.Engine)
	}
	if sum.SnapshotID != snap.ID.String() {
		t.Errorf("summary id mismatch")
	}
	want := domain.Bounds{MinLat: 0, MinLon: 0, MaxLat: 5, MaxLon: 5}
	if sum.Bounds == nil || *sum.Bounds != want {
		t.Errorf("expected bounds %+v, got %+v", want, sum.Bounds)
	}
}

func TestBuild_Rejections(t *testing.T) {
	cases := map[string]func(*domain.NetworkDocument){
		"dangling route stop": func(d *domain.NetworkDocument) {
			d.Routes = append(d.Routes, domain.RouteRecord{Name: "2", Stops: []string{"A", "Z"}})
		},
		"dangling distance": func(d *domain.NetworkDocument) {
			d.Stops[2].RoadDistances = map[string]int{"Z": 10}
		},
		"duplicate stop": func(d *domain.NetworkDocument) {
			d.Stops = append(d.Stops, domain.StopRecord{Name: "A"})
		},
		"duplicate route": func(d *domain.NetworkDocument) {
			d.Routes = append(d.Routes, d.Routes[0])
		},
		"missing stop name": func(d *domain.NetworkDocument) {
			d.Stops[0].Name = ""
		},
		"empty route": func(d *domain.NetworkDocument) {
			d.Routes[0].Stops = nil
		},
		"negative distance": func(d *domain.NetworkDocument) {
			d.Stops[0].RoadDistances["B"] = -1
		},
		"latitude out of range": func(d *domain.NetworkDocument) {
			d.Stops[3].Latitude = 91
		},
		"zero velocity": func(d *domain.NetworkDocument) {
			d.Routing = &domain.RoutingSettings{BusWaitTime: 6}
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			doc := document()
			mutate(doc)
			_, err := snapshot.Build(context.Background(), doc, defaults)
			if !errors.Is(err, domain.ErrInvalidNetwork) {
				t.Fatalf("expected ErrInvalidNetwork, got %v", err)
			}
		})
	}
}

func TestBuild_ValidationNamesField(t *testing.T) {
	doc := document()
	doc.Stops[1].Name = ""

	_, err := snapshot.Build(context.Background(), doc, defaults)
	if err == nil || !strings.Contains(err.Error(), "Stops[1].Name") {
		t.Fatalf("expected diagnostic naming Stops[1].Name, got %v", err)
	}
}

func TestBuild_StrictDistances(t *testing.T) {
	opts := defaults
	opts.StrictDistances = true

	_, err := snapshot.Build(context.Background(), document(), opts)
	if !errors.Is(err, snapshot.ErrMissingDistance) {
		t.Fatalf("expected ErrMissingDistance for C -> A, got %v", err)
	}
	if !strings.Contains(err.Error(), "C -> A") {
		t.Errorf("expected offending pair in %q", err.Error())
	}

	doc := document()
	doc.Stops[2].RoadDistances = map[string]int{"A": 1000}
	snap, err := snapshot.Build(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats, _ := snap.Catalogue.RouteInfoByNumber("1")
	if stats.RouteLength != 3000 {
		t.Errorf("expected 3000 m with the closing leg set, got %d", stats.RouteLength)
	}
}

func TestBuild_StrictAllowsColocatedStops(t *testing.T) {
	doc := &domain.NetworkDocument{
		Stops: []domain.StopRecord{
			{Name: "North entrance", Latitude: 1, Longitude: 1},
			{Name: "South entrance", Latitude: 1, Longitude: 1},
		},
		Routes: []domain.RouteRecord{
			{Name: "shuttle", Stops: []string{"North entrance", "South entrance"}},
		},
	}
	opts := defaults
	opts.StrictDistances = true
	if _, err := snapshot.Build(context.Background(), doc, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuild_NilDocument(t *testing.T) {
	if _, err := snapshot.Build(context.Background(), nil, defaults); !errors.Is(err, domain.ErrInvalidNetwork) {
		t.Fatalf("expected ErrInvalidNetwork, got %v", err)
	}
}
