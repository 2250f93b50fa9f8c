package graph_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/samirrijal/transitcat/internal/pkg/graph"
)

// diamond builds 0->1->3 (cost 2) and 0->2->3 (cost 2) plus 3->4 (cost 0).
// Vertex 5 is isolated.
func diamond(t *testing.T) *graph.DirectedWeightedGraph[string] {
	t.Helper()
	g := graph.New[string](6)
	edges := []graph.Edge[string]{
		{From: 0, To: 1, Weight: 1, Label: "a"},
		{From: 1, To: 3, Weight: 1, Label: "b"},
		{From: 0, To: 2, Weight: 1, Label: "c"},
		{From: 2, To: 3, Weight: 1, Label: "d"},
		{From: 3, To: 4, Weight: 0, Label: "e"},
		{From: 0, To: 4, Weight: 5, Label: "f"},
	}
	for _, e := range edges {
		if _, err := g.AddEdge(e); err != nil {
			t.Fatalf("add edge: %v", err)
		}
	}
	return g
}

func labels(g *graph.DirectedWeightedGraph[string], ids []graph.EdgeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.Edge(id).Label
	}
	return out
}

func TestGraph_AddEdge_Validation(t *testing.T) {
	g := graph.New[string](2)
	if _, err := g.AddEdge(graph.Edge[string]{From: 0, To: 2}); !errors.Is(err, graph.ErrVertexOutOfRange) {
		t.Errorf("expected ErrVertexOutOfRange, got %v", err)
	}
	if _, err := g.AddEdge(graph.Edge[string]{From: 0, To: 1, Weight: -1}); !errors.Is(err, graph.ErrNegativeWeight) {
		t.Errorf("expected ErrNegativeWeight, got %v", err)
	}
	id, err := g.AddEdge(graph.Edge[string]{From: 1, To: 0, Weight: 3, Label: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if id != 0 || g.EdgeCount() != 1 || g.VertexCount() != 2 {
		t.Errorf("unexpected graph state: id=%d edges=%d vertices=%d", id, g.EdgeCount(), g.VertexCount())
	}
	if got := g.IncidentEdges(1); len(got) != 1 || got[0] != id {
		t.Errorf("expected edge %d incident to vertex 1, got %v", id, got)
	}
}

func TestDijkstra_ShortestPath(t *testing.T) {
	g := diamond(t)
	r := graph.NewDijkstraRouter(g)

	info, ok := r.BuildRoute(0, 4)
	if !ok {
		t.Fatal("expected a route")
	}
	if info.Weight != 2 {
		t.Errorf("expected weight 2, got %v", info.Weight)
	}
	// Ties are broken towards the lower vertex id: 0->1->3->4.
	got := labels(g, info.Edges)
	want := []string{"a", "b", "e"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDijkstra_Deterministic(t *testing.T) {
	g := diamond(t)
	first, _ := graph.NewDijkstraRouter(g).BuildRoute(0, 4)
	for i := 0; i < 10; i++ {
		again, _ := graph.NewDijkstraRouter(g).BuildRoute(0, 4)
		if len(again.Edges) != len(first.Edges) {
			t.Fatalf("run %d: path length changed", i)
		}
		for j := range again.Edges {
			if again.Edges[j] != first.Edges[j] {
				t.Fatalf("run %d: path changed", i)
			}
		}
	}
}

func TestDijkstra_Unreachable(t *testing.T) {
	r := graph.NewDijkstraRouter(diamond(t))
	if _, ok := r.BuildRoute(0, 5); ok {
		t.Error("expected no route to isolated vertex")
	}
	if _, ok := r.BuildRoute(4, 0); ok {
		t.Error("expected no route against edge direction")
	}
	if _, ok := r.BuildRoute(0, 42); ok {
		t.Error("expected no route to unknown vertex")
	}
}

func TestDijkstra_SameVertex(t *testing.T) {
	r := graph.NewDijkstraRouter(diamond(t))
	info, ok := r.BuildRoute(3, 3)
	if !ok || info.Weight != 0 || len(info.Edges) != 0 {
		t.Errorf("expected empty zero-weight route, got %+v ok=%v", info, ok)
	}
}

func TestDijkstra_ZeroWeightEdges(t *testing.T) {
	g := graph.New[string](3)
	_, _ = g.AddEdge(graph.Edge[string]{From: 0, To: 1, Weight: 0, Label: "wait"})
	_, _ = g.AddEdge(graph.Edge[string]{From: 1, To: 2, Weight: 0, Label: "ride"})
	info, ok := graph.NewDijkstraRouter(g).BuildRoute(0, 2)
	if !ok || info.Weight != 0 || len(info.Edges) != 2 {
		t.Errorf("expected two zero-weight edges, got %+v ok=%v", info, ok)
	}
}

func TestDijkstra_ConcurrentQueries(t *testing.T) {
	g := diamond(t)
	r := graph.NewDijkstraRouter(g)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, ok := r.BuildRoute(0, 4)
			if !ok || info.Weight != 2 {
				t.Errorf("unexpected result %+v ok=%v", info, ok)
			}
		}()
	}
	wg.Wait()
}

func TestCH_MatchesDijkstra(t *testing.T) {
	g := graph.New[string](6)
	edges := []graph.Edge[string]{
		{From: 0, To: 1, Weight: 4},
		{From: 0, To: 2, Weight: 1},
		{From: 2, To: 1, Weight: 2},
		{From: 1, To: 3, Weight: 1},
		{From: 2, To: 3, Weight: 5},
		{From: 3, To: 4, Weight: 3},
		{From: 0, To: 4, Weight: 20},
		{From: 0, To: 4, Weight: 15},
	}
	for _, e := range edges {
		if _, err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}

	chr, err := graph.NewCHRouter(g)
	if err != nil {
		t.Fatalf("build ch: %v", err)
	}
	dr := graph.NewDijkstraRouter(g)

	for from := 0; from < 6; from++ {
		for to := 0; to < 6; to++ {
			want, wantOK := dr.BuildRoute(graph.VertexID(from), graph.VertexID(to))
			got, gotOK := chr.BuildRoute(graph.VertexID(from), graph.VertexID(to))
			if wantOK != gotOK {
				t.Fatalf("%d->%d: reachability differs: dijkstra=%v ch=%v", from, to, wantOK, gotOK)
			}
			if math.Abs(want.Weight-got.Weight) > 1e-9 {
				t.Errorf("%d->%d: dijkstra=%v ch=%v", from, to, want.Weight, got.Weight)
			}
			var sum float64
			for _, id := range got.Edges {
				sum += g.Edge(id).Weight
			}
			if math.Abs(sum-got.Weight) > 1e-9 {
				t.Errorf("%d->%d: edge weights sum to %v, reported %v", from, to, sum, got.Weight)
			}
		}
	}
}
