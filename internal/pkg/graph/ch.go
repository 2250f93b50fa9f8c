package graph

import (
	"fmt"
	"math"
	"sync"

	"github.com/LdDl/ch"
)

// CHRouter answers queries with contraction hierarchies. Parallel edges are
// collapsed to the cheapest one (lowest id on ties) before contraction, and
// the vertex path returned by the hierarchy is mapped back to those edges.
type CHRouter[L any] struct {
	graph    *DirectedWeightedGraph[L]
	cheapest map[[2]VertexID]EdgeID

	mu        sync.Mutex
	hierarchy ch.Graph
}

// NewCHRouter freezes g and runs the contraction. It is considerably slower
// to build than NewDijkstraRouter but answers queries without per-source trees.
func NewCHRouter[L any](g *DirectedWeightedGraph[L]) (*CHRouter[L], error) {
	r := &CHRouter[L]{
		graph:    g,
		cheapest: make(map[[2]VertexID]EdgeID, g.EdgeCount()),
	}

	for v := 0; v < g.VertexCount(); v++ {
		if err := r.hierarchy.CreateVertex(int64(v)); err != nil {
			return nil, fmt.Errorf("ch vertex %d: %w", v, err)
		}
	}

	for id, e := range g.edges {
		key := [2]VertexID{e.From, e.To}
		if prev, ok := r.cheapest[key]; ok && g.edges[prev].Weight <= e.Weight {
			continue
		}
		r.cheapest[key] = EdgeID(id)
	}

	// Insert in edge id order so contraction input is reproducible.
	for id, e := range g.edges {
		if r.cheapest[[2]VertexID{e.From, e.To}] != EdgeID(id) {
			continue
		}
		if err := r.hierarchy.AddEdge(int64(e.From), int64(e.To), e.Weight); err != nil {
			return nil, fmt.Errorf("ch edge %d: %w", id, err)
		}
	}

	r.hierarchy.PrepareContractionHierarchies()
	return r, nil
}

// BuildRoute returns a minimum-weight path from one vertex to another.
func (r *CHRouter[L]) BuildRoute(from, to VertexID) (RouteInfo, bool) {
	if !r.graph.valid(from) || !r.graph.valid(to) {
		return RouteInfo{}, false
	}
	if from == to {
		return RouteInfo{}, true
	}

	r.mu.Lock()
	cost, path := r.hierarchy.ShortestPath(int64(from), int64(to))
	r.mu.Unlock()

	if cost < 0 || math.IsInf(cost, 1) || len(path) < 2 {
		return RouteInfo{}, false
	}

	info := RouteInfo{Edges: make([]EdgeID, 0, len(path)-1)}
	for i := 1; i < len(path); i++ {
		id, ok := r.cheapest[[2]VertexID{VertexID(path[i-1]), VertexID(path[i])}]
		if !ok {
			return RouteInfo{}, false
		}
		info.Edges = append(info.Edges, id)
		info.Weight += r.graph.edges[id].Weight
	}
	return info, true
}
