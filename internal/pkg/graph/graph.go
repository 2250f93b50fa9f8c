// Package graph provides a directed weighted graph and shortest-path solvers
// over it. Edges carry an opaque label that solvers pass through untouched.
package graph

import (
	"errors"
	"fmt"
	"math"
)

type (
	VertexID int
	EdgeID   int
)

var (
	ErrVertexOutOfRange = errors.New("vertex out of range")
	ErrNegativeWeight   = errors.New("negative edge weight")
)

// Edge is a directed weighted edge carrying a label of type L.
type Edge[L any] struct {
	From   VertexID
	To     VertexID
	Weight float64
	Label  L
}

// DirectedWeightedGraph holds a fixed set of vertices and an append-only list
// of edges. Edge ids are assigned in insertion order.
type DirectedWeightedGraph[L any] struct {
	edges    []Edge[L]
	incident [][]EdgeID
}

// New creates a graph with vertexCount vertices and no edges.
func New[L any](vertexCount int) *DirectedWeightedGraph[L] {
	return &DirectedWeightedGraph[L]{
		incident: make([][]EdgeID, vertexCount),
	}
}

// AddEdge appends an edge and returns its id.
func (g *DirectedWeightedGraph[L]) AddEdge(e Edge[L]) (EdgeID, error) {
	if !g.valid(e.From) || !g.valid(e.To) {
		return 0, fmt.Errorf("edge %d -> %d: %w", e.From, e.To, ErrVertexOutOfRange)
	}
	if e.Weight < 0 || math.IsNaN(e.Weight) {
		return 0, fmt.Errorf("edge %d -> %d weight %v: %w", e.From, e.To, e.Weight, ErrNegativeWeight)
	}
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, e)
	g.incident[e.From] = append(g.incident[e.From], id)
	return id, nil
}

// Edge returns the edge with the given id.
func (g *DirectedWeightedGraph[L]) Edge(id EdgeID) Edge[L] {
	return g.edges[id]
}

// IncidentEdges returns the ids of the edges leaving v, in insertion order.
func (g *DirectedWeightedGraph[L]) IncidentEdges(v VertexID) []EdgeID {
	return g.incident[v]
}

// VertexCount returns the number of vertices.
func (g *DirectedWeightedGraph[L]) VertexCount() int { return len(g.incident) }

// EdgeCount returns the number of edges.
func (g *DirectedWeightedGraph[L]) EdgeCount() int { return len(g.edges) }

func (g *DirectedWeightedGraph[L]) valid(v VertexID) bool {
	return v >= 0 && int(v) < len(g.incident)
}

// RouteInfo is a shortest path: its total weight and the edges along it.
type RouteInfo struct {
	Weight float64
	Edges  []EdgeID
}

// Solver answers shortest-path queries over a frozen graph.
type Solver interface {
	BuildRoute(from, to VertexID) (RouteInfo, bool)
}
