// Package routing builds the routing graph of a transit network and answers
// minimum-time itinerary queries by stop name.
package routing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/samirrijal/transitcat/internal/core/catalogue"
	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/pkg/graph"
)

var (
	ErrAlreadyBuilt    = errors.New("router already built")
	ErrInvalidSettings = errors.New("invalid routing settings")
	ErrUnknownEngine   = errors.New("unknown routing engine")
)

// Engine selects the shortest-path solver.
type Engine string

const (
	EngineDijkstra Engine = "dijkstra"
	EngineCH       Engine = "ch"
)

var validate = validator.New()

// Router binds stop names to routing-graph vertices. A Router starts unbuilt
// and becomes built exactly once through Build.
type Router struct {
	settings domain.RoutingSettings
	engine   Engine

	graph   *Graph
	stopIDs map[string]graph.VertexID
	solver  graph.Solver
}

// NewRouter returns an unbuilt router.
func NewRouter(settings domain.RoutingSettings, engine Engine) (*Router, error) {
	if err := validate.Struct(settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	switch engine {
	case "":
		engine = EngineDijkstra
	case EngineDijkstra, EngineCH:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	return &Router{settings: settings, engine: engine}, nil
}

// ParseEngine maps a configuration string to an Engine.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(s))); e {
	case "", EngineDijkstra:
		return EngineDijkstra, nil
	case EngineCH:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
	}
}

// Build materialises the routing graph and solver from a finished catalogue.
// The catalogue must not change afterwards; a changed network needs a new Router.
func (r *Router) Build(cat *catalogue.Catalogue) error {
	if r.Built() {
		return ErrAlreadyBuilt
	}

	g, stopIDs, err := BuildGraph(cat, r.settings)
	if err != nil {
		return fmt.Errorf("build routing graph: %w", err)
	}

	var solver graph.Solver
	switch r.engine {
	case EngineCH:
		chr, err := graph.NewCHRouter(g)
		if err != nil {
			return fmt.Errorf("build contraction hierarchies: %w", err)
		}
		solver = chr
	default:
		solver = graph.NewDijkstraRouter(g)
	}

	r.graph, r.stopIDs, r.solver = g, stopIDs, solver
	return nil
}

// Built reports whether Build has completed.
func (r *Router) Built() bool { return r.solver != nil }

// Settings returns the timing parameters.
func (r *Router) Settings() domain.RoutingSettings { return r.settings }

// Engine returns the configured solver.
func (r *Router) Engine() Engine { return r.engine }

// Graph exposes the routing graph so callers can read edge labels of a path.
// It is nil until the router is built.
func (r *Router) Graph() *Graph { return r.graph }

// VertexOf returns the "waiting" vertex of a stop.
func (r *Router) VertexOf(stop string) (graph.VertexID, bool) {
	v, ok := r.stopIDs[stop]
	return v, ok
}

// FindRoute returns the minimum-time path between two stops. Unknown stop
// names and unreachable stops both report false; Plan tells them apart.
func (r *Router) FindRoute(from, to string) (graph.RouteInfo, bool) {
	if !r.Built() {
		return graph.RouteInfo{}, false
	}
	vFrom, ok := r.stopIDs[from]
	if !ok {
		return graph.RouteInfo{}, false
	}
	vTo, ok := r.stopIDs[to]
	if !ok {
		return graph.RouteInfo{}, false
	}
	return r.solver.BuildRoute(vFrom, vTo)
}
