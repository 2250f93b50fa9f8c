// Package catalogue stores the stops, routes and road distances of a transit
// network and derives per-route statistics from them.
//
// Stops and routes live in arenas (slices) and refer to each other by stable
// index, so a route can never outlive the stops it references.
package catalogue

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samirrijal/transitcat/internal/core/domain"
)

var (
	ErrDuplicateStop  = errors.New("duplicate stop")
	ErrDuplicateRoute = errors.New("duplicate route")
	ErrUnknownStop    = errors.New("unknown stop")
	ErrEmptyName      = errors.New("empty name")
	ErrEmptyRoute     = errors.New("route has no stops")
	ErrNilRoute       = errors.New("nil route")
	ErrNegativeLength = errors.New("negative distance")
)

type stopPair struct {
	from, to domain.StopID
}

// Catalogue owns every stop and route of a network.
// It is populated once during load and treated as read-only afterwards.
type Catalogue struct {
	stops  []domain.Stop
	routes []domain.Route

	stopIndex  map[string]domain.StopID
	routeIndex map[string]int

	distances map[stopPair]int
}

// New creates an empty Catalogue.
func New() *Catalogue {
	return &Catalogue{
		stopIndex:  make(map[string]domain.StopID),
		routeIndex: make(map[string]int),
		distances:  make(map[stopPair]int),
	}
}

// AddStop registers a new stop. Adding a name twice is rejected.
func (c *Catalogue) AddStop(name string, location domain.GeoPoint) error {
	if name == "" {
		return fmt.Errorf("add stop: %w", ErrEmptyName)
	}
	if _, ok := c.stopIndex[name]; ok {
		return fmt.Errorf("add stop %q: %w", name, ErrDuplicateStop)
	}
	id := domain.StopID(len(c.stops))
	c.stops = append(c.stops, domain.Stop{
		ID:       id,
		Name:     name,
		Location: location,
		Buses:    make(map[string]struct{}),
	})
	c.stopIndex[name] = id
	return nil
}

// AddRoute registers a new route over already known stops and records the
// route number on each of them.
func (c *Catalogue) AddRoute(number string, stopNames []string, isRoundtrip bool) error {
	if number == "" {
		return fmt.Errorf("add route: %w", ErrEmptyName)
	}
	if _, ok := c.routeIndex[number]; ok {
		return fmt.Errorf("add route %q: %w", number, ErrDuplicateRoute)
	}
	if len(stopNames) == 0 {
		return fmt.Errorf("add route %q: %w", number, ErrEmptyRoute)
	}

	ids := make([]domain.StopID, len(stopNames))
	for i, name := range stopNames {
		id, ok := c.stopIndex[name]
		if !ok {
			return fmt.Errorf("add route %q: stop %q: %w", number, name, ErrUnknownStop)
		}
		ids[i] = id
	}

	for _, id := range ids {
		c.stops[id].Buses[number] = struct{}{}
	}
	c.routeIndex[number] = len(c.routes)
	c.routes = append(c.routes, domain.Route{
		Number:      number,
		Stops:       ids,
		IsRoundtrip: isRoundtrip,
	})
	return nil
}

// FindStop looks a stop up by exact name.
func (c *Catalogue) FindStop(name string) (*domain.Stop, bool) {
	id, ok := c.stopIndex[name]
	if !ok {
		return nil, false
	}
	return &c.stops[id], true
}

// FindRoute looks a route up by exact number.
func (c *Catalogue) FindRoute(number string) (*domain.Route, bool) {
	i, ok := c.routeIndex[number]
	if !ok {
		return nil, false
	}
	return &c.routes[i], true
}

// Stop returns the stop stored at id. It panics on an id not issued by this catalogue.
func (c *Catalogue) Stop(id domain.StopID) *domain.Stop {
	return &c.stops[id]
}

// RouteStops resolves the stop sequence of a route.
func (c *Catalogue) RouteStops(r *domain.Route) []*domain.Stop {
	out := make([]*domain.Stop, len(r.Stops))
	for i, id := range r.Stops {
		out[i] = &c.stops[id]
	}
	return out
}

// SetDistance stores the road distance from one stop to another, in that
// direction only. A second call for the same pair overwrites the first.
func (c *Catalogue) SetDistance(from, to string, meters int) error {
	if meters < 0 {
		return fmt.Errorf("distance %q -> %q: %w", from, to, ErrNegativeLength)
	}
	f, ok := c.stopIndex[from]
	if !ok {
		return fmt.Errorf("distance from %q: %w", from, ErrUnknownStop)
	}
	t, ok := c.stopIndex[to]
	if !ok {
		return fmt.Errorf("distance %q -> %q: %w", from, to, ErrUnknownStop)
	}
	c.distances[stopPair{f, t}] = meters
	return nil
}

// LookupDistance returns the distance from one stop to another, falling back
// to the reverse direction. ok is false when neither direction is known.
func (c *Catalogue) LookupDistance(from, to domain.StopID) (meters int, ok bool) {
	if d, found := c.distances[stopPair{from, to}]; found {
		return d, true
	}
	if d, found := c.distances[stopPair{to, from}]; found {
		return d, true
	}
	return 0, false
}

// Distance is LookupDistance with unknown pairs collapsed to 0 meters.
func (c *Catalogue) Distance(from, to domain.StopID) int {
	d, _ := c.LookupDistance(from, to)
	return d
}

// DistanceByName resolves both names and returns Distance. Unknown names yield 0.
func (c *Catalogue) DistanceByName(from, to string) int {
	f, ok := c.stopIndex[from]
	if !ok {
		return 0
	}
	t, ok := c.stopIndex[to]
	if !ok {
		return 0
	}
	return c.Distance(f, t)
}

// StopCount returns the number of stops.
func (c *Catalogue) StopCount() int { return len(c.stops) }

// RouteCount returns the number of routes.
func (c *Catalogue) RouteCount() int { return len(c.routes) }

// SortedStops returns all stops ordered by name.
func (c *Catalogue) SortedStops() []*domain.Stop {
	out := make([]*domain.Stop, len(c.stops))
	for i := range c.stops {
		out[i] = &c.stops[i]
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SortedRoutes returns all routes ordered by number.
func (c *Catalogue) SortedRoutes() []*domain.Route {
	out := make([]*domain.Route, len(c.routes))
	for i := range c.routes {
		out[i] = &c.routes[i]
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
