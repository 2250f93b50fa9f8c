package routing

import (
	"fmt"

	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/pkg/graph"
)

// Plan is FindRoute rendered as an itinerary. It returns ErrStopNotFound when
// either stop is unknown and ErrNoRoute when no path connects them.
func (r *Router) Plan(from, to string) (domain.Itinerary, error) {
	if _, ok := r.stopIDs[from]; !ok {
		return domain.Itinerary{}, fmt.Errorf("from %q: %w", from, domain.ErrStopNotFound)
	}
	if _, ok := r.stopIDs[to]; !ok {
		return domain.Itinerary{}, fmt.Errorf("to %q: %w", to, domain.ErrStopNotFound)
	}

	info, ok := r.FindRoute(from, to)
	if !ok {
		return domain.Itinerary{}, fmt.Errorf("%q -> %q: %w", from, to, domain.ErrNoRoute)
	}
	return r.Itinerary(from, to, info), nil
}

// Itinerary converts a path of this router's graph into legs.
func (r *Router) Itinerary(from, to string, info graph.RouteInfo) domain.Itinerary {
	it := domain.Itinerary{
		From: from,
		To:   to,
		Legs: make([]domain.ItineraryLeg, 0, len(info.Edges)),
	}
	for _, id := range info.Edges {
		e := r.graph.Edge(id)
		leg := domain.ItineraryLeg{Time: e.Weight}
		switch e.Label.Kind {
		case KindWait:
			leg.Kind = domain.LegWait
			leg.StopName = e.Label.StopName
		case KindRide:
			leg.Kind = domain.LegRide
			leg.Bus = e.Label.Bus
			leg.SpanCount = e.Label.SpanCount
		}
		it.TotalTime += e.Weight
		it.Legs = append(it.Legs, leg)
	}
	return it
}
