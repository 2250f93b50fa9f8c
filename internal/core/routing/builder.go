package routing

import (
	"fmt"

	"github.com/samirrijal/transitcat/internal/core/catalogue"
	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/pkg/graph"
)

// Graph is the routing graph: two vertices per stop, labelled edges.
type Graph = graph.DirectedWeightedGraph[EdgeLabel]

// metersPerMinute converts a velocity in km/h.
func metersPerMinute(kmh float64) float64 {
	return kmh * 1000.0 / 60.0
}

// waitVertex and boardVertex give the two vertices of the k-th stop in name order.
func waitVertex(k int) graph.VertexID  { return graph.VertexID(2 * k) }
func boardVertex(k int) graph.VertexID { return graph.VertexID(2*k + 1) }

// BuildGraph turns a catalogue into the routing graph. Vertex ids follow the
// sorted stop names, so the result does not depend on insertion order.
func BuildGraph(cat *catalogue.Catalogue, settings domain.RoutingSettings) (*Graph, map[string]graph.VertexID, error) {
	stops := cat.SortedStops()
	g := graph.New[EdgeLabel](2 * len(stops))
	stopIDs := make(map[string]graph.VertexID, len(stops))

	for k, stop := range stops {
		stopIDs[stop.Name] = waitVertex(k)
		_, err := g.AddEdge(graph.Edge[EdgeLabel]{
			From:   waitVertex(k),
			To:     boardVertex(k),
			Weight: float64(settings.BusWaitTime),
			Label:  EdgeLabel{Kind: KindWait, StopName: stop.Name},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("wait edge %q: %w", stop.Name, err)
		}
	}

	speed := metersPerMinute(settings.BusVelocity)
	for _, route := range cat.SortedRoutes() {
		if err := addRideEdges(g, cat, route, stopIDs, speed); err != nil {
			return nil, nil, fmt.Errorf("route %q: %w", route.Number, err)
		}
	}

	return g, stopIDs, nil
}

// addRideEdges adds one edge for every pair of positions i < j on the route,
// weighted by the cumulative road distance between them.
func addRideEdges(g *Graph, cat *catalogue.Catalogue, route *domain.Route, stopIDs map[string]graph.VertexID, speed float64) error {
	stops := route.Stops
	for i := 0; i < len(stops); i++ {
		from, ok := stopIDs[cat.Stop(stops[i]).Name]
		if !ok {
			continue
		}

		forward, backward := 0, 0
		for j := i + 1; j < len(stops); j++ {
			forward += cat.Distance(stops[j-1], stops[j])
			backward += cat.Distance(stops[j], stops[j-1])

			to, ok := stopIDs[cat.Stop(stops[j]).Name]
			if !ok {
				continue
			}
			label := EdgeLabel{Kind: KindRide, Bus: route.Number, SpanCount: j - i}

			if _, err := g.AddEdge(graph.Edge[EdgeLabel]{
				From:   from + 1,
				To:     to,
				Weight: float64(forward) / speed,
				Label:  label,
			}); err != nil {
				return err
			}

			if !route.IsRoundtrip {
				if _, err := g.AddEdge(graph.Edge[EdgeLabel]{
					From:   to + 1,
					To:     from,
					Weight: float64(backward) / speed,
					Label:  label,
				}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
