package catalogue

import (
	"fmt"

	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/pkg/geospatial"
)

// RouteInfo computes the statistics of a route. Linear routes are measured
// out and back. The result is never cached.
func (c *Catalogue) RouteInfo(r *domain.Route) (domain.RouteStats, error) {
	if r == nil {
		return domain.RouteStats{}, ErrNilRoute
	}

	var stats domain.RouteStats

	unique := make(map[domain.StopID]struct{}, len(r.Stops))
	for _, id := range r.Stops {
		unique[id] = struct{}{}
	}
	stats.UniqueStopsCount = len(unique)

	if r.IsRoundtrip {
		stats.StopsCount = len(r.Stops)
	} else {
		stats.StopsCount = len(r.Stops)*2 - 1
	}

	var geoLength float64
	for i := 1; i < len(r.Stops); i++ {
		from, to := r.Stops[i-1], r.Stops[i]
		stats.RouteLength += c.Distance(from, to)
		geoLength += c.geoDistance(from, to)

		if !r.IsRoundtrip {
			stats.RouteLength += c.Distance(to, from)
			geoLength += c.geoDistance(to, from)
		}
	}

	if geoLength > 0 {
		curvature := float64(stats.RouteLength) / geoLength
		stats.Curvature = &curvature
	}

	return stats, nil
}

// RouteInfoByNumber is RouteInfo over a route looked up by number.
func (c *Catalogue) RouteInfoByNumber(number string) (domain.RouteStats, error) {
	r, ok := c.FindRoute(number)
	if !ok {
		return domain.RouteStats{}, fmt.Errorf("route %q: %w", number, domain.ErrNotFound)
	}
	return c.RouteInfo(r)
}

// MissingDistances lists the consecutive stop pairs of a route that have no
// distance in either direction. Pairs of stops sharing a location are skipped
// since a zero distance between them is legitimate.
func (c *Catalogue) MissingDistances(r *domain.Route) [][2]string {
	var missing [][2]string
	for i := 1; i < len(r.Stops); i++ {
		from, to := r.Stops[i-1], r.Stops[i]
		if _, ok := c.LookupDistance(from, to); ok {
			continue
		}
		if c.stops[from].Location == c.stops[to].Location {
			continue
		}
		missing = append(missing, [2]string{c.stops[from].Name, c.stops[to].Name})
	}
	return missing
}

func (c *Catalogue) geoDistance(from, to domain.StopID) float64 {
	a, b := c.stops[from].Location, c.stops[to].Location
	return geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}
