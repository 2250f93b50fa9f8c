package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/core/ports"
	"github.com/samirrijal/transitcat/internal/core/snapshot"
	"github.com/samirrijal/transitcat/internal/pkg/metrics"
	"github.com/samirrijal/transitcat/internal/pkg/render"
	"github.com/samirrijal/transitcat/internal/pkg/telemetry"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// NetworkService answers queries against one loaded network snapshot.
type NetworkService struct {
	snap  *snapshot.Snapshot
	cache ports.CacheService
	ttl   int
}

// NewNetworkService creates a NetworkService. cache may be nil; ttlSeconds
// applies to cached itineraries and maps.
func NewNetworkService(snap *snapshot.Snapshot, cache ports.CacheService, ttlSeconds int) *NetworkService {
	if ttlSeconds <= 0 {
		ttlSeconds = 300
	}
	return &NetworkService{snap: snap, cache: cache, ttl: ttlSeconds}
}

// Snapshot returns the snapshot being served.
func (s *NetworkService) Snapshot() *snapshot.Snapshot { return s.snap }

// Summary describes the snapshot.
func (s *NetworkService) Summary() domain.NetworkSummary { return s.snap.Summary() }

// RouteStats computes the statistics of a route. They are derived on every
// call and never cached.
func (s *NetworkService) RouteStats(ctx context.Context, number string) (domain.RouteStats, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanRouteStats,
		trace.WithAttributes(attribute.String(telemetry.AttrRoute, number)))
	defer span.End()

	stats, err := s.snap.Catalogue.RouteInfoByNumber(number)
	if err != nil {
		span.SetAttributes(attribute.String(telemetry.AttrOutcome, "not_found"))
		return domain.RouteStats{}, err
	}
	return stats, nil
}

// Route returns a route with its stop names and statistics.
func (s *NetworkService) Route(ctx context.Context, number string) (*domain.RouteDetail, error) {
	r, ok := s.snap.Catalogue.FindRoute(number)
	if !ok {
		return nil, fmt.Errorf("route %q: %w", number, domain.ErrNotFound)
	}
	stats, err := s.RouteStats(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.routeDetail(r, stats), nil
}

// StopRoutes returns the sorted numbers of the routes serving a stop. A stop
// no route passes through yields an empty, non-nil slice.
func (s *NetworkService) StopRoutes(ctx context.Context, name string) ([]string, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanStopRoutes,
		trace.WithAttributes(attribute.String(telemetry.AttrStop, name)))
	defer span.End()

	stop, ok := s.snap.Catalogue.FindStop(name)
	if !ok {
		span.SetAttributes(attribute.String(telemetry.AttrOutcome, "not_found"))
		return nil, fmt.Errorf("stop %q: %w", name, domain.ErrNotFound)
	}
	return stop.SortedBuses(), nil
}

// Stop returns a stop with the routes serving it.
func (s *NetworkService) Stop(ctx context.Context, name string) (*domain.StopDetail, error) {
	buses, err := s.StopRoutes(ctx, name)
	if err != nil {
		return nil, err
	}
	stop, _ := s.snap.Catalogue.FindStop(name)
	return &domain.StopDetail{Name: stop.Name, Location: stop.Location, Buses: buses}, nil
}

// ListStops returns a page of stops in name order and the total count.
func (s *NetworkService) ListStops(ctx context.Context, offset, limit int) ([]domain.StopDetail, int) {
	all := s.snap.Catalogue.SortedStops()
	lo, hi := pageBounds(len(all), offset, limit)

	out := make([]domain.StopDetail, 0, hi-lo)
	for _, st := range all[lo:hi] {
		out = append(out, domain.StopDetail{Name: st.Name, Location: st.Location, Buses: st.SortedBuses()})
	}
	return out, len(all)
}

// ListRoutes returns a page of routes in number order and the total count.
func (s *NetworkService) ListRoutes(ctx context.Context, offset, limit int) ([]domain.RouteDetail, int, error) {
	all := s.snap.Catalogue.SortedRoutes()
	lo, hi := pageBounds(len(all), offset, limit)

	out := make([]domain.RouteDetail, 0, hi-lo)
	for _, r := range all[lo:hi] {
		stats, err := s.snap.Catalogue.RouteInfo(r)
		if err != nil {
			return nil, 0, fmt.Errorf("route %q: %w", r.Number, err)
		}
		out = append(out, *s.routeDetail(r, stats))
	}
	return out, len(all), nil
}

// PageLimit clamps a requested page size.
func PageLimit(limit int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}

func pageBounds(total, offset, limit int) (int, int) {
	limit = PageLimit(limit)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return offset, end
}

func (s *NetworkService) routeDetail(r *domain.Route, stats domain.RouteStats) *domain.RouteDetail {
	stops := s.snap.Catalogue.RouteStops(r)
	names := make([]string, len(stops))
	for i, st := range stops {
		names[i] = st.Name
	}
	return &domain.RouteDetail{
		Number:      r.Number,
		IsRoundtrip: r.IsRoundtrip,
		Stops:       names,
		Stats:       stats,
	}
}

// PlanItinerary finds the fastest itinerary between two stops. Unknown stops
// yield domain.ErrStopNotFound, unconnected ones domain.ErrNoRoute.
func (s *NetworkService) PlanItinerary(ctx context.Context, from, to string) (domain.Itinerary, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanPlanItinerary,
		trace.WithAttributes(
			attribute.String(telemetry.AttrFrom, from),
			attribute.String(telemetry.AttrTo, to),
		))
	defer span.End()

	// Keys carry the snapshot id so a reload never serves stale answers.
	cacheKey := fmt.Sprintf("itinerary:%s:%q:%q", s.snap.ID, from, to)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var it domain.Itinerary
			if err := json.Unmarshal(data, &it); err == nil {
				metrics.CacheHits.WithLabelValues("itinerary").Inc()
				metrics.RoutingQueries.WithLabelValues(metrics.OutcomeFound).Inc()
				span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
				return it, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("itinerary").Inc()
	}

	start := time.Now()
	it, err := s.snap.Router.Plan(from, to)
	metrics.RoutingQueryDuration.Observe(time.Since(start).Seconds())

	outcome := queryOutcome(err)
	metrics.RoutingQueries.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String(telemetry.AttrOutcome, outcome))
	if err != nil {
		if outcome == metrics.OutcomeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return domain.Itinerary{}, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(it); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
		}
	}

	return it, nil
}

func queryOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeFound
	case errors.Is(err, domain.ErrStopNotFound):
		return metrics.OutcomeStopNotFound
	case errors.Is(err, domain.ErrNoRoute):
		return metrics.OutcomeNoRoute
	default:
		return metrics.OutcomeError
	}
}

// RenderMap draws the network as a GeoJSON document.
func (s *NetworkService) RenderMap(ctx context.Context, settings render.Settings) ([]byte, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanRenderMap)
	defer span.End()

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	settingsKey, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode render settings: %w", err)
	}
	cacheKey := fmt.Sprintf("map:%s:%s", s.snap.ID, settingsKey)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			metrics.CacheHits.WithLabelValues("map").Inc()
			span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
			return data, nil
		}
		metrics.CacheMisses.WithLabelValues("map").Inc()
	}

	data, err := render.MapJSON(s.snap.Catalogue, settings)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("render map: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
	}
	return data, nil
}
