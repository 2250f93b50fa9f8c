// Package snapshot loads a network document into an immutable catalogue plus
// built router that any number of readers may share.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/transitcat/internal/core/catalogue"
	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/core/routing"
	"github.com/samirrijal/transitcat/internal/pkg/metrics"
	"github.com/samirrijal/transitcat/internal/pkg/telemetry"
)

// ErrMissingDistance is returned in strict mode when a route crosses a stop
// pair with no road distance in either direction.
var ErrMissingDistance = errors.New("missing road distance")

var validate = validator.New()

// Options tune how a document becomes a snapshot.
type Options struct {
	// Settings are used when the document carries no routing_settings.
	Settings        domain.RoutingSettings
	Engine          routing.Engine
	StrictDistances bool
}

// Snapshot is a loaded network. Nothing in it changes after Build returns.
type Snapshot struct {
	ID        uuid.UUID
	LoadedAt  time.Time
	Catalogue *catalogue.Catalogue
	Router    *routing.Router
}

// Build validates doc, loads stops, then distances, then routes, and builds
// the routing graph. Every rejection wraps domain.ErrInvalidNetwork.
func Build(ctx context.Context, doc *domain.NetworkDocument, opts Options) (*Snapshot, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanSnapshotBuild)
	defer span.End()

	snap, err := build(doc, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String(telemetry.AttrSnapshot, snap.ID.String()),
		attribute.Int("transit.stops", snap.Catalogue.StopCount()),
		attribute.Int("transit.routes", snap.Catalogue.RouteCount()),
	)
	return snap, nil
}

func build(doc *domain.NetworkDocument, opts Options) (*Snapshot, error) {
	start := time.Now()

	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidNetwork)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidNetwork, describe(err))
	}

	settings := opts.Settings
	if doc.Routing != nil {
		settings = *doc.Routing
	}

	cat, err := Load(doc)
	if err != nil {
		return nil, err
	}

	if opts.StrictDistances {
		if err := checkDistances(cat); err != nil {
			return nil, err
		}
	}

	router, err := routing.NewRouter(settings, opts.Engine)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidNetwork, err)
	}
	if err := router.Build(cat); err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	metrics.ObserveGraph(router.Graph().VertexCount(), router.Graph().EdgeCount(), time.Since(start))

	return &Snapshot{
		ID:        uuid.New(),
		LoadedAt:  time.Now().UTC(),
		Catalogue: cat,
		Router:    router,
	}, nil
}

// Load applies the records of doc to a fresh catalogue without building a
// router. Stops go in first, then every distance, then the routes.
func Load(doc *domain.NetworkDocument) (*catalogue.Catalogue, error) {
	cat := catalogue.New()

	for _, s := range doc.Stops {
		if err := cat.AddStop(s.Name, domain.GeoPoint{Lat: s.Latitude, Lon: s.Longitude}); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidNetwork, err)
		}
	}

	for _, s := range doc.Stops {
		neighbours := make([]string, 0, len(s.RoadDistances))
		for name := range s.RoadDistances {
			neighbours = append(neighbours, name)
		}
		sort.Strings(neighbours)
		for _, name := range neighbours {
			if err := cat.SetDistance(s.Name, name, s.RoadDistances[name]); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrInvalidNetwork, err)
			}
		}
	}

	for _, r := range doc.Routes {
		if err := cat.AddRoute(r.Name, r.Stops, r.IsRoundtrip); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidNetwork, err)
		}
	}

	return cat, nil
}

func checkDistances(cat *catalogue.Catalogue) error {
	var problems []string
	for _, r := range cat.SortedRoutes() {
		for _, pair := range cat.MissingDistances(r) {
			problems = append(problems, fmt.Sprintf("route %q: %s -> %s", r.Number, pair[0], pair[1]))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w: %s", domain.ErrInvalidNetwork, ErrMissingDistance, strings.Join(problems, "; "))
}

// describe flattens validator errors into one diagnostic line.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			parts[i] = fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		} else {
			parts[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
		}
	}
	return strings.Join(parts, "; ")
}

// Summary describes the snapshot for status endpoints and events.
func (s *Snapshot) Summary() domain.NetworkSummary {
	return domain.NetworkSummary{
		SnapshotID: s.ID.String(),
		LoadedAt:   s.LoadedAt,
		Stops:      s.Catalogue.StopCount(),
		Routes:     s.Catalogue.RouteCount(),
		Vertices:   s.Router.Graph().VertexCount(),
		Edges:      s.Router.Graph().EdgeCount(),
		Engine:     string(s.Router.Engine()),
		Settings:   s.Router.Settings(),
		Bounds:     bounds(s.Catalogue.SortedStops()),
	}
}

func bounds(stops []*domain.Stop) *domain.Bounds {
	if len(stops) == 0 {
		return nil
	}
	mp := make(orb.MultiPoint, 0, len(stops))
	for _, st := range stops {
		mp = append(mp, orb.Point{st.Location.Lon, st.Location.Lat})
	}
	b := mp.Bound()
	return &domain.Bounds{MinLat: b.Bottom(), MinLon: b.Left(), MaxLat: b.Top(), MaxLon: b.Right()}
}
