package usecases

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/pkg/render"
	"github.com/samirrijal/transitcat/internal/pkg/telemetry"
)

// MaxBatch bounds the number of requests accepted in one batch by the HTTP
// and NATS surfaces.
const MaxBatch = 500

// RequestService answers batches of statistics requests in request order.
type RequestService struct {
	network *NetworkService
	render  render.Settings
}

// NewRequestService creates a RequestService. settings are used by Map requests.
func NewRequestService(network *NetworkService, settings render.Settings) *RequestService {
	return &RequestService{network: network, render: settings}
}

// Process answers every request. A failing request produces an error
// response and never stops the batch.
func (s *RequestService) Process(ctx context.Context, reqs []domain.StatRequest) []domain.Response {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanBatch)
	defer span.End()
	span.SetAttributes(attribute.Int(telemetry.AttrBatchSize, len(reqs)))

	out := make([]domain.Response, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, s.Answer(ctx, req))
	}
	return out
}

// Answer handles a single request.
func (s *RequestService) Answer(ctx context.Context, req domain.StatRequest) domain.Response {
	switch req.Type {
	case domain.RequestBus:
		return s.bus(ctx, req)
	case domain.RequestStop:
		return s.stop(ctx, req)
	case domain.RequestRoute:
		return s.route(ctx, req)
	case domain.RequestMap:
		return s.drawMap(ctx, req)
	default:
		return domain.ErrorResponse{RequestID: req.ID, ErrorMessage: domain.MsgUnknownType}
	}
}

func (s *RequestService) bus(ctx context.Context, req domain.StatRequest) domain.Response {
	stats, err := s.network.RouteStats(ctx, req.Name)
	if err != nil {
		return s.failure(ctx, req, err)
	}
	return domain.BusResponse{
		RequestID:       req.ID,
		Curvature:       stats.Curvature,
		RouteLength:     stats.RouteLength,
		StopCount:       stats.StopsCount,
		UniqueStopCount: stats.UniqueStopsCount,
	}
}

func (s *RequestService) stop(ctx context.Context, req domain.StatRequest) domain.Response {
	buses, err := s.network.StopRoutes(ctx, req.Name)
	if err != nil {
		return s.failure(ctx, req, err)
	}
	return domain.StopResponse{RequestID: req.ID, Buses: buses}
}

func (s *RequestService) route(ctx context.Context, req domain.StatRequest) domain.Response {
	if req.From == "" || req.To == "" {
		return domain.ErrorResponse{RequestID: req.ID, ErrorMessage: domain.MsgInvalidRequest}
	}
	it, err := s.network.PlanItinerary(ctx, req.From, req.To)
	if err != nil {
		return s.failure(ctx, req, err)
	}
	return domain.RouteResponse{RequestID: req.ID, TotalTime: it.TotalTime, Items: it.Legs}
}

func (s *RequestService) drawMap(ctx context.Context, req domain.StatRequest) domain.Response {
	data, err := s.network.RenderMap(ctx, s.render)
	if err != nil {
		return s.failure(ctx, req, err)
	}
	return domain.MapResponse{RequestID: req.ID, Map: string(data)}
}

// failure maps not-found outcomes to "not found" and logs anything else.
func (s *RequestService) failure(ctx context.Context, req domain.StatRequest, err error) domain.Response {
	if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrStopNotFound) && !errors.Is(err, domain.ErrNoRoute) {
		slog.WarnContext(ctx, "request failed", "request_id", req.ID, "type", req.Type, "error", err)
	}
	return domain.ErrorResponse{RequestID: req.ID, ErrorMessage: domain.MsgNotFound}
}
