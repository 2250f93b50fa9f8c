package telemetry

// Span and attribute names shared by the use cases and adapters.
const (
	SpanSnapshotBuild = "snapshot.build"
	SpanRouteStats    = "network.route_stats"
	SpanStopRoutes    = "network.stop_routes"
	SpanPlanItinerary = "network.plan_itinerary"
	SpanRenderMap     = "network.render_map"
	SpanBatch         = "requests.batch"

	AttrRoute     = "transit.route"
	AttrStop      = "transit.stop"
	AttrFrom      = "transit.from"
	AttrTo        = "transit.to"
	AttrOutcome   = "transit.outcome"
	AttrSnapshot  = "transit.snapshot_id"
	AttrCacheHit  = "cache.hit"
	AttrBatchSize = "requests.count"
)
