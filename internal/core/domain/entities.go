package domain

import "time"

// StopID is the stable arena index of a stop inside a catalogue.
type StopID int

// Stop represents a named transit stop.
type Stop struct {
	ID       StopID   `json:"-"`
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
	// Buses holds the numbers of the routes passing through the stop.
	Buses map[string]struct{} `json:"-"`
}

// SortedBuses returns the route numbers serving the stop in ascending order.
func (s *Stop) SortedBuses() []string {
	return sortedKeys(s.Buses)
}

// Route represents a bus line: an ordered list of stops, circular or linear.
type Route struct {
	Number      string   `json:"number"`
	Stops       []StopID `json:"-"`
	IsRoundtrip bool     `json:"is_roundtrip"`
}

// RouteStats holds statistics derived from a route on demand.
type RouteStats struct {
	StopsCount       int `json:"stop_count"`
	UniqueStopsCount int `json:"unique_stop_count"`
	RouteLength      int `json:"route_length"`
	// Curvature is nil when the geographic length of the route is zero.
	Curvature *float64 `json:"curvature"`
}

// HasCurvature reports whether the curvature is a finite value.
func (s RouteStats) HasCurvature() bool {
	return s.Curvature != nil
}

// RoutingSettings parameterise the routing graph.
type RoutingSettings struct {
	BusWaitTime int     `json:"bus_wait_time" yaml:"bus_wait_time" mapstructure:"bus_wait_time" validate:"gte=0,lte=1000"`
	BusVelocity float64 `json:"bus_velocity" yaml:"bus_velocity" mapstructure:"bus_velocity" validate:"gt=0,lte=1000"`
}

// LegKind distinguishes the two kinds of itinerary legs.
type LegKind string

const (
	LegWait LegKind = "Wait"
	LegRide LegKind = "Bus"
)

// ItineraryLeg is a single step of an itinerary: waiting at a stop or riding a bus.
type ItineraryLeg struct {
	Kind      LegKind `json:"type"`
	StopName  string  `json:"stop_name,omitempty"`
	Bus       string  `json:"bus,omitempty"`
	SpanCount int     `json:"span_count,omitempty"`
	Time      float64 `json:"time"`
}

// Itinerary is the minimum-time path between two stops.
type Itinerary struct {
	From      string         `json:"from"`
	To        string         `json:"to"`
	TotalTime float64        `json:"total_time"`
	Legs      []ItineraryLeg `json:"items"`
}

// Duration converts the total time in minutes to a time.Duration.
func (it Itinerary) Duration() time.Duration {
	return time.Duration(it.TotalTime * float64(time.Minute))
}

// Transfers counts boardings after the first one.
func (it Itinerary) Transfers() int {
	rides := 0
	for _, l := range it.Legs {
		if l.Kind == LegRide {
			rides++
		}
	}
	if rides == 0 {
		return 0
	}
	return rides - 1
}

// NetworkSummary describes a loaded network snapshot.
type NetworkSummary struct {
	SnapshotID string          `json:"snapshot_id"`
	LoadedAt   time.Time       `json:"loaded_at"`
	Stops      int             `json:"stops"`
	Routes     int             `json:"routes"`
	Vertices   int             `json:"vertices"`
	Edges      int             `json:"edges"`
	Engine     string          `json:"engine"`
	Settings   RoutingSettings `json:"routing_settings"`
	// Bounds is nil for a network without stops.
	Bounds *Bounds `json:"bounds,omitempty"`
}

// StopDetail is a stop together with the routes serving it.
type StopDetail struct {
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
	Buses    []string `json:"buses"`
}

// RouteDetail is a route with its resolved stop names and statistics.
type RouteDetail struct {
	Number      string     `json:"number"`
	IsRoundtrip bool       `json:"is_roundtrip"`
	Stops       []string   `json:"stops"`
	Stats       RouteStats `json:"stats"`
}
