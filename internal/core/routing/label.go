package routing

// EdgeKind tags a routing-graph edge.
type EdgeKind uint8

const (
	// KindWait is the edge from "waiting at a stop" to "boarded at a stop".
	KindWait EdgeKind = iota
	// KindRide is a bus ride over one or more consecutive stops of a route.
	KindRide
)

func (k EdgeKind) String() string {
	switch k {
	case KindWait:
		return "wait"
	case KindRide:
		return "ride"
	default:
		return "unknown"
	}
}

// EdgeLabel carries what a caller needs to render an edge of a path.
// StopName is set on wait edges, Bus and SpanCount on ride edges.
type EdgeLabel struct {
	Kind      EdgeKind
	StopName  string
	Bus       string
	SpanCount int
}
