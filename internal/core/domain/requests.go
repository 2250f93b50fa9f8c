package domain

// RequestType names a kind of statistics request.
type RequestType string

const (
	RequestStop  RequestType = "Stop"
	RequestBus   RequestType = "Bus"
	RequestRoute RequestType = "Route"
	RequestMap   RequestType = "Map"
)

// Error messages carried by ErrorResponse.
const (
	MsgNotFound       = "not found"
	MsgInvalidRequest = "invalid request format"
	MsgUnknownType    = "unknown request type"
)

// StatRequest is one query of a batch. Name is used by Stop and Bus
// requests, From and To by Route requests.
type StatRequest struct {
	ID   int         `json:"id" yaml:"id"`
	Type RequestType `json:"type" yaml:"type"`
	Name string      `json:"name,omitempty" yaml:"name,omitempty"`
	From string      `json:"from,omitempty" yaml:"from,omitempty"`
	To   string      `json:"to,omitempty" yaml:"to,omitempty"`
}

// Response is the answer to a single StatRequest.
type Response interface {
	ResponseTo() int
}

type ErrorResponse struct {
	RequestID    int    `json:"request_id"`
	ErrorMessage string `json:"error_message"`
}

type BusResponse struct {
	RequestID       int      `json:"request_id"`
	Curvature       *float64 `json:"curvature"`
	RouteLength     int      `json:"route_length"`
	StopCount       int      `json:"stop_count"`
	UniqueStopCount int      `json:"unique_stop_count"`
}

type StopResponse struct {
	RequestID int      `json:"request_id"`
	Buses     []string `json:"buses"`
}

type RouteResponse struct {
	RequestID int            `json:"request_id"`
	TotalTime float64        `json:"total_time"`
	Items     []ItineraryLeg `json:"items"`
}

type MapResponse struct {
	RequestID int    `json:"request_id"`
	Map       string `json:"map"`
}

func (r ErrorResponse) ResponseTo() int { return r.RequestID }
func (r BusResponse) ResponseTo() int   { return r.RequestID }
func (r StopResponse) ResponseTo() int  { return r.RequestID }
func (r RouteResponse) ResponseTo() int { return r.RequestID }
func (r MapResponse) ResponseTo() int   { return r.RequestID }
