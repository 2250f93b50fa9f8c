package domain

// StopRecord is a stop as it arrives from a network source.
type StopRecord struct {
	Name          string         `json:"name" yaml:"name" validate:"required"`
	Latitude      float64        `json:"latitude" yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64        `json:"longitude" yaml:"longitude" validate:"gte=-180,lte=180"`
	RoadDistances map[string]int `json:"road_distances,omitempty" yaml:"road_distances,omitempty" validate:"dive,keys,required,endkeys,gte=0"`
}

// RouteRecord is a bus line as it arrives from a network source.
type RouteRecord struct {
	Name        string   `json:"name" yaml:"name" validate:"required"`
	Stops       []string `json:"stops" yaml:"stops" validate:"required,min=1,dive,required"`
	IsRoundtrip bool     `json:"is_roundtrip" yaml:"is_roundtrip"`
}

// NetworkDocument is the complete input needed to build a network snapshot.
type NetworkDocument struct {
	Stops   []StopRecord     `json:"stops" yaml:"stops" validate:"dive"`
	Routes  []RouteRecord    `json:"routes" yaml:"routes" validate:"dive"`
	Routing *RoutingSettings `json:"routing_settings,omitempty" yaml:"routing_settings,omitempty"`
}
