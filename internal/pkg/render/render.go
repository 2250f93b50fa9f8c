// Package render draws a transit network as a GeoJSON feature collection:
// one LineString per route and one Point per served stop, each carrying its
// position on a projected canvas next to the geographic coordinates.
package render

import (
	"fmt"
	"sort"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"

	"github.com/samirrijal/transitcat/internal/core/domain"
)

// Network is the read-only view the renderer needs.
type Network interface {
	SortedRoutes() []*domain.Route
	RouteStops(r *domain.Route) []*domain.Stop
}

// Settings control the canvas and the drawing style.
type Settings struct {
	Width             float64    `json:"width" yaml:"width"`
	Height            float64    `json:"height" yaml:"height"`
	Padding           float64    `json:"padding" yaml:"padding"`
	StopRadius        float64    `json:"stop_radius" yaml:"stop_radius"`
	LineWidth         float64    `json:"line_width" yaml:"line_width"`
	BusLabelFontSize  int        `json:"bus_label_font_size" yaml:"bus_label_font_size"`
	BusLabelOffset    [2]float64 `json:"bus_label_offset" yaml:"bus_label_offset"`
	StopLabelFontSize int        `json:"stop_label_font_size" yaml:"stop_label_font_size"`
	StopLabelOffset   [2]float64 `json:"stop_label_offset" yaml:"stop_label_offset"`
	UnderlayerColor   Color      `json:"underlayer_color" yaml:"underlayer_color"`
	UnderlayerWidth   float64    `json:"underlayer_width" yaml:"underlayer_width"`
	ColorPalette      []Color    `json:"color_palette" yaml:"color_palette"`
}

// DefaultSettings is used when a caller supplies none.
func DefaultSettings() Settings {
	return Settings{
		Width:             1200,
		Height:            1200,
		Padding:           50,
		StopRadius:        5,
		LineWidth:         14,
		BusLabelFontSize:  20,
		BusLabelOffset:    [2]float64{7, 15},
		StopLabelFontSize: 20,
		StopLabelOffset:   [2]float64{7, -3},
		UnderlayerColor:   "rgba(255,255,255,0.85)",
		UnderlayerWidth:   3,
		ColorPalette:      []Color{"green", "rgb(255,160,0)", "red"},
	}
}

// Validate rejects settings that cannot produce a sensible canvas.
func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("render: canvas must be positive, got %gx%g", s.Width, s.Height)
	}
	if s.Padding < 0 || 2*s.Padding >= s.Width || 2*s.Padding >= s.Height {
		return fmt.Errorf("render: padding %g does not fit a %gx%g canvas", s.Padding, s.Width, s.Height)
	}
	return nil
}

// Feature kinds.
const (
	KindRoute = "route"
	KindStop  = "stop"
)

// Map renders every route with at least one stop, in route-number order,
// followed by every stop those routes serve, in name order. Colours cycle
// through the palette one route at a time.
func Map(net Network, s Settings) (*geojson.FeatureCollection, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	type line struct {
		route *domain.Route
		stops []*domain.Stop
	}
	var (
		lines  []line
		points orb.MultiPoint
		served = make(map[string]*domain.Stop)
	)
	for _, r := range net.SortedRoutes() {
		stops := net.RouteStops(r)
		if len(stops) == 0 {
			continue
		}
		lines = append(lines, line{route: r, stops: stops})
		for _, st := range stops {
			points = append(points, lonLat(st))
			served[st.Name] = st
		}
	}

	proj := NewProjector(points, s.Width, s.Height, s.Padding)
	fc := geojson.NewFeatureCollection()

	for i, l := range lines {
		fc.AddFeature(routeFeature(l.route, l.stops, proj, s, paletteColor(s.ColorPalette, i)))
	}

	for _, st := range sortedStops(served) {
		fc.AddFeature(stopFeature(st, proj, s))
	}

	return fc, nil
}

// MapJSON is Map encoded as a GeoJSON document.
func MapJSON(net Network, s Settings) ([]byte, error) {
	fc, err := Map(net, s)
	if err != nil {
		return nil, err
	}
	return fc.MarshalJSON()
}

func routeFeature(r *domain.Route, stops []*domain.Stop, proj Projector, s Settings, color Color) *geojson.Feature {
	path := stops
	if !r.IsRoundtrip {
		path = make([]*domain.Stop, 0, 2*len(stops)-1)
		path = append(path, stops...)
		for i := len(stops) - 2; i >= 0; i-- {
			path = append(path, stops[i])
		}
	}

	coords := make([][]float64, len(path))
	canvas := make([][]float64, len(path))
	for i, st := range path {
		pt := lonLat(st)
		coords[i] = []float64{pt.Lon(), pt.Lat()}
		xy := proj.Project(pt)
		canvas[i] = []float64{xy.X(), xy.Y()}
	}

	// Linear routes are labelled at both terminals.
	labels := []string{stops[0].Name}
	if last := stops[len(stops)-1]; !r.IsRoundtrip && last.Name != stops[0].Name {
		labels = append(labels, last.Name)
	}

	f := geojson.NewLineStringFeature(coords)
	f.ID = "route:" + r.Number
	f.SetProperty("kind", KindRoute)
	f.SetProperty("number", r.Number)
	f.SetProperty("is_roundtrip", r.IsRoundtrip)
	f.SetProperty("stroke", string(color))
	f.SetProperty("stroke_width", s.LineWidth)
	f.SetProperty("label_stops", labels)
	f.SetProperty("label_font_size", s.BusLabelFontSize)
	f.SetProperty("label_offset", s.BusLabelOffset)
	f.SetProperty("underlayer_color", string(orNone(s.UnderlayerColor)))
	f.SetProperty("underlayer_width", s.UnderlayerWidth)
	f.SetProperty("canvas", canvas)
	return f
}

func stopFeature(st *domain.Stop, proj Projector, s Settings) *geojson.Feature {
	pt := lonLat(st)
	xy := proj.Project(pt)

	f := geojson.NewPointFeature([]float64{pt.Lon(), pt.Lat()})
	f.ID = "stop:" + st.Name
	f.SetProperty("kind", KindStop)
	f.SetProperty("name", st.Name)
	f.SetProperty("radius", s.StopRadius)
	f.SetProperty("fill", "white")
	f.SetProperty("label_font_size", s.StopLabelFontSize)
	f.SetProperty("label_offset", s.StopLabelOffset)
	f.SetProperty("x", xy.X())
	f.SetProperty("y", xy.Y())
	return f
}

func lonLat(st *domain.Stop) orb.Point {
	return orb.Point{st.Location.Lon, st.Location.Lat}
}

func paletteColor(palette []Color, i int) Color {
	if len(palette) == 0 {
		return NoColor
	}
	return palette[i%len(palette)]
}

func orNone(c Color) Color {
	if c == "" {
		return NoColor
	}
	return c
}

func sortedStops(m map[string]*domain.Stop) []*domain.Stop {
	out := make([]*domain.Stop, 0, len(m))
	for _, st := range m {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
