package render_test

import (
	"encoding/json"
	"errors"
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/samirrijal/transitcat/internal/core/catalogue"
	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/pkg/render"
)

func network(t *testing.T) *catalogue.Catalogue {
	t.Helper()
	c := catalogue.New()
	stops := map[string]domain.GeoPoint{
		"A":      {Lat: 0, Lon: 0},
		"B":      {Lat: 1, Lon: 1},
		"C":      {Lat: 0, Lon: 2},
		"Unused": {Lat: 10, Lon: 10},
	}
	for _, name := range []string{"A", "B", "C", "Unused"} {
		if err := c.AddStop(name, stops[name]); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.AddRoute("2", []string{"A", "B", "C"}, false); err != nil {
		t.Fatal(err)
	}
	if err := c.AddRoute("1", []string{"A", "B", "A"}, true); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestProjector_FitsCanvas(t *testing.T) {
	p := render.NewProjector(orb.MultiPoint{{0, 0}, {2, 1}}, 600, 400, 50)

	// width zoom 500/2 = 250, height zoom 300/1 = 300 -> 250
	got := p.Project(orb.Point{0, 1})
	if got.X() != 50 || got.Y() != 50 {
		t.Errorf("top-left corner: expected (50, 50), got %v", got)
	}
	got = p.Project(orb.Point{2, 0})
	if got.X() != 550 || got.Y() != 300 {
		t.Errorf("bottom-right corner: expected (550, 300), got %v", got)
	}
}

func TestProjector_DegenerateAxes(t *testing.T) {
	p := render.NewProjector(orb.MultiPoint{{3, 3}}, 600, 400, 50)
	if got := p.Project(orb.Point{3, 3}); got.X() != 50 || got.Y() != 50 {
		t.Errorf("single point must land on the padding corner, got %v", got)
	}

	empty := render.NewProjector(nil, 600, 400, 10)
	if got := empty.Project(orb.Point{1, 1}); got.X() != 10 || got.Y() != 10 {
		t.Errorf("empty projector must only add padding, got %v", got)
	}
}

func TestMap_FeaturesInOrder(t *testing.T) {
	s := render.DefaultSettings()
	s.ColorPalette = []render.Color{"green", "red"}

	fc, err := render.Map(network(t), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 2 routes + 3 served stops; "Unused" is not drawn.
	if len(fc.Features) != 5 {
		t.Fatalf("expected 5 features, got %d", len(fc.Features))
	}

	wantIDs := []string{"route:1", "route:2", "stop:A", "stop:B", "stop:C"}
	for i, want := range wantIDs {
		if fc.Features[i].ID != want {
			t.Errorf("feature %d: expected %s, got %v", i, want, fc.Features[i].ID)
		}
	}

	if c := fc.Features[0].PropertyMustString("stroke"); c != "green" {
		t.Errorf("route 1: expected green, got %s", c)
	}
	if c := fc.Features[1].PropertyMustString("stroke"); c != "red" {
		t.Errorf("route 2: expected red, got %s", c)
	}
}

func TestMap_LinearRouteIncludesReturnLeg(t *testing.T) {
	fc, err := render.Map(network(t), render.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	linear := fc.Features[1]
	if !linear.Geometry.IsLineString() {
		t.Fatalf("expected LineString, got %s", linear.Geometry.Type)
	}
	// A B C B A
	if n := len(linear.Geometry.LineString); n != 5 {
		t.Fatalf("expected 5 points, got %d", n)
	}
	first, last := linear.Geometry.LineString[0], linear.Geometry.LineString[4]
	if first[0] != last[0] || first[1] != last[1] {
		t.Errorf("return leg must end where the route starts: %v vs %v", first, last)
	}

	circular := fc.Features[0]
	if n := len(circular.Geometry.LineString); n != 3 {
		t.Errorf("circular route must not be doubled, got %d points", n)
	}
}

func TestMap_StopCanvasWithinBounds(t *testing.T) {
	s := render.DefaultSettings()
	fc, err := render.Map(network(t), s)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range fc.Features[2:] {
		x, y := f.PropertyMustFloat64("x"), f.PropertyMustFloat64("y")
		if x < s.Padding-1e-9 || x > s.Width-s.Padding+1e-9 || y < s.Padding-1e-9 || y > s.Height-s.Padding+1e-9 {
			t.Errorf("%v projected outside the padded canvas: (%g, %g)", f.ID, x, y)
		}
	}
}

func TestMap_EmptyPalette(t *testing.T) {
	s := render.DefaultSettings()
	s.ColorPalette = nil
	fc, err := render.Map(network(t), s)
	if err != nil {
		t.Fatal(err)
	}
	if c := fc.Features[0].PropertyMustString("stroke"); c != string(render.NoColor) {
		t.Errorf("expected %q, got %q", render.NoColor, c)
	}
}

func TestMap_InvalidSettings(t *testing.T) {
	s := render.DefaultSettings()
	s.Padding = s.Width
	if _, err := render.Map(network(t), s); err == nil {
		t.Error("expected error for padding wider than the canvas")
	}
}

func TestMapJSON_IsGeoJSON(t *testing.T) {
	data, err := render.MapJSON(network(t), render.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("output is not a feature collection: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 5 {
		t.Errorf("unexpected collection: type %s, %d features", fc.Type, len(fc.Features))
	}
}

func TestColor_Decode(t *testing.T) {
	var s struct {
		Palette []render.Color `json:"palette" yaml:"palette"`
	}

	if err := json.Unmarshal([]byte(`{"palette":["green",[255,160,0],[255,255,255,0.85]]}`), &s); err != nil {
		t.Fatalf("json: %v", err)
	}
	want := []render.Color{"green", "rgb(255,160,0)", "rgba(255,255,255,0.85)"}
	for i := range want {
		if s.Palette[i] != want[i] {
			t.Errorf("json color %d: expected %s, got %s", i, want[i], s.Palette[i])
		}
	}

	if err := yaml.Unmarshal([]byte("palette: [red, [1, 2, 3]]\n"), &s); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if s.Palette[0] != "red" || s.Palette[1] != "rgb(1,2,3)" {
		t.Errorf("unexpected yaml palette: %v", s.Palette)
	}

	var c render.Color
	if err := json.Unmarshal([]byte(`[1,2]`), &c); !errors.Is(err, render.ErrColorFormat) {
		t.Errorf("expected ErrColorFormat, got %v", err)
	}
}
