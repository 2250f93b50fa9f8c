package document_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samirrijal/transitcat/internal/adapters/document"
	"github.com/samirrijal/transitcat/internal/core/domain"
)

const jsonDoc = `{
  "base_requests": [
    {"type": "Bus", "name": "1", "stops": ["A", "B", "C", "A"], "is_roundtrip": true},
    {"type": "Stop", "name": "A", "latitude": 0, "longitude": 0, "road_distances": {"B": 1000}},
    {"type": "Stop", "name": "B", "latitude": 0, "longitude": 1, "road_distances": {"C": 1000}},
    {"type": "Stop", "name": "C", "latitude": 0, "longitude": 2}
  ],
  "routing_settings": {"bus_wait_time": 6, "bus_velocity": 40},
  "render_settings": {"width": 600, "height": 400, "padding": 30, "color_palette": ["green", [255, 160, 0]]},
  "stat_requests": [
    {"id": 1, "type": "Bus", "name": "1"},
    {"id": 2, "type": "Route", "from": "A", "to": "C"}
  ]
}`

const yamlDoc = `
base_requests:
  - {type: Stop, name: A, latitude: 0, longitude: 0, road_distances: {B: 1000}}
  - {type: Stop, name: B, latitude: 0, longitude: 1}
  - {type: Bus, name: "7", stops: [A, B], is_roundtrip: false}
routing_settings:
  bus_wait_time: 2
  bus_velocity: 30
stat_requests:
  - {id: 5, type: Stop, name: B}
`

func TestDecode_JSON(t *testing.T) {
	req, err := document.Decode(strings.NewReader(jsonDoc), document.FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.StatRequests) != 2 || req.StatRequests[1].From != "A" || req.StatRequests[1].To != "C" {
		t.Errorf("unexpected stat requests: %+v", req.StatRequests)
	}
	if req.RoutingSettings == nil || req.RoutingSettings.BusVelocity != 40 {
		t.Errorf("unexpected routing settings: %+v", req.RoutingSettings)
	}

	rs := req.Render()
	if rs.Width != 600 || len(rs.ColorPalette) != 2 || rs.ColorPalette[1] != "rgb(255,160,0)" {
		t.Errorf("unexpected render settings: %+v", rs)
	}

	doc, err := req.Network()
	if err != nil {
		t.Fatalf("network: %v", err)
	}
	if len(doc.Stops) != 3 || len(doc.Routes) != 1 {
		t.Fatalf("expected 3 stops and 1 route, got %d and %d", len(doc.Stops), len(doc.Routes))
	}
	if doc.Stops[0].RoadDistances["B"] != 1000 {
		t.Errorf("road distances lost: %+v", doc.Stops[0])
	}
	if !doc.Routes[0].IsRoundtrip {
		t.Error("expected roundtrip route")
	}
}

func TestDecode_YAML(t *testing.T) {
	req, err := document.Decode(strings.NewReader(yamlDoc), document.FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := req.Network()
	if err != nil {
		t.Fatalf("network: %v", err)
	}
	if len(doc.Stops) != 2 || doc.Routes[0].Name != "7" || doc.Routes[0].IsRoundtrip {
		t.Errorf("unexpected network: %+v", doc)
	}
	if doc.Routing == nil || doc.Routing.BusWaitTime != 2 {
		t.Errorf("unexpected routing settings: %+v", doc.Routing)
	}
	if req.StatRequests[0].ID != 5 || req.StatRequests[0].Type != domain.RequestStop {
		t.Errorf("unexpected stat request: %+v", req.StatRequests[0])
	}
	if req.Render().Width == 0 {
		t.Error("expected default render settings")
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := document.Decode(strings.NewReader("{"), document.FormatJSON); err == nil {
		t.Error("expected error for truncated JSON")
	}
	if _, err := document.Decode(strings.NewReader("{}"), "xml"); !errors.Is(err, document.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}

	req := &document.Request{BaseRequests: []document.BaseRequest{{Type: "Tram", Name: "T1"}}}
	if _, err := req.Network(); !errors.Is(err, document.ErrUnknownBaseType) {
		t.Errorf("expected ErrUnknownBaseType, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]document.Format{"": "json", "JSON": "json", "yml": "yaml", "yaml": "yaml"} {
		got, err := document.ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := document.ParseFormat("toml"); err == nil {
		t.Error("expected error for toml")
	}
	if document.FormatFromPath("net.YML") != document.FormatYAML || document.FormatFromPath("net.json") != document.FormatJSON {
		t.Error("unexpected format from path")
	}
}

func TestFromNetwork_RoundTrip(t *testing.T) {
	req, err := document.Decode(strings.NewReader(jsonDoc), document.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	doc, _ := req.Network()

	back, err := document.FromNetwork(doc).Network()
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Stops) != len(doc.Stops) || len(back.Routes) != len(doc.Routes) {
		t.Errorf("round trip lost records: %+v", back)
	}
}

func TestEncodeResponses(t *testing.T) {
	var buf bytes.Buffer
	err := document.EncodeResponses(&buf, []domain.Response{
		domain.BusResponse{RequestID: 1, RouteLength: 2000, StopCount: 4, UniqueStopCount: 3},
		domain.ErrorResponse{RequestID: 2, ErrorMessage: domain.MsgNotFound},
	})
	if err != nil {
		t.Fatal(err)
	}

	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if v, has := out[0]["curvature"]; !has || v != nil {
		t.Errorf("undefined curvature must be encoded as null, got %v (present %v)", v, has)
	}
	if out[1]["error_message"] != "not found" || out[1]["request_id"] != float64(2) {
		t.Errorf("unexpected error response: %v", out[1])
	}

	buf.Reset()
	if err := document.EncodeResponses(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected [], got %q", buf.String())
	}
}

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "network.yaml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}

	doc, err := document.NewFileSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Stops) != 2 || len(doc.Routes) != 1 {
		t.Errorf("unexpected network: %+v", doc)
	}

	if _, err := document.NewFileSource(filepath.Join(dir, "missing.json")).Load(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}
