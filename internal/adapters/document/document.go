// Package document reads and writes the request document exchanged with
// batch clients: base_requests describing the network, routing and render
// settings, and stat_requests to answer.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/pkg/render"
)

// Format is the encoding of a document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrUnknownFormat   = errors.New("unknown document format")
	ErrUnknownBaseType = errors.New("unknown base request type")
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// BaseRequest is a stop ("Stop") or a route ("Bus") record.
type BaseRequest struct {
	Type          string         `json:"type" yaml:"type"`
	Name          string         `json:"name" yaml:"name"`
	Latitude      float64        `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude     float64        `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	RoadDistances map[string]int `json:"road_distances,omitempty" yaml:"road_distances,omitempty"`
	Stops         []string       `json:"stops,omitempty" yaml:"stops,omitempty"`
	IsRoundtrip   bool           `json:"is_roundtrip,omitempty" yaml:"is_roundtrip,omitempty"`
}

// Request is a complete request document.
type Request struct {
	BaseRequests    []BaseRequest           `json:"base_requests" yaml:"base_requests"`
	RoutingSettings *domain.RoutingSettings `json:"routing_settings,omitempty" yaml:"routing_settings,omitempty"`
	RenderSettings  *render.Settings        `json:"render_settings,omitempty" yaml:"render_settings,omitempty"`
	StatRequests    []domain.StatRequest    `json:"stat_requests,omitempty" yaml:"stat_requests,omitempty"`
}

// Decode reads a request document.
func Decode(r io.Reader, f Format) (*Request, error) {
	var req Request
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&req); err != nil {
			return nil, fmt.Errorf("decode json document: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&req); err != nil {
			return nil, fmt.Errorf("decode yaml document: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return &req, nil
}

// Network splits the base requests into stop and route records.
func (r *Request) Network() (*domain.NetworkDocument, error) {
	doc := &domain.NetworkDocument{Routing: r.RoutingSettings}
	for i, br := range r.BaseRequests {
		switch br.Type {
		case "Stop":
			doc.Stops = append(doc.Stops, domain.StopRecord{
				Name:          br.Name,
				Latitude:      br.Latitude,
				Longitude:     br.Longitude,
				RoadDistances: br.RoadDistances,
			})
		case "Bus":
			doc.Routes = append(doc.Routes, domain.RouteRecord{
				Name:        br.Name,
				Stops:       br.Stops,
				IsRoundtrip: br.IsRoundtrip,
			})
		default:
			return nil, fmt.Errorf("base_requests[%d]: %w: %q", i, ErrUnknownBaseType, br.Type)
		}
	}
	return doc, nil
}

// Render returns the render settings of the document or the defaults.
func (r *Request) Render() render.Settings {
	if r.RenderSettings == nil {
		return render.DefaultSettings()
	}
	return *r.RenderSettings
}

// FromNetwork turns a network document back into base requests, stops first.
func FromNetwork(doc *domain.NetworkDocument) *Request {
	req := &Request{RoutingSettings: doc.Routing}
	for _, s := range doc.Stops {
		req.BaseRequests = append(req.BaseRequests, BaseRequest{
			Type:          "Stop",
			Name:          s.Name,
			Latitude:      s.Latitude,
			Longitude:     s.Longitude,
			RoadDistances: s.RoadDistances,
		})
	}
	for _, r := range doc.Routes {
		req.BaseRequests = append(req.BaseRequests, BaseRequest{
			Type:        "Bus",
			Name:        r.Name,
			Stops:       r.Stops,
			IsRoundtrip: r.IsRoundtrip,
		})
	}
	return req
}

// EncodeResponses writes responses as an indented JSON array. An empty batch
// is written as [].
func EncodeResponses(w io.Writer, resps []domain.Response) error {
	if resps == nil {
		resps = []domain.Response{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resps); err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}
	return nil
}
