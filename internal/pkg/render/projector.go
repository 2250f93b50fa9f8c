package render

import (
	"math"

	"github.com/paulmach/orb"
)

const epsilon = 1e-6

// Projector maps (lon, lat) points into a width x height canvas with the
// origin at the top left, keeping padding free on every side.
type Projector struct {
	padding float64
	minLon  float64
	maxLat  float64
	zoom    float64
}

// NewProjector fits the bounding box of points into the canvas. The zoom is
// the smaller of the per-axis zooms; a degenerate axis is ignored.
func NewProjector(points orb.MultiPoint, width, height, padding float64) Projector {
	p := Projector{padding: padding}
	if len(points) == 0 {
		return p
	}

	b := points.Bound()
	p.minLon = b.Left()
	p.maxLat = b.Top()

	var widthZoom, heightZoom float64
	hasWidth := !isZero(b.Right() - b.Left())
	hasHeight := !isZero(b.Top() - b.Bottom())
	if hasWidth {
		widthZoom = (width - 2*padding) / (b.Right() - b.Left())
	}
	if hasHeight {
		heightZoom = (height - 2*padding) / (b.Top() - b.Bottom())
	}

	switch {
	case hasWidth && hasHeight:
		p.zoom = math.Min(widthZoom, heightZoom)
	case hasWidth:
		p.zoom = widthZoom
	case hasHeight:
		p.zoom = heightZoom
	}
	return p
}

// Project returns the canvas position of a (lon, lat) point.
func (p Projector) Project(pt orb.Point) orb.Point {
	return orb.Point{
		(pt.Lon()-p.minLon)*p.zoom + p.padding,
		(p.maxLat-pt.Lat())*p.zoom + p.padding,
	}
}

func isZero(v float64) bool { return math.Abs(v) < epsilon }
