package geospatial_test

import (
	"math"
	"testing"

	"github.com/samirrijal/transitcat/internal/pkg/geospatial"
)

func TestHaversine_SamePoint(t *testing.T) {
	if d := geospatial.Haversine(43.26, -2.93, 43.26, -2.93); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestHaversine_OneDegreeOfLongitudeAtEquator(t *testing.T) {
	d := geospatial.Haversine(0, 0, 0, 1)
	// 2*pi*6371000/360
	want := 111194.93
	if math.Abs(d-want) > 1 {
		t.Errorf("expected ~%.2f, got %.2f", want, d)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := geospatial.Haversine(55.611087, 37.20829, 55.595884, 37.209755)
	b := geospatial.Haversine(55.595884, 37.209755, 55.611087, 37.20829)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("expected symmetric distance, got %f and %f", a, b)
	}
	if a < 1680 || a > 1700 {
		t.Errorf("expected ~1692 m, got %f", a)
	}
}
