package geo

import (
	"math"
	"testing"

	"github.com/ctessum/geom"
)

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), 1)
}

func TestOffsetRectangleStaysRectangular(t *testing.T) {
	rect := Box(10, 20, 110, 80)

	out := OffsetPolygon(rect, 5)
	if len(out) != 1 {
		t.Fatalf("expected one ring, got %d", len(out))
	}
	if len(out[0]) != 4 {
		t.Errorf("square join should keep 4 corners, got %d vertices", len(out[0]))
	}

	b := FromGeom(out.Bounds())
	want := NewBounds(5, 15, 115, 85)
	if !closeTo(b.MinX, want.MinX) || !closeTo(b.MinY, want.MinY) ||
		!closeTo(b.MaxX, want.MaxX) || !closeTo(b.MaxY, want.MaxY) {
		t.Errorf("bounds: got %+v, want %+v", b, want)
	}

	if area := out.Area(); !closeTo(area, 110*70) {
		t.Errorf("area: got %v, want %v", area, 110*70)
	}
}

func TestOffsetIsWindingInsensitive(t *testing.T) {
	ccw := Box(0, 0, 10, 10)
	cw := geom.Polygon{{
		{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0},
	}}

	for _, p := range []geom.Polygon{ccw, cw} {
		out := OffsetPolygon(p, 1)
		b := FromGeom(out.Bounds())
		if !closeTo(b.MinX, -1) || !closeTo(b.MaxX, 11) {
			t.Errorf("offset should grow outward regardless of winding, got bounds %+v", b)
		}
	}
}

func TestOffsetContainsOriginal(t *testing.T) {
	// L-shaped (non-convex) ring.
	p := geom.Polygon{{
		{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10},
		{X: 10, Y: 10}, {X: 10, Y: 20}, {X: 0, Y: 20},
	}}

	out := OffsetPolygon(p, 2)
	for _, pt := range p[0] {
		if pt.Within(out) == geom.Outside {
			t.Errorf("original vertex %+v outside the buffered polygon", pt)
		}
	}
	if out.Area() <= p.Area() {
		t.Errorf("buffered area %v not larger than original %v", out.Area(), p.Area())
	}
}

func TestOffsetConcaveNotchCrosses(t *testing.T) {
	// Square with a 4-wide notch, offset by 3: the shifted notch walls
	// at x=9 and x=11 pass each other, so the mitred ring
	// self-intersects. Bounds still grow by the offset on every side;
	// the downstream bounds clip resolves the crossing.
	p := geom.Polygon{{
		{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 20}, {X: 12, Y: 20},
		{X: 12, Y: 5}, {X: 8, Y: 5}, {X: 8, Y: 20}, {X: 0, Y: 20},
	}}

	out := OffsetPolygon(p, 3)
	if len(out) != 1 || len(out[0]) != 8 {
		t.Fatalf("expected one 8-vertex ring, got %+v", out)
	}

	b := FromGeom(out.Bounds())
	want := NewBounds(-3, -3, 23, 23)
	if !closeTo(b.MinX, want.MinX) || !closeTo(b.MinY, want.MinY) ||
		!closeTo(b.MaxX, want.MaxX) || !closeTo(b.MaxY, want.MaxY) {
		t.Errorf("bounds: got %+v, want %+v", b, want)
	}

	has := func(x, y float64) bool {
		for _, pt := range out[0] {
			if closeTo(pt.X, x) && closeTo(pt.Y, y) {
				return true
			}
		}
		return false
	}
	if !has(9, 8) || !has(11, 8) {
		t.Errorf("notch wall miters should land at (9, 8) and (11, 8), got %+v", out[0])
	}
}

func TestOffsetNegativeShrinks(t *testing.T) {
	rect := Box(0, 0, 10, 10)
	out := OffsetPolygon(rect, -2)

	b := FromGeom(out.Bounds())
	want := NewBounds(2, 2, 8, 8)
	if !closeTo(b.MinX, want.MinX) || !closeTo(b.MaxY, want.MaxY) {
		t.Errorf("bounds: got %+v, want %+v", b, want)
	}
}

func TestOffsetClosedRing(t *testing.T) {
	// Ring with an explicit closing vertex, as read from shapefiles.
	p := geom.Polygon{{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0},
	}}
	out := OffsetPolygon(p, 1)
	if len(out) != 1 || len(out[0]) != 4 {
		t.Fatalf("expected one 4-vertex ring, got %+v", out)
	}
}

func TestOffsetDegenerateRingDropped(t *testing.T) {
	p := geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 1}}}
	if out := OffsetPolygon(p, 1); len(out) != 0 {
		t.Errorf("degenerate ring should be dropped, got %+v", out)
	}
}

func TestAsPolygon(t *testing.T) {
	a := Box(0, 0, 10, 10)
	b := Box(20, 0, 30, 10)

	got := AsPolygon(geom.MultiPolygon{a, b})
	if len(got) != 2 {
		t.Fatalf("rings: got %d, want 2", len(got))
	}
	if !closeTo(got.Area(), 200) {
		t.Errorf("area: got %v, want 200", got.Area())
	}

	// Intersection returns the Polygonal interface; flattening must
	// recover the concrete rings.
	clipped := AsPolygon(a.Intersection(Box(5, 5, 15, 15)))
	if !closeTo(clipped.Area(), 25) {
		t.Errorf("clipped area: got %v, want 25", clipped.Area())
	}

	if AsPolygon(nil) != nil {
		t.Error("nil geometry should flatten to nil")
	}
}

func TestBoundsHelpers(t *testing.T) {
	b := NewBounds(1, 2, 4, 8)
	if b.Width() != 3 || b.Height() != 6 {
		t.Errorf("got %v x %v, want 3 x 6", b.Width(), b.Height())
	}

	if got := FromGeom(b.Polygon().Bounds()); got != b {
		t.Errorf("polygon bounds round trip: got %+v, want %+v", got, b)
	}
	if got := FromGeom(b.Geom().Bounds()); got != b {
		t.Errorf("geom bounds round trip: got %+v, want %+v", got, b)
	}
}
