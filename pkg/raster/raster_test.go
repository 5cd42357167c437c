package raster

import (
	"math"
	"testing"

	"github.com/ctessum/geom"

	"github.com/Akkete/tile-ortho/pkg/geo"
)

// north-up geotransform: origin (500000, 6700000), 0.5 m pixels.
var northUp = [6]float64{500000, 0.5, 0, 6700000, 0, -0.5}

// rotated geotransform, to check nothing assumes north-up.
var rotated = [6]float64{1000, 0.4, 0.3, 2000, 0.3, -0.4}

func TestPixelGeoRoundTrip(t *testing.T) {
	for _, gt := range [][6]float64{northUp, rotated} {
		for _, px := range [][2]float64{{0, 0}, {100, 200}, {895, 895}, {12.5, 67.25}} {
			x, y := pixelToGeo(gt, px[0], px[1])
			gotX, gotY := geoToPixel(gt, x, y)
			if math.Abs(gotX-px[0]) > 1e-9 || math.Abs(gotY-px[1]) > 1e-9 {
				t.Errorf("gt %v: pixel (%v, %v) round-tripped to (%v, %v)", gt, px[0], px[1], gotX, gotY)
			}
		}
	}
}

func TestPixelToGeoNorthUp(t *testing.T) {
	x, y := pixelToGeo(northUp, 0, 0)
	if x != 500000 || y != 6700000 {
		t.Errorf("origin: got (%v, %v)", x, y)
	}
	x, y = pixelToGeo(northUp, 100, 200)
	if x != 500050 || y != 6699900 {
		t.Errorf("pixel (100, 200): got (%v, %v), want (500050, 6699900)", x, y)
	}
}

func TestWhitenTransparent(t *testing.T) {
	r := []uint8{10, 20, 30, 40}
	g := []uint8{11, 21, 31, 41}
	b := []uint8{12, 22, 32, 42}
	a := []uint8{255, 0, 128, 0}

	WhitenTransparent(r, g, b, a)

	for _, i := range []int{1, 3} {
		if r[i] != 255 || g[i] != 255 || b[i] != 255 {
			t.Errorf("transparent pixel %d: got (%d, %d, %d), want white", i, r[i], g[i], b[i])
		}
	}
	for _, i := range []int{0, 2} {
		if r[i] == 255 || g[i] == 255 || b[i] == 255 {
			t.Errorf("opaque pixel %d was modified", i)
		}
	}
}

func TestCropBounds(t *testing.T) {
	c := &Crop{Width: 100, Height: 200, GeoTransform: northUp}
	b := c.Bounds()

	// Corner pixels (0, height-1) and (width-1, 0).
	if b.MinX != 500000 || b.MaxY != 6700000 {
		t.Errorf("upper-left: got (%v, %v)", b.MinX, b.MaxY)
	}
	if b.MaxX != 500000+99*0.5 || b.MinY != 6700000-199*0.5 {
		t.Errorf("lower-right: got (%v, %v)", b.MaxX, b.MinY)
	}
}

func TestRectangular(t *testing.T) {
	box := geo.Box(0, 0, 10, 10)
	if !rectangular(box, geo.FromGeom(box.Bounds())) {
		t.Error("axis-aligned box should be rectangular")
	}

	tri := geom.Polygon{{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}}
	if rectangular(tri, geo.FromGeom(tri.Bounds())) {
		t.Error("triangle should not be rectangular")
	}
}

func TestMaskOutsideWhitensOutsidePolygon(t *testing.T) {
	// 4x4 window at origin with unit pixels; polygon covers the left
	// half only.
	gt := [6]float64{0, 1, 0, 4, 0, -1}
	half := geo.Box(0, 0, 2, 4)

	bands := [][]uint8{make([]uint8, 16), make([]uint8, 16), make([]uint8, 16)}
	maskOutside(half, bands, 4, 4, gt)

	for py := 0; py < 4; py++ {
		for px := 0; px < 4; px++ {
			i := py*4 + px
			inside := px < 2
			if inside && bands[0][i] != 0 {
				t.Errorf("pixel (%d, %d) inside the polygon was whitened", px, py)
			}
			if !inside && bands[0][i] != 255 {
				t.Errorf("pixel (%d, %d) outside the polygon was kept", px, py)
			}
		}
	}
}

func TestMaskOutsideAlphaBand(t *testing.T) {
	gt := [6]float64{0, 1, 0, 2, 0, -1}
	left := geo.Box(0, 0, 1, 2)

	bands := make([][]uint8, 4)
	for i := range bands {
		bands[i] = []uint8{9, 9, 9, 9}
	}
	maskOutside(left, bands, 2, 2, gt)

	// With an alpha band only alpha changes; whitening happens later.
	want := []uint8{9, 0, 9, 0}
	for i, v := range bands[3] {
		if v != want[i] {
			t.Errorf("alpha[%d]: got %d, want %d", i, v, want[i])
		}
	}
	if bands[0][1] != 9 {
		t.Error("color bands should be untouched when an alpha band exists")
	}
}
