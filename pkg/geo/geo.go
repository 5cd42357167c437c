// Package geo provides the small geometric operations the tiling engine
// needs on top of github.com/ctessum/geom: bounds construction and a
// square-join (mitred) polygon offset for the tile overlap buffer.
package geo

import (
	"github.com/ctessum/geom"
)

// Bounds is a geographic bounding box (min_x, min_y, max_x, max_y).
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewBounds builds a Bounds from its four coordinates.
func NewBounds(minX, minY, maxX, maxY float64) Bounds {
	return Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// FromGeom converts a geom.Bounds to a Bounds.
func FromGeom(b *geom.Bounds) Bounds {
	return Bounds{MinX: b.Min.X, MinY: b.Min.Y, MaxX: b.Max.X, MaxY: b.Max.Y}
}

// Geom converts b to a *geom.Bounds, which satisfies geom.Polygonal.
func (b Bounds) Geom() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: b.MinX, Y: b.MinY},
		Max: geom.Point{X: b.MaxX, Y: b.MaxY},
	}
}

// Width returns max_x - min_x.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns max_y - min_y.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Polygon returns the bounding box as a closed counter-clockwise ring.
func (b Bounds) Polygon() geom.Polygon {
	return geom.Polygon{{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}}
}

// Box builds an axis-aligned rectangular polygon from corner coordinates.
func Box(minX, minY, maxX, maxY float64) geom.Polygon {
	return NewBounds(minX, minY, maxX, maxY).Polygon()
}

// AsPolygon flattens any polygonal geometry into a single multi-ring
// polygon. Clip operations such as Intersection return the Polygonal
// interface; this recovers the concrete rings. A nil geometry flattens
// to an empty polygon.
func AsPolygon(pg geom.Polygonal) geom.Polygon {
	if pg == nil {
		return nil
	}
	var poly geom.Polygon
	for _, p := range pg.Polygons() {
		poly = append(poly, p...)
	}
	return poly
}
