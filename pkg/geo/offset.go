package geo

import (
	"math"

	"github.com/ctessum/geom"
)

// OffsetPolygon grows (distance > 0) or shrinks (distance < 0) a polygon
// using a square/mitre join, so rectangular rings stay rectangular: each
// edge is shifted outward along its normal and neighboring shifted edges
// are extended to their intersection point. Rings with fewer than three
// distinct vertices are dropped.
//
// A concave ring whose narrowest notch is less than twice the distance
// produces a self-intersecting result; callers clip the offset ring
// against the raster bounds, which resolves the crossings.
func OffsetPolygon(p geom.Polygon, distance float64) geom.Polygon {
	var out geom.Polygon
	for _, ring := range p {
		r := offsetRing(ring, distance)
		if len(r) >= 3 {
			out = append(out, r)
		}
	}
	return out
}

func offsetRing(ring []geom.Point, distance float64) []geom.Point {
	pts := dedupe(ring)
	if len(pts) < 3 {
		return nil
	}
	// Outward direction depends on winding order.
	d := distance
	if signedArea(pts) < 0 {
		d = -d
	}

	n := len(pts)
	out := make([]geom.Point, 0, n)
	for i := 0; i < n; i++ {
		prev := pts[(i+n-1)%n]
		cur := pts[i]
		next := pts[(i+1)%n]

		a1, a2 := shiftEdge(prev, cur, d)
		b1, b2 := shiftEdge(cur, next, d)

		ip, ok := lineIntersection(a1, a2, b1, b2)
		if !ok {
			// Collinear edges: the shifted vertex is shared.
			ip = b1
		}
		out = append(out, ip)
	}
	return out
}

// shiftEdge moves segment p1->p2 by d along its right-hand normal,
// which points outward for counter-clockwise rings when d > 0.
func shiftEdge(p1, p2 geom.Point, d float64) (geom.Point, geom.Point) {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	l := math.Hypot(dx, dy)
	nx := dy / l * d
	ny := -dx / l * d
	return geom.Point{X: p1.X + nx, Y: p1.Y + ny},
		geom.Point{X: p2.X + nx, Y: p2.Y + ny}
}

// lineIntersection intersects the infinite lines through a1-a2 and
// b1-b2. ok is false when the lines are (nearly) parallel.
func lineIntersection(a1, a2, b1, b2 geom.Point) (geom.Point, bool) {
	d1x, d1y := a2.X-a1.X, a2.Y-a1.Y
	d2x, d2y := b2.X-b1.X, b2.Y-b1.Y
	denom := d1x*d2y - d1y*d2x
	scale := math.Abs(d1x*d2x) + math.Abs(d1y*d2y) + math.Abs(d1x*d2y) + math.Abs(d1y*d2x)
	if math.Abs(denom) <= 1e-12*scale {
		return geom.Point{}, false
	}
	t := ((b1.X-a1.X)*d2y - (b1.Y-a1.Y)*d2x) / denom
	return geom.Point{X: a1.X + t*d1x, Y: a1.Y + t*d1y}, true
}

func signedArea(pts []geom.Point) float64 {
	var s float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		s += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return s / 2
}

// dedupe removes repeated consecutive vertices and an explicit closing
// vertex equal to the first.
func dedupe(ring []geom.Point) []geom.Point {
	var pts []geom.Point
	for _, p := range ring {
		if len(pts) > 0 && samePoint(pts[len(pts)-1], p) {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) > 1 && samePoint(pts[0], pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}
	return pts
}

func samePoint(a, b geom.Point) bool {
	return a.X == b.X && a.Y == b.Y
}
