// Package yolo converts between geographic bounding boxes and
// YOLO-format normalized labels.
//
// A label line is "class_id x_center y_center width height" with the
// last four values in [0,1] relative to a tile image's bounding box.
// YOLO measures y downward from the top of the image while geographic
// y grows upward, so every conversion flips the vertical axis.
package yolo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ctessum/geom"

	"github.com/Akkete/tile-ortho/pkg/geo"
)

// ovalSegments is the number of vertices used to approximate an
// ellipse when rebuilding oval detections, matching a unit-circle
// buffer with 4 segments per quadrant.
const ovalSegments = 16

// Record is one normalized YOLO label.
type Record struct {
	Class   int
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

// FromBBox converts an object bounding box to a Record normalized
// against the image bounding box. The object box is expected to lie
// inside the image box.
func FromBBox(class int, object, image geo.Bounds) Record {
	w := image.Width()
	h := image.Height()
	minX := (object.MinX - image.MinX) / w
	maxX := (object.MaxX - image.MinX) / w
	// Vertical flip: the geographic top edge becomes y=0.
	minY := (image.MaxY - object.MaxY) / h
	maxY := (image.MaxY - object.MinY) / h
	return Record{
		Class:   class,
		XCenter: (minX + maxX) / 2,
		YCenter: (minY + maxY) / 2,
		Width:   maxX - minX,
		Height:  maxY - minY,
	}
}

// GeoCenter returns the geographic center and size of the record
// relative to the image bounding box, undoing the vertical flip.
func (r Record) GeoCenter(image geo.Bounds) (cx, cy, w, h float64) {
	cx = image.MinX + r.XCenter*image.Width()
	cy = image.MaxY - r.YCenter*image.Height()
	w = r.Width * image.Width()
	h = r.Height * image.Height()
	return cx, cy, w, h
}

// BBox rebuilds the axis-aligned geographic rectangle of the record
// relative to the image bounding box.
func (r Record) BBox(image geo.Bounds) geom.Polygon {
	cx, cy, w, h := r.GeoCenter(image)
	return geo.Box(cx-w/2, cy-h/2, cx+w/2, cy+h/2)
}

// Oval rebuilds the record as an ellipse-like polygon: a unit-circle
// buffer scaled by the half-width and half-height. An approximation,
// not an exact ellipse.
func (r Record) Oval(image geo.Bounds) geom.Polygon {
	cx, cy, w, h := r.GeoCenter(image)
	circle := geom.Point{}.Buffer(1, ovalSegments)
	for _, ring := range circle {
		for i, p := range ring {
			ring[i] = geom.Point{X: cx + w/2*p.X, Y: cy + h/2*p.Y}
		}
	}
	return circle
}

// String formats the record as a label line (no trailing newline).
// Values use the shortest decimal representation that round-trips.
func (r Record) String() string {
	return fmt.Sprintf("%d %s %s %s %s",
		r.Class,
		formatFloat(r.XCenter),
		formatFloat(r.YCenter),
		formatFloat(r.Width),
		formatFloat(r.Height),
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseLine parses one label line. Lines must have exactly five
// numeric fields; anything else is rejected.
func ParseLine(line string) (Record, error) {
	parts := strings.Fields(line)
	if len(parts) != 5 {
		return Record{}, fmt.Errorf("expected 5 fields, got %d", len(parts))
	}
	class, err := strconv.Atoi(parts[0])
	if err != nil {
		return Record{}, fmt.Errorf("invalid class id %q: %w", parts[0], err)
	}
	var vals [4]float64
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Record{}, fmt.Errorf("invalid value %q: %w", p, err)
		}
		vals[i] = v
	}
	return Record{
		Class:   class,
		XCenter: vals[0],
		YCenter: vals[1],
		Width:   vals[2],
		Height:  vals[3],
	}, nil
}
