// Package grid partitions named geographic areas into a regular grid
// of inner tiles bounded by a maximum size, and expands each inner
// tile outward into an overlapping outer tile clipped to the raster
// extent.
package grid

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/Akkete/tile-ortho/pkg/geo"
)

// Area is a named region to be tiled: one polygon plus arbitrary
// attribute fields (such as the dataset split) keyed by name.
type Area struct {
	Fields map[string]string
	Geom   geom.Polygon
}

// Tile is one generated grid cell. Inner is the authoritative,
// non-overlapping region used for deduplication; Outer is Inner grown
// by the overlap buffer and is the region actually cropped. Fields are
// inherited unchanged from the parent Area.
type Tile struct {
	ID     string
	Fields map[string]string
	Inner  geom.Polygon
	Outer  geom.Polygon
}

// ID returns the deterministic tile identifier for a grid cell with
// the given lower-left corner: the floored geographic coordinates
// joined as "{minx}_{miny}". Truncation means two cells less than one
// geographic unit apart can collide; callers choose tile sizes well
// above one unit.
func ID(minX, minY float64) string {
	return fmt.Sprintf("%d_%d", int(math.Floor(minX)), int(math.Floor(minY)))
}

// Generate splits every area independently into an n_cols x n_rows
// grid of equal-sized cells no larger than maxTileWidth x
// maxTileHeight, clips each cell to the area polygon, and emits one
// tile per cell with a non-empty intersection. Cell order is
// column-major, so tile IDs are reproducible across runs.
//
// A degenerate area whose bounding box has zero width or height
// collapses to a 1x1 grid; it is not an error.
func Generate(areas []Area, maxTileWidth, maxTileHeight float64) []Tile {
	var tiles []Tile
	for _, area := range areas {
		b := geo.FromGeom(area.Geom.Bounds())
		nCols := int(math.Ceil(b.Width() / maxTileWidth))
		nRows := int(math.Ceil(b.Height() / maxTileHeight))
		if nCols < 1 {
			nCols = 1
		}
		if nRows < 1 {
			nRows = 1
		}
		// Equal subdivision: cells exactly tile the bounding box and
		// never exceed the maximum dimensions.
		tileWidth := b.Width() / float64(nCols)
		tileHeight := b.Height() / float64(nRows)

		for i := 0; i < nCols; i++ {
			for j := 0; j < nRows; j++ {
				minX := b.MinX + float64(i)*tileWidth
				minY := b.MinY + float64(j)*tileHeight
				cell := geo.Box(minX, minY, minX+tileWidth, minY+tileHeight)
				inner := geo.AsPolygon(cell.Intersection(area.Geom))
				if len(inner) == 0 || inner.Area() == 0 {
					// Cell entirely outside the area polygon.
					continue
				}
				tiles = append(tiles, Tile{
					ID:     ID(minX, minY),
					Fields: area.Fields,
					Inner:  inner,
				})
			}
		}
	}
	return tiles
}

// ExpandOuter fills in each tile's outer geometry: the inner geometry
// buffered outward by distance with a square join, then clipped to the
// raster bounds so no outer tile extends past the source raster.
// The pipeline validates 2*distance against the maximum outer tile
// dimension before calling this.
func ExpandOuter(tiles []Tile, distance float64, rasterBounds geo.Bounds) {
	clip := rasterBounds.Geom()
	for i := range tiles {
		outer := geo.OffsetPolygon(tiles[i].Inner, distance)
		tiles[i].Outer = geo.AsPolygon(outer.Intersection(clip))
	}
}

// Splits returns the distinct values of the named field across tiles,
// in first-seen order.
func Splits(tiles []Tile, field string) []string {
	var splits []string
	seen := make(map[string]bool)
	for _, t := range tiles {
		v := t.Fields[field]
		if !seen[v] {
			seen[v] = true
			splits = append(splits, v)
		}
	}
	return splits
}
