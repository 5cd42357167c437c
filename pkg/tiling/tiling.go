// Package tiling drives the tile grid generator against a source
// orthophoto: it plans the tile set for the raster, crops each outer
// tile to a normalized 3-band image, and persists the tile geometries
// as shapefiles for later reconstruction.
package tiling

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Akkete/tile-ortho/internal/utils"
	"github.com/Akkete/tile-ortho/pkg/geo"
	"github.com/Akkete/tile-ortho/pkg/grid"
	"github.com/Akkete/tile-ortho/pkg/raster"
	"github.com/Akkete/tile-ortho/pkg/vector"
)

// GridParams are the tile grid parameters shared by the tiling and
// dataset pipelines.
type GridParams struct {
	// MaxTileSizePx bounds the outer tile side length in pixels.
	MaxTileSizePx int
	// BufferMeters is the overlap buffer in geographic units.
	BufferMeters float64
	// SplitField is the area attribute naming the dataset split.
	SplitField string
}

// TileError records a failure confined to one tile. The run continues
// past it; failures are reported together at the end.
type TileError struct {
	TileID string
	Err    error
}

func (e TileError) Error() string {
	return fmt.Sprintf("tile %s: %v", e.TileID, e.Err)
}

// Plan is the tile set computed for one raster.
type Plan struct {
	Bounds geo.Bounds
	Proj4  string
	Tiles  []grid.Tile
}

// BuildPlan reads the split areas, clips them to the raster extent,
// and generates buffered tiles covering them.
//
// The maximum inner tile size is derived from the pixel-denominated
// outer size: maxInner = scale*px - 2*buffer. The buffer precondition
// (2*buffer strictly below the maximum outer dimension) is checked
// here, before any output is written.
func BuildPlan(ds *raster.Dataset, areasPath string, p GridParams) (*Plan, error) {
	bounds := ds.Bounds()
	proj4, err := ds.Proj4()
	if err != nil {
		return nil, err
	}
	log.Printf("raster CRS: %s", proj4)

	features, err := vector.ReadPolygons(areasPath, proj4, bounds, true, p.SplitField)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("no split areas from %s overlap the raster extent", areasPath)
	}

	sx, sy := ds.Scale()
	maxOuterW := sx * float64(p.MaxTileSizePx)
	maxOuterH := sy * float64(p.MaxTileSizePx)
	if 2*p.BufferMeters >= maxOuterW || 2*p.BufferMeters >= maxOuterH {
		return nil, fmt.Errorf(
			"maximum tile size (%g x %g geographic units) must exceed twice the buffer (%g)",
			maxOuterW, maxOuterH, p.BufferMeters)
	}

	areas := make([]grid.Area, len(features))
	for i, f := range features {
		areas[i] = grid.Area{Fields: f.Fields, Geom: f.Geom}
	}

	tiles := grid.Generate(areas, maxOuterW-2*p.BufferMeters, maxOuterH-2*p.BufferMeters)
	grid.ExpandOuter(tiles, p.BufferMeters, bounds)
	log.Printf("generated %d tiles from %d areas", len(tiles), len(areas))

	return &Plan{Bounds: bounds, Proj4: proj4, Tiles: tiles}, nil
}

// Options configures a tiling-only run.
type Options struct {
	OrthoPath string
	AreasPath string
	OutDir    string
	Grid      GridParams
}

// Run crops the orthophoto into overlapping tiles under
// outdir/images/<split>/ and writes the tile geometries to
// outdir/tiles/tiles_inner.shp and tiles_outer.shp. Per-tile crop
// failures do not abort the run; a summary error is returned if any
// occurred.
func Run(opts Options) error {
	ds, err := raster.Open(opts.OrthoPath)
	if err != nil {
		return err
	}
	defer ds.Close()

	plan, err := BuildPlan(ds, opts.AreasPath, opts.Grid)
	if err != nil {
		return err
	}

	if err := utils.ReplaceDir(opts.OutDir); err != nil {
		return err
	}
	tilesDir := filepath.Join(opts.OutDir, "tiles")
	if err := os.MkdirAll(tilesDir, 0755); err != nil {
		return err
	}
	for _, split := range grid.Splits(plan.Tiles, opts.Grid.SplitField) {
		if err := os.MkdirAll(filepath.Join(opts.OutDir, "images", split), 0755); err != nil {
			return err
		}
	}

	var failures []TileError
	for _, t := range plan.Tiles {
		split := t.Fields[opts.Grid.SplitField]
		if err := cropTile(ds, t, utils.TileImagePath(opts.OutDir, split, t.ID)); err != nil {
			log.Printf("tile %s: %v", t.ID, err)
			failures = append(failures, TileError{TileID: t.ID, Err: err})
		}
	}

	if err := vector.WriteTiles(filepath.Join(tilesDir, "tiles_inner.shp"), plan.Tiles, false, opts.Grid.SplitField); err != nil {
		return err
	}
	if err := vector.WriteTiles(filepath.Join(tilesDir, "tiles_outer.shp"), plan.Tiles, true, opts.Grid.SplitField); err != nil {
		return err
	}

	return summarize(failures, len(plan.Tiles))
}

func cropTile(ds *raster.Dataset, t grid.Tile, path string) error {
	crop, err := ds.CropPolygon(t.Outer)
	if err != nil {
		return err
	}
	return crop.WriteGTiff(path)
}

func summarize(failures []TileError, total int) error {
	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d tiles failed (first: %v)", len(failures), total, failures[0])
}
