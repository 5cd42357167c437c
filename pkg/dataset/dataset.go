// Package dataset builds a YOLO training dataset from an orthophoto,
// split-area polygons, and reference annotations: cropped tile images
// per split, one normalized label file per tile, and a data.yaml
// descriptor.
package dataset

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	"github.com/Akkete/tile-ortho/internal/utils"
	"github.com/Akkete/tile-ortho/pkg/geo"
	"github.com/Akkete/tile-ortho/pkg/grid"
	"github.com/Akkete/tile-ortho/pkg/preview"
	"github.com/Akkete/tile-ortho/pkg/raster"
	"github.com/Akkete/tile-ortho/pkg/tiling"
	"github.com/Akkete/tile-ortho/pkg/vector"
	"github.com/Akkete/tile-ortho/pkg/yolo"
)

// Options configures a dataset-preparation run.
type Options struct {
	OrthoPath       string
	AreasPath       string
	AnnotationsPath string
	OutDir          string
	Grid            tiling.GridParams
	// ClassField is the annotation attribute holding the class id.
	ClassField string
	// Classes is the ordered class taxonomy written to data.yaml.
	Classes []string
	// Preview, when non-nil, also writes thumbnails under
	// outdir/preview/<split>/.
	Preview *preview.Options
}

// annotation is one reference object. Embedding the polygon gives the
// Bounds method the r-tree needs.
type annotation struct {
	geom.Polygon
	class int
}

// Run executes the forward label-projection pipeline. Annotations are
// clipped geometrically to each outer tile (an object straddling the
// tile border contributes its visible part, matching the cropped
// image); deduplication across overlap zones happens later, at
// reconstruction, by inner-tile centroid containment.
func Run(opts Options) error {
	ds, err := raster.Open(opts.OrthoPath)
	if err != nil {
		return err
	}
	defer ds.Close()

	plan, err := tiling.BuildPlan(ds, opts.AreasPath, opts.Grid)
	if err != nil {
		return err
	}

	annotations, err := loadAnnotations(opts.AnnotationsPath, plan.Proj4, plan.Bounds, opts.ClassField)
	if err != nil {
		return err
	}

	if err := scaffold(opts, plan.Tiles); err != nil {
		return err
	}
	if err := writeDataYAML(filepath.Join(opts.OutDir, "data.yaml"), grid.Splits(plan.Tiles, opts.Grid.SplitField), opts.Classes); err != nil {
		return err
	}

	var failures []tiling.TileError
	for _, t := range plan.Tiles {
		if err := processTile(ds, t, annotations, opts); err != nil {
			log.Printf("tile %s: %v", t.ID, err)
			failures = append(failures, tiling.TileError{TileID: t.ID, Err: err})
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d tiles failed (first: %v)", len(failures), len(plan.Tiles), failures[0])
	}
	return nil
}

// loadAnnotations reads the reference annotations pre-filtered to the
// raster extent, reprojected to its CRS, and indexed for per-tile
// lookup.
func loadAnnotations(path, proj4 string, bounds geo.Bounds, classField string) (*rtree.Rtree, error) {
	features, err := vector.ReadPolygons(path, proj4, bounds, false, classField)
	if err != nil {
		return nil, err
	}
	tree := rtree.NewTree(25, 50)
	for _, f := range features {
		class, err := f.ClassOf(classField)
		if err != nil {
			return nil, fmt.Errorf("annotation from %s: %w", path, err)
		}
		tree.Insert(&annotation{Polygon: f.Geom, class: class})
	}
	log.Printf("loaded %d annotations from %s", len(features), path)
	return tree, nil
}

func scaffold(opts Options, tiles []grid.Tile) error {
	if err := utils.ReplaceDir(opts.OutDir); err != nil {
		return err
	}
	for _, split := range grid.Splits(tiles, opts.Grid.SplitField) {
		for _, sub := range []string{"images", "labels"} {
			if err := os.MkdirAll(filepath.Join(opts.OutDir, sub, split), 0755); err != nil {
				return err
			}
		}
		if opts.Preview != nil {
			if err := os.MkdirAll(filepath.Join(opts.OutDir, "preview", split), 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

// processTile crops one outer tile and appends a label line for every
// annotation that intersects it.
func processTile(ds *raster.Dataset, t grid.Tile, annotations *rtree.Rtree, opts Options) error {
	split := t.Fields[opts.Grid.SplitField]

	crop, err := ds.CropPolygon(t.Outer)
	if err != nil {
		return err
	}
	if err := crop.WriteGTiff(utils.TileImagePath(opts.OutDir, split, t.ID)); err != nil {
		return err
	}
	if opts.Preview != nil {
		path := filepath.Join(opts.OutDir, "preview", split,
			fmt.Sprintf("tile_%s.%s", t.ID, preview.Ext(*opts.Preview)))
		if err := preview.Write(crop, path, *opts.Preview); err != nil {
			return err
		}
	}

	// Labels are normalized against the outer tile's bounding box,
	// the same frame the detection model sees.
	outerBounds := geo.FromGeom(t.Outer.Bounds())
	var writer *yolo.Writer
	for _, item := range annotations.SearchIntersect(t.Outer.Bounds()) {
		ann := item.(*annotation)
		clipped := geo.AsPolygon(ann.Intersection(t.Outer))
		if len(clipped) == 0 || clipped.Area() == 0 {
			continue
		}
		if writer == nil {
			writer, err = yolo.NewWriter(utils.TileLabelPath(opts.OutDir, split, t.ID))
			if err != nil {
				return err
			}
		}
		rec := yolo.FromBBox(ann.class, geo.FromGeom(clipped.Bounds()), outerBounds)
		if err := writer.Append(rec); err != nil {
			writer.Close()
			return err
		}
	}
	if writer != nil {
		return writer.Close()
	}
	return nil
}
