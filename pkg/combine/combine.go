// Package combine reassembles per-tile YOLO detection outputs into one
// geographic detections shapefile. Overlapping outer tiles see the
// same objects more than once; a detection is attributed to exactly
// one tile by keeping it only where its centroid falls inside that
// tile's inner geometry.
package combine

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/ctessum/geom"

	"github.com/Akkete/tile-ortho/internal/utils"
	"github.com/Akkete/tile-ortho/pkg/geo"
	"github.com/Akkete/tile-ortho/pkg/raster"
	"github.com/Akkete/tile-ortho/pkg/tiling"
	"github.com/Akkete/tile-ortho/pkg/vector"
	"github.com/Akkete/tile-ortho/pkg/yolo"
)

// Shape selects how a normalized detection is rebuilt as geometry.
// Resolved once at configuration time.
type Shape int

const (
	// Rectangle rebuilds the axis-aligned bounding box.
	Rectangle Shape = iota
	// Oval rebuilds a low-resolution ellipse approximation.
	Oval
)

// ParseShape resolves a shape name. Valid names are "rectangle" and
// "oval".
func ParseShape(s string) (Shape, error) {
	switch s {
	case "rectangle":
		return Rectangle, nil
	case "oval":
		return Oval, nil
	default:
		return 0, fmt.Errorf("shape should be rectangle or oval, got %q", s)
	}
}

// Options configures a reconstruction run.
type Options struct {
	// LabelsDir holds per-tile YOLO output files tile_<id>.txt.
	LabelsDir string
	// ImagesDir holds the cropped tile images tile_<id>.tif.
	ImagesDir string
	// TilesPath is the inner-tile shapefile written by the tiling run.
	TilesPath string
	// OutFile is the detections shapefile to write.
	OutFile string
	Shape   Shape
}

// Run rebuilds detections from every tile with both an image and a
// label file, dedups them by inner-tile centroid containment, and
// writes the result. Tiles missing either file are skipped, and a
// failure on one tile does not abort the run: the remaining tiles are
// still processed and written, with the failures reported together in
// a summary error.
func Run(opts Options) error {
	tiles, err := vector.ReadAll(opts.TilesPath, "TileID")
	if err != nil {
		return err
	}

	var detections []vector.Detection
	var failures []tiling.TileError
	for _, tile := range tiles {
		tileID := tile.Fields["TileID"]
		dets, err := tileDetections(tile, tileID, opts)
		if err != nil {
			log.Printf("tile %s: %v", tileID, err)
			failures = append(failures, tiling.TileError{TileID: tileID, Err: err})
			continue
		}
		detections = append(detections, dets...)
	}

	log.Printf("reconstructed %d detections from %d tiles", len(detections), len(tiles))
	if err := vector.WriteDetections(opts.OutFile, detections); err != nil {
		return err
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d tiles failed (first: %v)", len(failures), len(tiles), failures[0])
	}
	return nil
}

func tileDetections(tile vector.Feature, tileID string, opts Options) ([]vector.Detection, error) {
	imagePath := filepath.Join(opts.ImagesDir, fmt.Sprintf("tile_%s.tif", tileID))
	labelsPath := filepath.Join(opts.LabelsDir, fmt.Sprintf("tile_%s.txt", tileID))
	if !utils.FileExists(imagePath) || !utils.FileExists(labelsPath) {
		// No detections for this tile, or the crop failed earlier.
		return nil, nil
	}

	ds, err := raster.Open(imagePath)
	if err != nil {
		return nil, err
	}
	bounds := ds.Bounds()
	ds.Close()

	records, rejected, err := yolo.ReadFile(labelsPath)
	if err != nil {
		return nil, err
	}
	if rejected > 0 {
		log.Printf("tile %s: rejected %d malformed label lines", tileID, rejected)
	}

	return reconstruct(records, bounds, tile.Geom, opts.Shape), nil
}

// reconstruct rebuilds records as geographic detections and keeps only
// those whose centroid falls inside the tile's inner geometry: the
// tile whose inner region holds the detection's center owns it, even
// though neighboring outer tiles saw it too.
func reconstruct(records []yolo.Record, bounds geo.Bounds, inner geom.Polygon, shape Shape) []vector.Detection {
	var detections []vector.Detection
	for _, r := range records {
		var poly geom.Polygon
		switch shape {
		case Oval:
			poly = r.Oval(bounds)
		default:
			poly = r.BBox(bounds)
		}
		if poly.Centroid().Within(inner) != geom.Inside {
			continue
		}
		detections = append(detections, vector.Detection{Geom: poly, Class: r.Class})
	}
	return detections
}
