// Package vector reads and writes the shapefile inputs and outputs of
// the tiling pipelines: split areas, reference annotations, tile
// geometries, and reconstructed detections. Reads are pre-filtered
// with the raster's bounding box and reprojected into the raster CRS.
package vector

import (
	"fmt"
	"strconv"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"

	"github.com/Akkete/tile-ortho/pkg/geo"
	"github.com/Akkete/tile-ortho/pkg/grid"
)

// Feature is one polygonal shapefile row: geometry plus the requested
// attribute fields keyed by name.
type Feature struct {
	Fields map[string]string
	Geom   geom.Polygon
}

// Detection is one reconstructed object: geometry plus its class id.
type Detection struct {
	Geom  geom.Polygon
	Class int
}

// ReadPolygons reads polygonal features from a shapefile, carrying the
// named attribute fields. Geometries are reprojected to proj4 (skipped
// when proj4 is empty), discarded unless they overlap bounds, and,
// when clip is set, intersected with bounds.
func ReadPolygons(path, proj4 string, bounds geo.Bounds, clip bool, fields ...string) ([]Feature, error) {
	return readPolygons(path, proj4, bounds.Geom(), clip, fields)
}

// ReadAll reads every polygonal feature from a shapefile without
// reprojection or extent filtering. Used for tile shapefiles, which
// are already in the raster CRS.
func ReadAll(path string, fields ...string) ([]Feature, error) {
	return readPolygons(path, "", nil, false, fields)
}

func readPolygons(path, proj4 string, boundsGeom *geom.Bounds, clip bool, fields []string) ([]Feature, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile %s: %w", path, err)
	}
	defer d.Close()

	t, err := transformTo(d, proj4)
	if err != nil {
		return nil, fmt.Errorf("shapefile %s: %w", path, err)
	}
	var features []Feature
	for {
		g, flds, more := d.DecodeRowFields(fields...)
		if !more {
			break
		}
		if t != nil {
			if g, err = g.Transform(t); err != nil {
				return nil, fmt.Errorf("reprojecting feature from %s: %w", path, err)
			}
		}
		pg, ok := g.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("shapefile %s: expected polygons, got %T", path, g)
		}
		poly := geo.AsPolygon(pg)
		if boundsGeom != nil && !boundsGeom.Overlaps(poly.Bounds()) {
			continue
		}
		if clip {
			poly = geo.AsPolygon(poly.Intersection(boundsGeom))
			if len(poly) == 0 {
				continue
			}
		}
		features = append(features, Feature{Fields: flds, Geom: poly})
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("reading shapefile %s: %w", path, err)
	}
	return features, nil
}

// ClassOf parses the integer class id carried in a feature's attribute
// field. DBF numeric columns may decode with a decimal part.
func (f Feature) ClassOf(field string) (int, error) {
	s, ok := f.Fields[field]
	if !ok {
		return 0, fmt.Errorf("missing attribute column %s", field)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid class value %q: %w", s, err)
	}
	return int(v), nil
}

// tileRow is the shapefile schema for persisted tiles.
type tileRow struct {
	Geom   geom.Polygon
	TileID string
	Split  string
}

// WriteTiles persists tile geometries with their id and split. outer
// selects the outer geometry instead of the inner one.
func WriteTiles(path string, tiles []grid.Tile, outer bool, splitField string) error {
	e, err := shp.NewEncoder(path, tileRow{})
	if err != nil {
		return fmt.Errorf("creating shapefile %s: %w", path, err)
	}
	defer e.Close()

	for _, t := range tiles {
		g := t.Inner
		if outer {
			g = t.Outer
		}
		row := tileRow{Geom: g, TileID: t.ID, Split: t.Fields[splitField]}
		if err := e.Encode(row); err != nil {
			return fmt.Errorf("writing tile %s to %s: %w", t.ID, path, err)
		}
	}
	return nil
}

// detectionRow is the shapefile schema for reconstructed detections.
type detectionRow struct {
	Geom  geom.Polygon
	Class int
}

// WriteDetections persists reconstructed detections.
func WriteDetections(path string, detections []Detection) error {
	e, err := shp.NewEncoder(path, detectionRow{})
	if err != nil {
		return fmt.Errorf("creating shapefile %s: %w", path, err)
	}
	defer e.Close()

	for i, det := range detections {
		if err := e.Encode(detectionRow{Geom: det.Geom, Class: det.Class}); err != nil {
			return fmt.Errorf("writing detection %d to %s: %w", i, path, err)
		}
	}
	return nil
}

// transformTo builds the reprojection from the shapefile's CRS to the
// proj4 target, or nil when no reprojection was requested.
func transformTo(d *shp.Decoder, proj4 string) (proj.Transformer, error) {
	if proj4 == "" {
		return nil, nil
	}
	src, err := d.SR()
	if err != nil {
		return nil, fmt.Errorf("reading CRS: %w", err)
	}
	dst, err := proj.Parse(proj4)
	if err != nil {
		return nil, fmt.Errorf("parsing target CRS %q: %w", proj4, err)
	}
	return src.NewTransform(dst)
}
