// Package raster wraps GDAL raster access for the tiling pipelines:
// opening orthophotos, mapping between pixel and geographic
// coordinates, cropping tiles by geographic polygon, and normalizing
// the pixel format for detection-model input.
package raster

import (
	"fmt"
	"math"

	"github.com/lukeroth/gdal"

	"github.com/Akkete/tile-ortho/pkg/geo"
)

// Dataset is an opened raster with its dimensions and geotransform
// cached.
type Dataset struct {
	ds     gdal.Dataset
	width  int
	height int
	bands  int
	gt     [6]float64
	proj   string
}

// Open opens a raster file read-only.
func Open(path string) (*Dataset, error) {
	ds, err := gdal.Open(path, gdal.ReadOnly)
	if err != nil {
		return nil, fmt.Errorf("opening raster %s: %w", path, err)
	}
	return &Dataset{
		ds:     ds,
		width:  ds.RasterXSize(),
		height: ds.RasterYSize(),
		bands:  ds.RasterCount(),
		gt:     ds.GeoTransform(),
		proj:   ds.Projection(),
	}, nil
}

// Close releases the underlying dataset.
func (d *Dataset) Close() {
	d.ds.Close()
}

// Width returns the raster width in pixels.
func (d *Dataset) Width() int { return d.width }

// Height returns the raster height in pixels.
func (d *Dataset) Height() int { return d.height }

// Bands returns the raster band count.
func (d *Dataset) Bands() int { return d.bands }

// Projection returns the raster's spatial reference as WKT.
func (d *Dataset) Projection() string { return d.proj }

// Proj4 returns the raster's spatial reference in proj4 form, for
// reprojecting vector data into the raster CRS.
func (d *Dataset) Proj4() (string, error) {
	sr := gdal.CreateSpatialReference(d.proj)
	p, err := sr.ToProj4()
	if err != nil {
		return "", fmt.Errorf("converting raster CRS to proj4: %w", err)
	}
	return p, nil
}

// PixelToGeo maps a pixel coordinate through the raster's affine
// geotransform.
func (d *Dataset) PixelToGeo(px, py float64) (x, y float64) {
	return pixelToGeo(d.gt, px, py)
}

// GeoToPixel inverts the affine geotransform.
func (d *Dataset) GeoToPixel(x, y float64) (px, py float64) {
	return geoToPixel(d.gt, x, y)
}

// Bounds maps the pixel corners (0, height-1) and (width-1, 0) through
// the geotransform and flattens them into (min_x, min_y, max_x, max_y).
// This is the canonical extent every downstream clip and prefilter
// uses.
func (d *Dataset) Bounds() geo.Bounds {
	x1, y1 := d.PixelToGeo(0, float64(d.height-1))
	x2, y2 := d.PixelToGeo(float64(d.width-1), 0)
	return geo.NewBounds(x1, y1, x2, y2)
}

// Scale returns the absolute pixel size in geographic units per axis.
func (d *Dataset) Scale() (sx, sy float64) {
	return math.Abs(d.gt[1]), math.Abs(d.gt[5])
}

func pixelToGeo(gt [6]float64, px, py float64) (x, y float64) {
	x = gt[0] + px*gt[1] + py*gt[2]
	y = gt[3] + px*gt[4] + py*gt[5]
	return x, y
}

func geoToPixel(gt [6]float64, x, y float64) (px, py float64) {
	det := gt[1]*gt[5] - gt[2]*gt[4]
	px = ((x-gt[0])*gt[5] - (y-gt[3])*gt[2]) / det
	py = ((y-gt[3])*gt[1] - (x-gt[0])*gt[4]) / det
	return px, py
}
