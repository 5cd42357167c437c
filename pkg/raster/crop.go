package raster

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/lukeroth/gdal"

	"github.com/Akkete/tile-ortho/pkg/geo"
)

// Crop is a cropped, normalized 3-band tile held in memory, with the
// geotransform and projection needed to write it back out as a
// GeoTIFF.
type Crop struct {
	Width        int
	Height       int
	R, G, B      []uint8
	GeoTransform [6]float64
	Projection   string
}

// Bounds returns the geographic extent of the crop.
func (c *Crop) Bounds() geo.Bounds {
	x1, y1 := pixelToGeo(c.GeoTransform, 0, float64(c.Height-1))
	x2, y2 := pixelToGeo(c.GeoTransform, float64(c.Width-1), 0)
	return geo.NewBounds(x1, y1, x2, y2)
}

// CropPolygon crops the raster to a polygon given in geographic
// coordinates and normalizes the result to 3 bands: with 4 bands the
// last is treated as alpha, fully-transparent pixels are whitened and
// the alpha band dropped; 3 bands pass through. Any other band count,
// or a non-8-bit raster, is a configuration error for this tile.
// Pixels inside the crop window but outside a non-rectangular polygon
// are whitened as well.
func (d *Dataset) CropPolygon(poly geom.Polygon) (*Crop, error) {
	switch d.bands {
	case 3, 4:
	default:
		return nil, fmt.Errorf("unsupported band count: %d", d.bands)
	}
	if dt := d.ds.RasterBand(1).RasterDataType(); dt != gdal.Byte {
		return nil, fmt.Errorf("unsupported raster data type: %s", dt.Name())
	}

	pb := geo.FromGeom(poly.Bounds())
	x0, y0, w, h, err := d.pixelWindow(pb)
	if err != nil {
		return nil, err
	}

	bands := make([][]uint8, d.bands)
	for i := range bands {
		bands[i] = make([]uint8, w*h)
		if err := d.ds.RasterBand(i + 1).IO(gdal.Read, x0, y0, w, h, bands[i], w, h, 0, 0); err != nil {
			return nil, fmt.Errorf("reading band %d: %w", i+1, err)
		}
	}

	gt := d.windowGeoTransform(x0, y0)

	if !rectangular(poly, pb) {
		maskOutside(poly, bands, w, h, gt)
	}

	if d.bands == 4 {
		WhitenTransparent(bands[0], bands[1], bands[2], bands[3])
	}

	return &Crop{
		Width:        w,
		Height:       h,
		R:            bands[0],
		G:            bands[1],
		B:            bands[2],
		GeoTransform: gt,
		Projection:   d.proj,
	}, nil
}

// WriteGTiff writes the crop as a 3-band 8-bit GeoTIFF.
func (c *Crop) WriteGTiff(path string) error {
	driver, err := gdal.GetDriverByName("GTiff")
	if err != nil {
		return fmt.Errorf("GTiff driver: %w", err)
	}
	out := driver.Create(path, c.Width, c.Height, 3, gdal.Byte, nil)
	defer out.Close()

	if err := out.SetGeoTransform(c.GeoTransform); err != nil {
		return fmt.Errorf("setting geotransform on %s: %w", path, err)
	}
	if err := out.SetProjection(c.Projection); err != nil {
		return fmt.Errorf("setting projection on %s: %w", path, err)
	}
	for i, band := range [][]uint8{c.R, c.G, c.B} {
		if err := out.RasterBand(i + 1).IO(gdal.Write, 0, 0, c.Width, c.Height, band, c.Width, c.Height, 0, 0); err != nil {
			return fmt.Errorf("writing band %d of %s: %w", i+1, path, err)
		}
	}
	return nil
}

// pixelWindow converts a geographic extent to a clamped pixel window.
func (d *Dataset) pixelWindow(b geo.Bounds) (x0, y0, w, h int, err error) {
	px0, py0 := d.GeoToPixel(b.MinX, b.MaxY)
	px1, py1 := d.GeoToPixel(b.MaxX, b.MinY)
	x0 = clampInt(int(math.Floor(px0)), 0, d.width)
	y0 = clampInt(int(math.Floor(py0)), 0, d.height)
	x1 := clampInt(int(math.Ceil(px1)), 0, d.width)
	y1 := clampInt(int(math.Ceil(py1)), 0, d.height)
	if x1 <= x0 || y1 <= y0 {
		return 0, 0, 0, 0, fmt.Errorf("crop window outside raster extent")
	}
	return x0, y0, x1 - x0, y1 - y0, nil
}

func (d *Dataset) windowGeoTransform(x0, y0 int) [6]float64 {
	gt := d.gt
	gt[0], gt[3] = d.PixelToGeo(float64(x0), float64(y0))
	return gt
}

// rectangular reports whether the polygon fills its own bounding box,
// in which case per-pixel masking can be skipped.
func rectangular(poly geom.Polygon, b geo.Bounds) bool {
	boxArea := b.Width() * b.Height()
	return math.Abs(poly.Area()-boxArea) <= 1e-9*boxArea
}

// maskOutside whitens (or, with an alpha band, makes transparent)
// every pixel whose center falls outside the polygon.
func maskOutside(poly geom.Polygon, bands [][]uint8, w, h int, gt [6]float64) {
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			cx, cy := pixelToGeo(gt, float64(px)+0.5, float64(py)+0.5)
			if (geom.Point{X: cx, Y: cy}).Within(poly) != geom.Outside {
				continue
			}
			i := py*w + px
			if len(bands) == 4 {
				bands[3][i] = 0
			} else {
				bands[0][i] = 255
				bands[1][i] = 255
				bands[2][i] = 255
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
