// Package preview writes downsampled thumbnails of cropped tiles so a
// tiling run can be inspected without GIS tooling. Previews sit next
// to the YOLO layout under preview/<split>/ and are not part of it.
package preview

import (
	"image"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/Akkete/tile-ortho/pkg/raster"
)

// Options controls thumbnail generation.
type Options struct {
	Format   string // png|jpg|webp
	Quality  int    // JPEG/WebP quality (1-100)
	Lossless bool   // WebP lossless mode
	MaxDim   int    // long-side limit in pixels, 0 keeps the original size
}

// Write renders a cropped tile as a thumbnail image file.
func Write(c *raster.Crop, path string, opts Options) error {
	img := toImage(c)
	if opts.MaxDim > 0 {
		b := img.Bounds()
		if w, h := b.Dx(), b.Dy(); w > opts.MaxDim || h > opts.MaxDim {
			if w >= h {
				img = imaging.Resize(img, opts.MaxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, opts.MaxDim, imaging.Lanczos)
			}
		}
	}
	return save(img, path, opts)
}

// Ext returns the file extension for the configured format.
func Ext(opts Options) string {
	switch strings.ToLower(opts.Format) {
	case "webp":
		return "webp"
	case "png":
		return "png"
	default:
		return "jpg"
	}
}

func save(img image.Image, path string, opts Options) error {
	switch strings.ToLower(opts.Format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		wopts := &webp.Options{Lossless: opts.Lossless, Quality: float32(opts.Quality)}
		return webp.Encode(f, img, wopts)
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(opts.Quality))
	}
}

func toImage(c *raster.Crop) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
	for i := 0; i < c.Width*c.Height; i++ {
		img.Pix[i*4+0] = c.R[i]
		img.Pix[i*4+1] = c.G[i]
		img.Pix[i*4+2] = c.B[i]
		img.Pix[i*4+3] = 255
	}
	return img
}
