package raster

// WhitenTransparent replaces the RGB values of every fully-transparent
// pixel (alpha == 0) with white, in place. Detection models expect
// 3-band RGB input; without this, nodata regions at tile edges leak
// in as black.
func WhitenTransparent(r, g, b, a []uint8) {
	for i, alpha := range a {
		if alpha == 0 {
			r[i] = 255
			g[i] = 255
			b[i] = 255
		}
	}
}
