package combine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Akkete/tile-ortho/internal/utils"
	"github.com/Akkete/tile-ortho/pkg/geo"
	"github.com/Akkete/tile-ortho/pkg/grid"
	"github.com/Akkete/tile-ortho/pkg/vector"
	"github.com/Akkete/tile-ortho/pkg/yolo"
)

func TestParseShape(t *testing.T) {
	if s, err := ParseShape("rectangle"); err != nil || s != Rectangle {
		t.Errorf("rectangle: got %v, %v", s, err)
	}
	if s, err := ParseShape("oval"); err != nil || s != Oval {
		t.Errorf("oval: got %v, %v", s, err)
	}
	if _, err := ParseShape("hexagon"); err == nil {
		t.Error("expected an error for an unsupported shape")
	}
}

// Two neighboring tiles share a 10-unit overlap. One object sits in
// the buffer zone with its center inside tile A's inner region; both
// tiles "detected" it, but only A's reconstruction may keep it.
func TestReconstructDedupByCentroid(t *testing.T) {
	innerA := geo.Box(0, 0, 100, 100)
	innerB := geo.Box(100, 0, 200, 100)
	outerA := geo.NewBounds(-10, -10, 110, 110)
	outerB := geo.NewBounds(90, -10, 210, 110)

	// Object centered at (97, 50): inside A's inner region, inside
	// both outer tiles.
	recA := yolo.FromBBox(1, geo.NewBounds(92, 45, 102, 55), outerA)
	recB := yolo.FromBBox(1, geo.NewBounds(92, 45, 102, 55), outerB)

	gotA := reconstruct([]yolo.Record{recA}, outerA, innerA, Rectangle)
	if len(gotA) != 1 {
		t.Fatalf("tile A: got %d detections, want 1", len(gotA))
	}
	if gotA[0].Class != 1 {
		t.Errorf("tile A: class got %d, want 1", gotA[0].Class)
	}

	gotB := reconstruct([]yolo.Record{recB}, outerB, innerB, Rectangle)
	if len(gotB) != 0 {
		t.Fatalf("tile B: got %d detections, want 0 (centroid belongs to A)", len(gotB))
	}
}

func TestReconstructOval(t *testing.T) {
	inner := geo.Box(0, 0, 100, 100)
	bounds := geo.NewBounds(0, 0, 100, 100)
	rec := yolo.Record{Class: 2, XCenter: 0.5, YCenter: 0.5, Width: 0.2, Height: 0.2}

	got := reconstruct([]yolo.Record{rec}, bounds, inner, Oval)
	if len(got) != 1 {
		t.Fatalf("got %d detections, want 1", len(got))
	}
	if n := len(got[0].Geom[0]); n != 16 {
		t.Errorf("oval vertex count: got %d, want 16", n)
	}
}

// A tile image that exists but cannot be opened as a raster must not
// abort the run: the detections shapefile is still written and the
// failure is reported in the summary error.
func TestRunCollectsTileFailures(t *testing.T) {
	dir := t.TempDir()
	labelsDir := filepath.Join(dir, "labels")
	imagesDir := filepath.Join(dir, "images")
	for _, d := range []string{labelsDir, imagesDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}

	tilesPath := filepath.Join(dir, "tiles_inner.shp")
	tiles := []grid.Tile{{
		ID:     "0_0",
		Fields: map[string]string{"split": "train"},
		Inner:  geo.Box(0, 0, 100, 100),
		Outer:  geo.Box(-10, -10, 110, 110),
	}}
	if err := vector.WriteTiles(tilesPath, tiles, false, "split"); err != nil {
		t.Fatalf("writing tiles shapefile: %v", err)
	}

	label := filepath.Join(labelsDir, "tile_0_0.txt")
	if err := os.WriteFile(label, []byte("0 0.5 0.5 0.1 0.1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	image := filepath.Join(imagesDir, "tile_0_0.tif")
	if err := os.WriteFile(image, []byte("not a raster"), 0644); err != nil {
		t.Fatal(err)
	}

	outFile := filepath.Join(dir, "detections.shp")
	err := Run(Options{
		LabelsDir: labelsDir,
		ImagesDir: imagesDir,
		TilesPath: tilesPath,
		OutFile:   outFile,
		Shape:     Rectangle,
	})
	if err == nil {
		t.Fatal("expected a summary error for the unreadable tile image")
	}
	if !strings.Contains(err.Error(), "1 of 1 tiles failed") {
		t.Errorf("summary error %q should report the failed tile count", err)
	}
	if !utils.FileExists(outFile) {
		t.Error("detections shapefile should be written despite the tile failure")
	}
}

func TestReconstructKeepsGeometry(t *testing.T) {
	inner := geo.Box(0, 0, 100, 100)
	bounds := geo.NewBounds(0, 0, 100, 100)
	rec := yolo.FromBBox(0, geo.NewBounds(10, 20, 30, 40), bounds)

	got := reconstruct([]yolo.Record{rec}, bounds, inner, Rectangle)
	if len(got) != 1 {
		t.Fatalf("got %d detections, want 1", len(got))
	}
	b := geo.FromGeom(got[0].Geom.Bounds())
	if b.MinX < 9.999 || b.MinX > 10.001 || b.MaxY < 39.999 || b.MaxY > 40.001 {
		t.Errorf("rebuilt bbox %+v drifted from (10, 20, 30, 40)", b)
	}
}
