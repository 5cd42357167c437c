// Package tileortho prepares large geo-referenced orthophotos for
// object-detection training and maps detection results back into
// geographic space.
//
// The core is a tiling and coordinate-conversion engine: named split
// areas are partitioned into a grid of bounded-size inner tiles, each
// buffered outward into an overlapping outer tile that is cropped from
// the source raster; annotations and detections are converted between
// geographic coordinates and per-tile normalized YOLO labels, in both
// directions, with overlap zones deduplicated by inner-tile centroid
// containment.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		tileortho "github.com/Akkete/tile-ortho"
//		"github.com/Akkete/tile-ortho/pkg/dataset"
//		"github.com/Akkete/tile-ortho/pkg/tiling"
//	)
//
//	func main() {
//		err := tileortho.RunDataset(dataset.Options{
//			OrthoPath:       "ortho.tif",
//			AreasPath:       "split_areas.shp",
//			AnnotationsPath: "ref_trees.shp",
//			OutDir:          "yolo_dataset",
//			Grid: tiling.GridParams{
//				MaxTileSizePx: 896,
//				BufferMeters:  5,
//				SplitField:    "split",
//			},
//			ClassField: "class",
//			Classes:    tileortho.DefaultClasses(),
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of three pipelines:
//
// 1. Tiling (pkg/tiling): crops overlapping tiles and persists their geometries
// 2. Dataset (pkg/dataset): projects reference annotations into per-tile YOLO labels
// 3. Combine (pkg/combine): projects per-tile detections back to a geographic shapefile
//
// supported by the tile grid generator (pkg/grid), the coordinate and
// label-format converters (pkg/yolo, pkg/geo), and the raster/vector
// access wrappers (pkg/raster, pkg/vector).
package tileortho

import (
	"github.com/Akkete/tile-ortho/internal/config"
	"github.com/Akkete/tile-ortho/pkg/combine"
	"github.com/Akkete/tile-ortho/pkg/dataset"
	"github.com/Akkete/tile-ortho/pkg/tiling"
)

// Version of the tile-ortho library
const Version = "1.0.0"

// DefaultClasses returns the tree damage class taxonomy in class-id
// order.
func DefaultClasses() []string {
	return config.Default().Classes.Names
}

// RunTiling splits an orthophoto into overlapping tiles.
func RunTiling(opts tiling.Options) error {
	return tiling.Run(opts)
}

// RunDataset builds a YOLO dataset from an orthophoto and reference
// annotations.
func RunDataset(opts dataset.Options) error {
	return dataset.Run(opts)
}

// RunCombine reassembles per-tile detection outputs into a geographic
// detections shapefile.
func RunCombine(opts combine.Options) error {
	return combine.Run(opts)
}
