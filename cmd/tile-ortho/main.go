package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Akkete/tile-ortho/internal/config"
	"github.com/Akkete/tile-ortho/pkg/combine"
	"github.com/Akkete/tile-ortho/pkg/dataset"
	"github.com/Akkete/tile-ortho/pkg/preview"
	"github.com/Akkete/tile-ortho/pkg/tiling"
)

const usage = `usage: tile-ortho <command> [flags]

commands:
  tile      split an orthophoto into overlapping tiles
  dataset   build a YOLO dataset from an orthophoto and reference annotations
  combine   reassemble per-tile YOLO outputs into a detections shapefile

run "tile-ortho <command> -h" for command flags`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "tile":
		runTile(os.Args[2:])
	case "dataset":
		runDataset(os.Args[2:])
	case "combine":
		runCombine(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}
}

// loadConfig returns the file config when -config is set, defaults
// otherwise. Flags still override individual values afterwards.
func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	return cfg
}

func runTile(args []string) {
	fs := flag.NewFlagSet("tile", flag.ExitOnError)
	var (
		ortho      = fs.String("ortho", "", "input orthophoto")
		areas      = fs.String("split-areas", "", "split areas shapefile")
		outdir     = fs.String("outdir", "", "output directory (replaced if it exists)")
		configPath = fs.String("config", "", "optional JSON config file")
	)
	cfg := config.Default()
	maxTile := fs.Int("max-tile-size", cfg.Tiles.MaxTileSizePx, "max tile side length in pixels")
	buffer := fs.Float64("buffer-meters", cfg.Tiles.BufferMeters, "amount of overlap in metres")
	splitField := fs.String("split-field", cfg.Tiles.SplitField, "area attribute naming the dataset split")
	fs.Parse(args)

	if *ortho == "" || *areas == "" || *outdir == "" {
		log.Fatalf("tile: -ortho, -split-areas and -outdir are required")
	}
	cfg = loadConfig(*configPath)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-tile-size":
			cfg.Tiles.MaxTileSizePx = *maxTile
		case "buffer-meters":
			cfg.Tiles.BufferMeters = *buffer
		case "split-field":
			cfg.Tiles.SplitField = *splitField
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	err := tiling.Run(tiling.Options{
		OrthoPath: *ortho,
		AreasPath: *areas,
		OutDir:    *outdir,
		Grid:      gridParams(cfg),
	})
	if err != nil {
		log.Fatal(err)
	}
}

func runDataset(args []string) {
	fs := flag.NewFlagSet("dataset", flag.ExitOnError)
	var (
		ortho      = fs.String("ortho", "", "input orthophoto")
		areas      = fs.String("split-areas", "", "split areas shapefile")
		refs       = fs.String("ref-trees", "", "reference annotations shapefile")
		outdir     = fs.String("outdir", "", "output directory (replaced if it exists)")
		configPath = fs.String("config", "", "optional JSON config file")
	)
	cfg := config.Default()
	maxTile := fs.Int("max-tile-size", cfg.Tiles.MaxTileSizePx, "max tile side length in pixels")
	buffer := fs.Float64("buffer-meters", cfg.Tiles.BufferMeters, "amount of overlap in metres")
	splitField := fs.String("split-field", cfg.Tiles.SplitField, "area attribute naming the dataset split")
	classField := fs.String("class-field", cfg.Tiles.ClassField, "annotation attribute holding the class id")
	withPreview := fs.Bool("preview", cfg.Preview.Enabled, "also write preview thumbnails per tile")
	fs.Parse(args)

	if *ortho == "" || *areas == "" || *refs == "" || *outdir == "" {
		log.Fatalf("dataset: -ortho, -split-areas, -ref-trees and -outdir are required")
	}
	cfg = loadConfig(*configPath)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-tile-size":
			cfg.Tiles.MaxTileSizePx = *maxTile
		case "buffer-meters":
			cfg.Tiles.BufferMeters = *buffer
		case "split-field":
			cfg.Tiles.SplitField = *splitField
		case "class-field":
			cfg.Tiles.ClassField = *classField
		case "preview":
			cfg.Preview.Enabled = *withPreview
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	opts := dataset.Options{
		OrthoPath:       *ortho,
		AreasPath:       *areas,
		AnnotationsPath: *refs,
		OutDir:          *outdir,
		Grid:            gridParams(cfg),
		ClassField:      cfg.Tiles.ClassField,
		Classes:         cfg.Classes.Names,
	}
	if cfg.Preview.Enabled {
		opts.Preview = &preview.Options{
			Format:   cfg.Preview.Format,
			Quality:  cfg.Preview.Quality,
			Lossless: cfg.Preview.Lossless,
			MaxDim:   cfg.Preview.MaxDim,
		}
	}
	if err := dataset.Run(opts); err != nil {
		log.Fatal(err)
	}
}

func runCombine(args []string) {
	fs := flag.NewFlagSet("combine", flag.ExitOnError)
	var (
		labelsDir = fs.String("yolo-labels-dir", "", "per-tile YOLO output labels directory")
		imagesDir = fs.String("tile-images-dir", "", "cropped tile images directory")
		tilesPath = fs.String("tiles-shapefile", "", "inner tiles shapefile from the tiling run")
		outFile   = fs.String("outfile", "", "output detections shapefile")
		shapeName = fs.String("shape", config.Default().Combine.Shape, "detection geometry: rectangle or oval")
	)
	fs.Parse(args)

	if *labelsDir == "" || *imagesDir == "" || *tilesPath == "" || *outFile == "" {
		log.Fatalf("combine: -yolo-labels-dir, -tile-images-dir, -tiles-shapefile and -outfile are required")
	}
	shape, err := combine.ParseShape(*shapeName)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	err = combine.Run(combine.Options{
		LabelsDir: *labelsDir,
		ImagesDir: *imagesDir,
		TilesPath: *tilesPath,
		OutFile:   *outFile,
		Shape:     shape,
	})
	if err != nil {
		log.Fatal(err)
	}
}

func gridParams(cfg *config.Config) tiling.GridParams {
	return tiling.GridParams{
		MaxTileSizePx: cfg.Tiles.MaxTileSizePx,
		BufferMeters:  cfg.Tiles.BufferMeters,
		SplitField:    cfg.Tiles.SplitField,
	}
}
