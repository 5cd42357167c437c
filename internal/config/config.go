package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Tiles   TileConfig    `json:"tiles"`
	Classes ClassConfig   `json:"classes"`
	Combine CombineConfig `json:"combine"`
	Preview PreviewConfig `json:"preview"`
}

// TileConfig holds the tile grid parameters shared by the tiling and
// dataset pipelines.
type TileConfig struct {
	// MaxTileSizePx bounds the outer tile side length in pixels.
	MaxTileSizePx int `json:"max_tile_size_px"`
	// BufferMeters is the overlap buffer in geographic units.
	BufferMeters float64 `json:"buffer_meters"`
	// SplitField is the area attribute naming the dataset split.
	SplitField string `json:"split_field"`
	// ClassField is the annotation attribute holding the class id.
	ClassField string `json:"class_field"`
}

// ClassConfig holds the detection class taxonomy.
type ClassConfig struct {
	Names []string `json:"names"`
}

// NC returns the class count as written to data.yaml.
func (c ClassConfig) NC() int { return len(c.Names) }

// CombineConfig holds configuration for detection reconstruction.
type CombineConfig struct {
	// Shape selects how detections are rebuilt: "rectangle" or "oval".
	Shape string `json:"shape"`
}

// PreviewConfig holds configuration for optional split preview
// thumbnails.
type PreviewConfig struct {
	Enabled  bool   `json:"enabled"`
	Format   string `json:"format"` // png|jpg|webp
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
	MaxDim   int    `json:"max_dim"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Tiles: TileConfig{
			MaxTileSizePx: 896,
			BufferMeters:  5.0,
			SplitField:    "split",
			ClassField:    "class",
		},
		Classes: ClassConfig{
			Names: []string{"healthy", "infected", "dead", "non-spruce"},
		},
		Combine: CombineConfig{
			Shape: "rectangle",
		},
		Preview: PreviewConfig{
			Enabled:  false,
			Format:   "png",
			Quality:  90,
			Lossless: false,
			MaxDim:   256,
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tiles.MaxTileSizePx < 1 {
		return fmt.Errorf("tiles.max_tile_size_px must be positive")
	}

	if c.Tiles.BufferMeters < 0 {
		return fmt.Errorf("tiles.buffer_meters must not be negative")
	}

	if c.Tiles.SplitField == "" {
		return fmt.Errorf("tiles.split_field cannot be empty")
	}

	if c.Tiles.ClassField == "" {
		return fmt.Errorf("tiles.class_field cannot be empty")
	}

	if len(c.Classes.Names) == 0 {
		return fmt.Errorf("classes.names cannot be empty")
	}

	if c.Combine.Shape != "rectangle" && c.Combine.Shape != "oval" {
		return fmt.Errorf("combine.shape must be rectangle or oval, got %q", c.Combine.Shape)
	}

	switch c.Preview.Format {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("preview.format must be png, jpg or webp, got %q", c.Preview.Format)
	}

	if c.Preview.Quality < 1 || c.Preview.Quality > 100 {
		return fmt.Errorf("preview.quality must be between 1 and 100")
	}

	if c.Preview.MaxDim < 1 {
		return fmt.Errorf("preview.max_dim must be positive")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "tile-ortho", "config.json")
}
