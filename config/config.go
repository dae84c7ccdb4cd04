// package config describes a viewer session: where the dataset lives, where
// on the globe it belongs, and the render settings both engines start with.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultFieldOfView is the point-cloud camera's vertical fov in degrees.
	DefaultFieldOfView = 60.0

	// DefaultPointBudget bounds rendered points per frame.
	DefaultPointBudget = 1_000_000

	// DefaultPointSize is the splat size in pixels for new datasets.
	DefaultPointSize = 1.0

	// DefaultPlaceholderAltitude is the globe camera height in meters above
	// the anchor before the point cloud loads.
	DefaultPlaceholderAltitude = 2500.0

	// DefaultPlaceholderPitch is the downward pitch in degrees of the
	// placeholder globe pose.
	DefaultPlaceholderPitch = -30.0

	// DefaultDistanceBound is the sync loop's distance guard threshold in
	// projected length units.
	DefaultDistanceBound = 4_000_000.0

	// DefaultMinHeight / DefaultMaxHeight bound the plausible camera height
	// envelope in meters above the ellipsoid.
	DefaultMinHeight = -1_000.0
	DefaultMaxHeight = 100_000.0

	// DefaultUnitRatio converts the point cloud's length unit to meters
	// (international foot).
	DefaultUnitRatio = 0.3048
)

type Config struct {
	// PointCloudURL is the dataset manifest location. Empty means globe-only
	// mode: no point cloud and no camera synchronization.
	PointCloudURL string `yaml:"point_cloud_url"`

	// DatasetName is the display name for the loaded dataset.
	DatasetName string `yaml:"dataset_name"`

	// Anchor positions the session on the globe.
	Anchor AnchorConfig `yaml:"anchor"`

	// CrsProjection is the opaque projection-definition string of the
	// dataset's CRS. Empty disables synchronization for the session.
	CrsProjection string `yaml:"crs_projection"`

	// BaseLayer selects the initial globe imagery ("satellite" or "streets").
	BaseLayer string `yaml:"base_layer"`

	// FieldOfView is the point-cloud camera's vertical fov in degrees.
	FieldOfView float64 `yaml:"field_of_view"`

	// PointBudget bounds rendered points per frame.
	PointBudget int `yaml:"point_budget"`

	// FrameRateLimit caps the frame loop in frames per second; 0 = uncapped.
	FrameRateLimit float64 `yaml:"frame_rate_limit"`

	// Guards tunes the sync loop's per-tick guard thresholds.
	Guards GuardConfig `yaml:"guards"`
}

type AnchorConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`

	// GroundElevation is in the point cloud's length unit.
	GroundElevation float64 `yaml:"ground_elevation"`
}

type GuardConfig struct {
	DistanceBound float64 `yaml:"distance_bound"`
	MinHeight     float64 `yaml:"min_height"`
	MaxHeight     float64 `yaml:"max_height"`
	UnitRatio     float64 `yaml:"unit_ratio"`
}

// DefaultConfig returns a config with every tunable at its default.
//
// Returns:
//   - *Config: the default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseLayer:   "satellite",
		FieldOfView: DefaultFieldOfView,
		PointBudget: DefaultPointBudget,
		Guards: GuardConfig{
			DistanceBound: DefaultDistanceBound,
			MinHeight:     DefaultMinHeight,
			MaxHeight:     DefaultMaxHeight,
			UnitRatio:     DefaultUnitRatio,
		},
	}
}

// Load reads a session config from a YAML file, applying defaults for any
// field the file omits.
//
// Parameters:
//   - path: the YAML file to read
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if the file is unreadable, malformed, or invalid
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to a YAML file.
//
// Parameters:
//   - path: destination file
//   - cfg: the config to write
//
// Returns:
//   - error: error if marshaling or writing fails
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the config for values no session can run with.
//
// Returns:
//   - error: the first validation failure, or nil
func (c *Config) Validate() error {
	if math.Abs(c.Anchor.Latitude) > 90 {
		return fmt.Errorf("anchor latitude %.4f outside [-90, 90]", c.Anchor.Latitude)
	}
	if math.Abs(c.Anchor.Longitude) > 180 {
		return fmt.Errorf("anchor longitude %.4f outside [-180, 180]", c.Anchor.Longitude)
	}
	if c.BaseLayer != "satellite" && c.BaseLayer != "streets" {
		return fmt.Errorf("unknown base layer %q", c.BaseLayer)
	}
	if c.FieldOfView <= 0 || c.FieldOfView >= 180 {
		return fmt.Errorf("field of view %.2f outside (0, 180)", c.FieldOfView)
	}
	if c.PointBudget <= 0 {
		return fmt.Errorf("point budget must be positive, got %d", c.PointBudget)
	}
	if c.FrameRateLimit < 0 {
		return fmt.Errorf("frame rate limit must be >= 0, got %f", c.FrameRateLimit)
	}
	if c.Guards.DistanceBound <= 0 {
		return fmt.Errorf("distance bound must be positive, got %f", c.Guards.DistanceBound)
	}
	if c.Guards.MinHeight >= c.Guards.MaxHeight {
		return fmt.Errorf("height envelope [%f, %f] is empty", c.Guards.MinHeight, c.Guards.MaxHeight)
	}
	if c.Guards.UnitRatio <= 0 {
		return fmt.Errorf("unit ratio must be positive, got %f", c.Guards.UnitRatio)
	}
	return nil
}
