package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseLayer != "satellite" {
		t.Errorf("expected satellite base layer, got %s", cfg.BaseLayer)
	}
	if cfg.FieldOfView != DefaultFieldOfView {
		t.Errorf("expected fov %f, got %f", DefaultFieldOfView, cfg.FieldOfView)
	}
	if cfg.PointBudget != DefaultPointBudget {
		t.Errorf("expected point budget %d, got %d", DefaultPointBudget, cfg.PointBudget)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	body := `point_cloud_url: "https://tiles.example.com/job42/cloud.js"
dataset_name: "job42"
anchor:
  latitude: 40.0
  longitude: -86.0
  ground_elevation: 800
crs_projection: "+proj=tmerc +datum=NAD83 +units=us-ft"
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := DefaultConfig()
	want.PointCloudURL = "https://tiles.example.com/job42/cloud.js"
	want.DatasetName = "job42"
	want.Anchor = AnchorConfig{Latitude: 40.0, Longitude: -86.0, GroundElevation: 800}
	want.CrsProjection = "+proj=tmerc +datum=NAD83 +units=us-ft"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	cfg := DefaultConfig()
	cfg.PointCloudURL = "https://tiles.example.com/job7/cloud.js"
	cfg.BaseLayer = "streets"
	cfg.FrameRateLimit = 60

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"latitude out of range", func(c *Config) { c.Anchor.Latitude = 91 }},
		{"longitude out of range", func(c *Config) { c.Anchor.Longitude = -181 }},
		{"unknown base layer", func(c *Config) { c.BaseLayer = "terrain" }},
		{"zero fov", func(c *Config) { c.FieldOfView = 0 }},
		{"negative budget", func(c *Config) { c.PointBudget = -1 }},
		{"negative frame limit", func(c *Config) { c.FrameRateLimit = -1 }},
		{"zero distance bound", func(c *Config) { c.Guards.DistanceBound = 0 }},
		{"empty height envelope", func(c *Config) { c.Guards.MinHeight = 200; c.Guards.MaxHeight = 100 }},
		{"zero unit ratio", func(c *Config) { c.Guards.UnitRatio = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
