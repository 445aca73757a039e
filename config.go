package superbounds

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config drives the demo world. Zero values in a config file fall back to DefaultConfig.
type Config struct {
	ObjectCount     int        `yaml:"object_count"`
	PlacementRadius float32    `yaml:"placement_radius"`
	QueryRadius     float32    `yaml:"query_radius"`
	QueryBoxSize    [3]float32 `yaml:"query_box_size"`

	BatchSize   int    `yaml:"batch_size"`
	Workers     int    `yaml:"workers"`
	HitCapacity int    `yaml:"hit_capacity"`
	MatchPolicy string `yaml:"match_policy"`

	Cycles int   `yaml:"cycles"`
	FPS    int   `yaml:"fps"`
	Seed   int64 `yaml:"seed"`

	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
}

func DefaultConfig() Config {
	return Config{
		ObjectCount:     1000,
		PlacementRadius: 100,
		QueryRadius:     100,
		QueryBoxSize:    [3]float32{1, 1, 1},
		BatchSize:       DefaultBatchSize,
		HitCapacity:     DefaultHitCapacity,
		MatchPolicy:     LastWriteWins.String(),
		Cycles:          300,
		FPS:             30,
		LogLevel:        "info",
	}
}

// LoadConfig reads a YAML config on top of the defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ObjectCount < 0 {
		return fmt.Errorf("object_count must not be negative, got %d", c.ObjectCount)
	}
	if c.PlacementRadius < 0 || c.QueryRadius < 0 {
		return fmt.Errorf("radii must not be negative")
	}
	for _, s := range c.QueryBoxSize {
		if s < 0 {
			return fmt.Errorf("query_box_size must not be negative, got %v", c.QueryBoxSize)
		}
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.HitCapacity < 0 {
		return fmt.Errorf("hit_capacity must not be negative, got %d", c.HitCapacity)
	}
	if _, err := ParseMatchPolicy(c.MatchPolicy); err != nil {
		return err
	}
	if c.Cycles < 0 {
		return fmt.Errorf("cycles must not be negative, got %d", c.Cycles)
	}
	if c.FPS < 0 {
		return fmt.Errorf("fps must not be negative, got %d", c.FPS)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c Config) BoxSize() mgl32.Vec3 { return mgl32.Vec3(c.QueryBoxSize) }

// EngineOptions turns the engine related settings into options. Validate first.
func (c Config) EngineOptions() []EngineOption {
	policy, _ := ParseMatchPolicy(c.MatchPolicy)
	return []EngineOption{
		WithBatchSize(c.BatchSize),
		WithWorkers(c.Workers),
		WithMatchPolicy(policy),
	}
}
