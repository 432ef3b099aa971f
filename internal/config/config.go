package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDebounceMS = 50
	DefaultHitRadius  = 5.0
	DefaultFPS        = 25.0
)

type Config struct {
	Controls ControlsConfig `yaml:"controls"`
	Annotate AnnotateConfig `yaml:"annotate"`
	Play     PlayConfig     `yaml:"play"`
	View     ViewConfig     `yaml:"view"`
}

type ControlsConfig struct {
	// DebounceMS is the window that coalesces rapid slider changes into
	// one recompute.
	DebounceMS int `yaml:"debounce_ms"`
}

type AnnotateConfig struct {
	// HitRadius is the pick tolerance in frame pixels.
	HitRadius float64 `yaml:"hit_radius"`
}

type PlayConfig struct {
	FPS float64 `yaml:"fps"`
}

type ViewConfig struct {
	Autoscale bool `yaml:"autoscale"`
}

func DefaultConfig() *Config {
	return &Config{
		Controls: ControlsConfig{DebounceMS: DefaultDebounceMS},
		Annotate: AnnotateConfig{HitRadius: DefaultHitRadius},
		Play:     PlayConfig{FPS: DefaultFPS},
		View:     ViewConfig{Autoscale: true},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Debounce() time.Duration {
	ms := c.Controls.DebounceMS
	if ms <= 0 {
		ms = DefaultDebounceMS
	}
	return time.Duration(ms) * time.Millisecond
}
