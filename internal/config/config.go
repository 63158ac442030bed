// Package config loads the demo configuration from YAML and applies
// RTSCORE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/rtscore/internal/core/input"
	"github.com/zeusync/rtscore/internal/core/observability/log"
	"github.com/zeusync/rtscore/internal/core/scene"
	"github.com/zeusync/rtscore/internal/core/selection"
	"github.com/zeusync/rtscore/internal/core/system"
)

// minUpCross is the smallest |forward x up| a camera may have before its
// view matrix degenerates.
const minUpCross = 1e-6

type Config struct {
	Log       LogConfig        `yaml:"log"`
	Tick      TickConfig       `yaml:"tick"`
	Selection SelectionConfig  `yaml:"selection"`
	Scene     SceneConfig      `yaml:"scene"`
	Feed      FeedConfig       `yaml:"feed"`
	Units     []system.UnitDef `yaml:"units"`
	Script    []input.Step     `yaml:"script"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// TickConfig drives the demo loop. Settle is the number of idle ticks run
// after the script so ordered units can reach their destinations.
type TickConfig struct {
	Rate   int `yaml:"rate"`
	Settle int `yaml:"settle"`
}

type SelectionConfig struct {
	DragThreshold float64 `yaml:"drag_threshold"`
}

type SceneConfig struct {
	GroundHeight float64      `yaml:"ground_height"`
	Camera       CameraConfig `yaml:"camera"`
}

type CameraConfig struct {
	Eye      mgl64.Vec3     `yaml:"eye"`
	Target   mgl64.Vec3     `yaml:"target"`
	Up       mgl64.Vec3     `yaml:"up"`
	FovY     float64        `yaml:"fov_y"`
	Near     float64        `yaml:"near"`
	Far      float64        `yaml:"far"`
	Viewport scene.Viewport `yaml:"viewport"`
}

func (c CameraConfig) Camera() scene.Camera {
	return scene.Camera{
		Eye:      c.Eye,
		Target:   c.Target,
		Up:       c.Up,
		FovY:     c.FovY,
		Near:     c.Near,
		Far:      c.Far,
		Viewport: c.Viewport,
	}
}

type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Buffer  int    `yaml:"buffer"`
}

// overrides lists the settings that may come from the environment.
type overrides struct {
	LogLevel      string  `env:"RTSCORE_LOG_LEVEL"`
	TickRate      int     `env:"RTSCORE_TICK_RATE"`
	DragThreshold float64 `env:"RTSCORE_DRAG_THRESHOLD"`
	GroundHeight  float64 `env:"RTSCORE_GROUND_HEIGHT"`
	FeedEnabled   bool    `env:"RTSCORE_FEED_ENABLED"`
	FeedAddr      string  `env:"RTSCORE_FEED_ADDR"`
}

func Default() *Config {
	cam := scene.DefaultCamera()
	return &Config{
		Log:       LogConfig{Level: log.LevelInfo.String()},
		Tick:      TickConfig{Rate: 30, Settle: 90},
		Selection: SelectionConfig{DragThreshold: selection.DefaultDragThreshold},
		Scene: SceneConfig{
			Camera: CameraConfig{
				Eye:      cam.Eye,
				Target:   cam.Target,
				Up:       cam.Up,
				FovY:     cam.FovY,
				Near:     cam.Near,
				Far:      cam.Far,
				Viewport: cam.Viewport,
			},
		},
		Feed: FeedConfig{Addr: "127.0.0.1:8089", Buffer: 64},
	}
}

// Load reads the YAML file at path on top of the defaults, applies the
// environment and validates the result. An empty path uses the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err = cfg.decode(f); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadYAML decodes a config from r on top of the defaults without touching
// the environment.
func LoadYAML(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// ApplyEnv overrides settings from RTSCORE_* variables. Unset variables
// leave the current value alone.
func (c *Config) ApplyEnv() error {
	o := overrides{
		LogLevel:      c.Log.Level,
		TickRate:      c.Tick.Rate,
		DragThreshold: c.Selection.DragThreshold,
		GroundHeight:  c.Scene.GroundHeight,
		FeedEnabled:   c.Feed.Enabled,
		FeedAddr:      c.Feed.Addr,
	}
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.Log.Level = o.LogLevel
	c.Tick.Rate = o.TickRate
	c.Selection.DragThreshold = o.DragThreshold
	c.Scene.GroundHeight = o.GroundHeight
	c.Feed.Enabled = o.FeedEnabled
	c.Feed.Addr = o.FeedAddr
	return nil
}

func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Tick.Rate <= 0 {
		return fmt.Errorf("tick.rate %d: %w", c.Tick.Rate, ErrInvalidTickRate)
	}
	if c.Selection.DragThreshold < 0 {
		return fmt.Errorf("selection.drag_threshold %g: %w", c.Selection.DragThreshold, ErrInvalidDragThreshold)
	}
	cam := c.Scene.Camera
	if cam.Viewport.Width <= 0 || cam.Viewport.Height <= 0 {
		return fmt.Errorf("scene.camera.viewport %dx%d: %w", cam.Viewport.Width, cam.Viewport.Height, ErrInvalidViewport)
	}
	switch {
	case cam.FovY <= 0 || cam.FovY >= 180:
		return fmt.Errorf("scene.camera.fov_y %g: %w", cam.FovY, ErrInvalidCamera)
	case cam.Near <= 0 || cam.Far <= cam.Near:
		return fmt.Errorf("scene.camera near %g far %g: %w", cam.Near, cam.Far, ErrInvalidCamera)
	case cam.Eye.ApproxEqual(cam.Target):
		return fmt.Errorf("scene.camera eye equals target: %w", ErrInvalidCamera)
	case cam.Target.Sub(cam.Eye).Cross(cam.Up).Len() < minUpCross:
		return fmt.Errorf("scene.camera up %v is zero or parallel to the view direction: %w", cam.Up, ErrInvalidCamera)
	}
	if c.Feed.Enabled && c.Feed.Addr == "" {
		return ErrFeedAddrRequired
	}
	return nil
}

// Level returns the parsed log level. Call Validate first.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.LevelInfo
	}
	return lvl
}
