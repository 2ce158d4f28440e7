// Package config loads the demo configuration from a TOML file and watches it
// for changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation/balls"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation/boxfield"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation/fireflies"
	"github.com/pelletier/go-toml/v2"
)

// Config is the full demo configuration. Every section is optional in the file;
// missing values keep their defaults.
type Config struct {
	Window    WindowConfig    `toml:"window"`
	Renderer  RendererConfig  `toml:"renderer"`
	Camera    CameraConfig    `toml:"camera"`
	Balls     BallsConfig     `toml:"balls"`
	Fireflies FirefliesConfig `toml:"fireflies"`
	BoxField  BoxFieldConfig  `toml:"boxfield"`
	Scheduler SchedulerConfig `toml:"scheduler"`
}

type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
}

type RendererConfig struct {
	// Backend is "wgpu" or "headless".
	Backend    string     `toml:"backend"`
	VSync      bool       `toml:"vsync"`
	ClearColor [4]float32 `toml:"clear_color"`
}

type CameraConfig struct {
	// FOV is the vertical field of view in degrees.
	FOV       float32 `toml:"fov"`
	Near      float32 `toml:"near"`
	Far       float32 `toml:"far"`
	Radius    float32 `toml:"radius"`
	Azimuth   float32 `toml:"azimuth"`
	Elevation float32 `toml:"elevation"`
	// Damping is the share of pending orbit motion applied per frame, in (0, 1].
	Damping float32 `toml:"damping"`
	// FrameSeconds is the duration of the framing animation played at startup.
	FrameSeconds float32 `toml:"frame_seconds"`
}

type BallsConfig struct {
	Count             int     `toml:"count"`
	Radius            float64 `toml:"radius"`
	Damping           float64 `toml:"damping"`
	ForceConstant     float64 `toml:"force_constant"`
	Spread            float64 `toml:"spread"`
	Mode              string  `toml:"mode"`
	Workers           int     `toml:"workers"`
	ParallelThreshold int     `toml:"parallel_threshold"`
	CellSize          float64 `toml:"cell_size"`
	Seed              uint64  `toml:"seed"`
}

type FirefliesConfig struct {
	Count       int     `toml:"count"`
	RateMin     float64 `toml:"rate_min"`
	RateMax     float64 `toml:"rate_max"`
	OrbitRadius float64 `toml:"orbit_radius"`
	Seed        uint64  `toml:"seed"`
}

type BoxFieldConfig struct {
	Count      int     `toml:"count"`
	Radius     float64 `toml:"radius"`
	SpeedMin   float64 `toml:"speed_min"`
	SpeedMax   float64 `toml:"speed_max"`
	GroupRateX float64 `toml:"group_rate_x"`
	GroupRateY float64 `toml:"group_rate_y"`
	BoxSize    float64 `toml:"box_size"`
	Seed       uint64  `toml:"seed"`
}

type SchedulerConfig struct {
	// TickRate is the refresh rate of the headless host.
	TickRate float64 `toml:"tick_rate"`
	// Profiling enables the periodic frame stats log.
	Profiling bool `toml:"profiling"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowConfig{Title: "oxy demos", Width: 1280, Height: 720, Resizable: true},
		Renderer: RendererConfig{
			Backend:    "wgpu",
			VSync:      true,
			ClearColor: [4]float32{0.02, 0.02, 0.05, 1},
		},
		Camera: CameraConfig{
			FOV: 60, Near: 0.1, Far: 500,
			Radius: 12, Azimuth: 0.6, Elevation: 0.4,
			Damping: 0.1, FrameSeconds: 1.5,
		},
		Balls: BallsConfig{
			Count:             balls.DefaultCount,
			Radius:            balls.DefaultRadius,
			Damping:           balls.DefaultDamping,
			ForceConstant:     balls.DefaultForceConstant,
			Spread:            balls.DefaultSpread,
			Mode:              string(balls.ModeSequential),
			Workers:           1,
			ParallelThreshold: 256,
			Seed:              1,
		},
		Fireflies: FirefliesConfig{
			Count:       fireflies.DefaultCount,
			RateMin:     fireflies.DefaultRateMin,
			RateMax:     fireflies.DefaultRateMax,
			OrbitRadius: fireflies.DefaultOrbitRadius,
			Seed:        1,
		},
		BoxField: BoxFieldConfig{
			Count:      boxfield.DefaultCount,
			Radius:     boxfield.DefaultRadius,
			SpeedMin:   boxfield.DefaultSpeedMin,
			SpeedMax:   boxfield.DefaultSpeedMax,
			GroupRateX: boxfield.DefaultGroupRateX,
			GroupRateY: boxfield.DefaultGroupRateY,
			BoxSize:    boxfield.DefaultBoxSize,
			Seed:       1,
		},
		Scheduler: SchedulerConfig{TickRate: 60, LogLevel: "info"},
	}
}

// Load reads a TOML file over the defaults and validates the result. Unknown
// keys are rejected so that typos do not silently fall back to defaults.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the loaded configuration
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", simulation.ErrConfiguration, strict.String())
		}
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section. Simulation sections are checked by the
// simulation constructors themselves, so the rules live in one place.
//
// Returns:
//   - error: an error wrapping simulation.ErrConfiguration, or nil
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d must be positive", simulation.ErrConfiguration, c.Window.Width, c.Window.Height)
	}
	switch c.Renderer.Backend {
	case "wgpu", "headless":
	default:
		return fmt.Errorf("%w: unknown renderer backend %q", simulation.ErrConfiguration, c.Renderer.Backend)
	}
	if !(c.Camera.FOV > 0 && c.Camera.FOV < 180) {
		return fmt.Errorf("%w: camera fov %v must be in (0, 180)", simulation.ErrConfiguration, c.Camera.FOV)
	}
	if !(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near) || !finite32(c.Camera.Far) {
		return fmt.Errorf("%w: camera clip range [%v, %v] is invalid", simulation.ErrConfiguration, c.Camera.Near, c.Camera.Far)
	}
	if !(c.Camera.Radius > 0) || !finite32(c.Camera.Radius) {
		return fmt.Errorf("%w: camera radius %v must be positive and finite", simulation.ErrConfiguration, c.Camera.Radius)
	}
	if !finite32(c.Camera.Azimuth) || !finite32(c.Camera.Elevation) {
		return fmt.Errorf("%w: camera angles (%v, %v) are not finite", simulation.ErrConfiguration, c.Camera.Azimuth, c.Camera.Elevation)
	}
	if !(c.Camera.Damping > 0 && c.Camera.Damping <= 1) {
		return fmt.Errorf("%w: camera damping %v must be in (0, 1]", simulation.ErrConfiguration, c.Camera.Damping)
	}
	if !(c.Camera.FrameSeconds >= 0) || !finite32(c.Camera.FrameSeconds) {
		return fmt.Errorf("%w: camera frame duration %v must be non-negative and finite", simulation.ErrConfiguration, c.Camera.FrameSeconds)
	}
	for _, v := range c.Renderer.ClearColor {
		if !finite32(v) {
			return fmt.Errorf("%w: clear color %v is not finite", simulation.ErrConfiguration, c.Renderer.ClearColor)
		}
	}
	if !(c.Scheduler.TickRate > 0) || math.IsInf(c.Scheduler.TickRate, 0) {
		return fmt.Errorf("%w: tick rate %v must be positive and finite", simulation.ErrConfiguration, c.Scheduler.TickRate)
	}
	if _, err := ParseLogLevel(c.Scheduler.LogLevel); err != nil {
		return err
	}

	detached := simulation.NewDetachedSpawner()
	if _, err := balls.NewBalls(detached, c.Balls.Options()...); err != nil {
		return fmt.Errorf("[balls] %w", err)
	}
	if _, err := fireflies.NewFireflies(detached, c.Fireflies.Options()...); err != nil {
		return fmt.Errorf("[fireflies] %w", err)
	}
	if _, err := boxfield.NewBoxField(detached, c.BoxField.Options()...); err != nil {
		return fmt.Errorf("[boxfield] %w", err)
	}
	return nil
}

// Options converts the section into ball builder options.
func (c BallsConfig) Options() []balls.BallsBuilderOption {
	return []balls.BallsBuilderOption{
		balls.WithCount(c.Count),
		balls.WithRadius(c.Radius),
		balls.WithDamping(c.Damping),
		balls.WithForceConstant(c.ForceConstant),
		balls.WithSpread(c.Spread),
		balls.WithMode(balls.Mode(common.Coalesce(c.Mode, string(balls.ModeSequential)))),
		balls.WithWorkers(common.Coalesce(c.Workers, 1)),
		balls.WithParallelThreshold(c.ParallelThreshold),
		balls.WithCellSize(c.CellSize),
		balls.WithSeed(c.Seed),
	}
}

// Options converts the section into firefly builder options.
func (c FirefliesConfig) Options() []fireflies.FirefliesBuilderOption {
	return []fireflies.FirefliesBuilderOption{
		fireflies.WithCount(c.Count),
		fireflies.WithRateRange(c.RateMin, c.RateMax),
		fireflies.WithOrbitRadius(c.OrbitRadius),
		fireflies.WithSeed(c.Seed),
	}
}

// Options converts the section into box field builder options.
func (c BoxFieldConfig) Options() []boxfield.BoxFieldBuilderOption {
	return []boxfield.BoxFieldBuilderOption{
		boxfield.WithCount(c.Count),
		boxfield.WithRadius(c.Radius),
		boxfield.WithSpeedRange(c.SpeedMin, c.SpeedMax),
		boxfield.WithGroupRate(c.GroupRateX, c.GroupRateY),
		boxfield.WithBoxSize(c.BoxSize),
		boxfield.WithSeed(c.Seed),
	}
}

func finite32(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
