package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game    GameConfig    `toml:"game"`
	Render  RenderConfig  `toml:"render"`
	Physics PhysicsConfig `toml:"physics"`
	Audio   AudioConfig   `toml:"audio"`
	Engine  EngineConfig  `toml:"engine"`
	Logging LoggingConfig `toml:"logging"`
}

type GameConfig struct {
	Title        string `toml:"title"`
	InitialScene string `toml:"initial_scene"`
	ResourcesDir string `toml:"resources_dir"`
}

type RenderConfig struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Backend   string `toml:"backend"` // "terminal" or "headless"
	FrameRate int    `toml:"frame_rate"`
}

// FrameInterval is the wall-clock time between frames.
func (r RenderConfig) FrameInterval() time.Duration {
	if r.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(r.FrameRate)
}

type PhysicsConfig struct {
	GravityX           float64 `toml:"gravity_x"`
	GravityY           float64 `toml:"gravity_y"`
	TimeStep           float64 `toml:"time_step"` // seconds
	VelocityIterations int     `toml:"velocity_iterations"`
	PositionIterations int     `toml:"position_iterations"`
}

type AudioConfig struct {
	Enabled    bool `toml:"enabled"`
	SampleRate int  `toml:"sample_rate"`
	Channels   int  `toml:"channels"`
}

type EngineConfig struct {
	RefreshHookCaches bool `toml:"refresh_hook_caches"`
	MaxFrames         int  `toml:"max_frames"` // 0 = run until quit
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Game.InitialScene == "" {
		return nil, fmt.Errorf("config %s: game.initial_scene is required", path)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Game: GameConfig{
			Title:        "lumen",
			ResourcesDir: "resources",
		},
		Render: RenderConfig{
			Width:     80,
			Height:    24,
			Backend:   "terminal",
			FrameRate: 60,
		},
		Physics: PhysicsConfig{
			GravityX:           0,
			GravityY:           9.8,
			TimeStep:           1.0 / 60.0,
			VelocityIterations: 8,
			PositionIterations: 3,
		},
		Audio: AudioConfig{
			Enabled:    false,
			SampleRate: 44100,
			Channels:   50,
		},
		Engine: EngineConfig{
			RefreshHookCaches: false,
			MaxFrames:         0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
