package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Clock   ClockConfig   `yaml:"clock"`
	Display DisplayConfig `yaml:"display"`
	Server  ServerConfig  `yaml:"server"`
}

type ClockConfig struct {
	Active         bool   `yaml:"active"`
	WordColor      string `yaml:"word_color"`
	Timezone       string `yaml:"timezone"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
}

// DisplayConfig describes the LED matrix the plate is composited into. The
// plate may sit at an offset inside a larger matrix.
type DisplayConfig struct {
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	OffsetX     int `yaml:"offset_x"`
	OffsetY     int `yaml:"offset_y"`
	FrameRateHz int `yaml:"frame_rate_hz"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	DataDir   string `yaml:"data_dir"`
	DisableDB bool   `yaml:"disable_db"`
}

func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("wordclock.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("wordclock.yaml: %w", err)
	}
	return cfg, nil
}

func Defaults() Config {
	return Config{
		Clock: ClockConfig{
			Active:         true,
			WordColor:      DefaultWordColor.Hex(),
			Timezone:       "Local",
			PollIntervalMs: 1000,
		},
		Display: DisplayConfig{
			Width:       PlateWidth,
			Height:      PlateHeight,
			FrameRateHz: 30,
		},
		Server: ServerConfig{
			Addr:    ":8080",
			DataDir: "./data",
		},
	}
}

// Normalize fills unset fields and replaces a malformed word color with the
// default, the way the settings page treats it.
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.Clock.WordColor = ColorOrDefault(c.Clock.WordColor).Hex()
	if strings.TrimSpace(c.Clock.Timezone) == "" {
		c.Clock.Timezone = "Local"
	}
	if c.Clock.PollIntervalMs <= 0 {
		c.Clock.PollIntervalMs = 1000
	}
	if c.Display.Width == 0 {
		c.Display.Width = PlateWidth
	}
	if c.Display.Height == 0 {
		c.Display.Height = PlateHeight
	}
	if c.Display.FrameRateHz <= 0 {
		c.Display.FrameRateHz = 30
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = ":8080"
	}
	if strings.TrimSpace(c.Server.DataDir) == "" {
		c.Server.DataDir = "./data"
	}
}

func (c Config) Validate() error {
	c.Normalize()
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("clock.timezone: %w", err)
	}
	if c.Clock.PollIntervalMs > 60_000 {
		return fmt.Errorf("clock.poll_interval_ms must be <= 60000")
	}
	d := c.Display
	if d.OffsetX < 0 || d.OffsetY < 0 {
		return fmt.Errorf("display offsets must be >= 0")
	}
	if d.OffsetX+PlateWidth > d.Width || d.OffsetY+PlateHeight > d.Height {
		return fmt.Errorf("display %dx%d cannot hold the %dx%d plate at offset (%d,%d)",
			d.Width, d.Height, PlateWidth, PlateHeight, d.OffsetX, d.OffsetY)
	}
	if d.FrameRateHz > 240 {
		return fmt.Errorf("display.frame_rate_hz must be <= 240")
	}
	return nil
}

func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Clock.Timezone)
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Clock.PollIntervalMs) * time.Millisecond
}
