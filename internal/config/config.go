// Package config handles service configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/skinforge/pkg/skin"
)

// Config holds all service settings.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Render  RenderConfig  `yaml:"render"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds template set locations. TemplatePack takes priority
// over TemplateDir when both are set.
type DataConfig struct {
	TemplateDir  string `yaml:"template_dir"`
	TemplatePack string `yaml:"template_pack"`
}

// RenderConfig holds the character format dimensions and output limits.
type RenderConfig struct {
	TextureWidth  int `yaml:"texture_width"`
	TextureHeight int `yaml:"texture_height"`
	CanvasWidth   int `yaml:"canvas_width"`
	CanvasHeight  int `yaml:"canvas_height"`
	MaxScale      int `yaml:"max_scale"`
}

// Format returns the configured dimensions as a skin.Format.
func (r RenderConfig) Format() skin.Format {
	return skin.Format{
		TextureWidth:  r.TextureWidth,
		TextureHeight: r.TextureHeight,
		CanvasWidth:   r.CanvasWidth,
		CanvasHeight:  r.CanvasHeight,
	}
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	f := skin.DefaultFormat()
	return &Config{
		Data: DataConfig{
			TemplateDir: "templates",
		},
		Render: RenderConfig{
			TextureWidth:  f.TextureWidth,
			TextureHeight: f.TextureHeight,
			CanvasWidth:   f.CanvasWidth,
			CanvasHeight:  f.CanvasHeight,
			MaxScale:      8,
		},
		Server: ServerConfig{
			Listen:          "127.0.0.1:8570",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
