package engine

import (
	_ "embed"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/wobble/engine/core"
)

//go:embed application.toml
var defaultApplicationConfig []byte

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// The application name used in windowing, if applicable.
	Name         string `toml:"name"`
	LogLevelName string `toml:"log_level"`
	Debug        bool   `toml:"debug"`

	LogLevel core.LogLevel `toml:"-"`
}

// DefaultApplicationConfig decodes the configuration compiled into the binary.
func DefaultApplicationConfig() (*ApplicationConfig, error) {
	return ParseApplicationConfig(defaultApplicationConfig)
}

// ParseApplicationConfig decodes and validates a TOML application configuration.
func ParseApplicationConfig(data []byte) (*ApplicationConfig, error) {
	cfg := &ApplicationConfig{
		LogLevelName: "info",
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode application config: %w", err)
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("application config: name is required")
	}
	if cfg.StartWidth == 0 || cfg.StartHeight == 0 {
		return nil, fmt.Errorf("application config: window size %dx%d must be positive", cfg.StartWidth, cfg.StartHeight)
	}
	level, err := core.ParseLogLevel(cfg.LogLevelName)
	if err != nil {
		return nil, fmt.Errorf("application config: %w", err)
	}
	cfg.LogLevel = level
	return cfg, nil
}
