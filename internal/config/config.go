package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	World   WorldConfig   `toml:"world"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Name string `toml:"name"`
	ID   int    `toml:"id"`
}

type WorldConfig struct {
	TickRate      time.Duration `toml:"tick_rate"`
	SightRadius   int32         `toml:"sight_radius"`   // Chebyshev broadcast range
	RegionCell    int32         `toml:"region_cell"`    // region grid cell size (>= sight radius)
	RecentRegions int           `toml:"recent_regions"` // trailing crossing history per entity
	DataDir       string        `toml:"data_dir"`
	ScriptsDir    string        `toml:"scripts_dir"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // "json" or "console"
	File       string `toml:"file"`   // "" = stderr only
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
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
	if cfg.World.RegionCell < cfg.World.SightRadius {
		return nil, fmt.Errorf("config %s: region_cell %d smaller than sight_radius %d",
			path, cfg.World.RegionCell, cfg.World.SightRadius)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "Gridveil",
			ID:   1,
		},
		World: WorldConfig{
			TickRate:      200 * time.Millisecond,
			SightRadius:   20,
			RegionCell:    20,
			RecentRegions: 8,
			DataDir:       "data",
			ScriptsDir:    "scripts",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  64,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
	}
}
