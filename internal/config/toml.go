// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Tracker TrackerConfig `toml:"tracker"`
	Footer  FooterConfig  `toml:"footer"`
}

// TrackerConfig maps cup and goal settings.
type TrackerConfig struct {
	Units        *int     `toml:"units"`
	UnitVolumeMl *int     `toml:"unit-ml"`
	GoalLiters   *float64 `toml:"goal-liters"`
}

// FooterConfig maps IP and clock settings.
type FooterConfig struct {
	IPSource    *string   `toml:"ip-source"`
	Providers   *[]string `toml:"providers"`
	IPTimeout   *string   `toml:"ip-timeout"`
	Instance    *string   `toml:"instance"`
	GeoIPDB     *string   `toml:"geoip-db"`
	Clock       *bool     `toml:"clock"`
	ClockLayout *string   `toml:"clock-layout"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
