// Package model defines shared data structures.
package model

import "time"

// IP sources for the footer.
const (
	IPSourceProviders = "providers"
	IPSourceInstance  = "instance"
	IPSourceNone      = "none"
)

// Config defines widget settings after flags and the config file are merged.
type Config struct {
	Units        int
	UnitVolumeMl int
	GoalLiters   float64

	IPSource    string
	Providers   []string
	IPTimeout   time.Duration
	Instance    string
	GeoIPDB     string
	Clock       bool
	ClockLayout string
}

// ShowsIP reports whether the footer has an IP segment.
func (c Config) ShowsIP() bool {
	return c.IPSource == IPSourceProviders || c.IPSource == IPSourceInstance
}
