// Package intake tracks filled cups toward a daily water goal.
package intake

import (
	"errors"
	"fmt"
)

// Reference configuration: eight 250 ml cups toward a 2 liter goal.
const (
	DefaultUnits        = 8
	DefaultUnitVolumeMl = 250
	DefaultGoalLiters   = 2.0
)

var (
	// ErrInvalidIndex is returned when a selected cup does not exist.
	ErrInvalidIndex = errors.New("invalid cup index")
	// ErrInvalidConfig is returned by New for unusable tracker settings.
	ErrInvalidConfig = errors.New("invalid tracker config")
)

// IndexError reports a selection outside [0, Units).
type IndexError struct {
	Index int
	Units int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("cup %d out of range [0, %d)", e.Index, e.Units)
}

// Unwrap lets errors.Is match ErrInvalidIndex.
func (e *IndexError) Unwrap() error { return ErrInvalidIndex }

// Config sizes the cups and the goal.
type Config struct {
	Units        int
	UnitVolumeMl int
	GoalLiters   float64
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Units:        DefaultUnits,
		UnitVolumeMl: DefaultUnitVolumeMl,
		GoalLiters:   DefaultGoalLiters,
	}
}

// Validate checks that every dimension is positive.
func (c Config) Validate() error {
	if c.Units <= 0 {
		return fmt.Errorf("%w: units must be > 0", ErrInvalidConfig)
	}
	if c.UnitVolumeMl <= 0 {
		return fmt.Errorf("%w: unit volume must be > 0", ErrInvalidConfig)
	}
	if c.GoalLiters <= 0 {
		return fmt.Errorf("%w: goal must be > 0", ErrInvalidConfig)
	}
	return nil
}

// Tracker holds the cut index k: cups [0, k) are filled, [k, Units) are not.
// It is not safe for concurrent use.
type Tracker struct {
	cfg    Config
	filled int
}

// New returns a tracker with no cups filled.
func New(cfg Config) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tracker{cfg: cfg}, nil
}

// Config returns the tracker settings.
func (t *Tracker) Config() Config {
	return t.cfg
}

// Units returns the number of cups.
func (t *Tracker) Units() int {
	return t.cfg.Units
}

// Count returns the number of filled cups.
func (t *Tracker) Count() int {
	return t.filled
}

// Filled reports whether cup i is filled. Out-of-range cups are never filled.
func (t *Tracker) Filled(i int) bool {
	return i >= 0 && i < t.filled
}

// Select applies a click on cup idx. Clicking the last filled cup (or the
// final cup when everything is full) empties it and all cups after it;
// any other click fills every cup up to and including idx.
func (t *Tracker) Select(idx int) (DisplayState, error) {
	n := t.cfg.Units
	if idx < 0 || idx >= n {
		return t.Display(), &IndexError{Index: idx, Units: n}
	}
	if idx == n-1 && t.Filled(idx) {
		idx--
	} else if t.Filled(idx) && !t.Filled(idx+1) {
		idx--
	}
	t.filled = idx + 1
	return t.Display(), nil
}

// Reset empties every cup.
func (t *Tracker) Reset() DisplayState {
	t.filled = 0
	return t.Display()
}

// Display derives the current display values.
func (t *Tracker) Display() DisplayState {
	return ComputeDisplay(t.cfg, t.filled)
}
