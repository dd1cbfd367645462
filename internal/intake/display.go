package intake

import "strconv"

// DisplayState is everything the view needs to render the big cup.
type DisplayState struct {
	Filled int
	Units  int

	// Ratio is Filled/Units in [0, 1]; it also sizes the percentage section.
	Ratio          float64
	Percent        float64
	PercentVisible bool
	PercentLabel   string

	RemainingLiters  float64
	RemainingVisible bool
	RemainingLabel   string
}

// ComputeDisplay derives the display values for k filled cups. The
// percentage section is hidden when k is 0 and the remaining section is
// hidden when every cup is filled.
func ComputeDisplay(cfg Config, k int) DisplayState {
	n := cfg.Units
	state := DisplayState{Filled: k, Units: n}
	if n > 0 {
		state.Ratio = float64(k) / float64(n)
	}
	state.Percent = state.Ratio * 100
	state.RemainingLiters = cfg.GoalLiters - float64(cfg.UnitVolumeMl*k)/1000

	if k > 0 {
		state.PercentVisible = true
		state.PercentLabel = FormatNumber(state.Percent) + "%"
	}
	if k < n {
		state.RemainingVisible = true
		state.RemainingLabel = FormatNumber(state.RemainingLiters) + "L"
	}
	return state
}

// FormatNumber renders v with the fewest digits that round-trip, so whole
// numbers have no fractional part and inexact fractions keep every digit.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
