package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/h2o/internal/intake"
)

const (
	colorReset = "\x1b[0m"
	colorFill  = "\x1b[36m"
	colorDim   = "\x1b[90m"

	filledCup = "■"
	emptyCup  = "□"
)

// ShouldUseColor reports whether ANSI colors suit w.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// CupBar renders filled and empty cups, e.g. "■■■□□□□□".
func CupBar(state intake.DisplayState, useColor bool) string {
	empty := state.Units - state.Filled
	if empty < 0 {
		empty = 0
	}
	filled := strings.Repeat(filledCup, state.Filled)
	rest := strings.Repeat(emptyCup, empty)
	if useColor {
		if filled != "" {
			filled = colorFill + filled + colorReset
		}
		if rest != "" {
			rest = colorDim + rest + colorReset
		}
	}
	return filled + rest
}

// RenderStatus prints the display state for a single k.
func RenderStatus(w io.Writer, state intake.DisplayState, useColor bool) error {
	if _, err := fmt.Fprintf(w, "Cups: %s %d/%d\n", CupBar(state, useColor), state.Filled, state.Units); err != nil {
		return err
	}
	percent := "hidden"
	if state.PercentVisible {
		percent = state.PercentLabel
	}
	if _, err := fmt.Fprintf(w, "Percentage: %s\n", percent); err != nil {
		return err
	}
	remaining := "hidden"
	if state.RemainingVisible {
		remaining = state.RemainingLabel
	}
	if _, err := fmt.Fprintf(w, "Remained: %s\n", remaining); err != nil {
		return err
	}
	return nil
}

// RenderTable prints the display state for every k from 0 to Units.
func RenderTable(w io.Writer, cfg intake.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	headers := []string{"Cups", "Percent", "Remaining"}
	rows := make([][]string, 0, cfg.Units+1)
	for k := 0; k <= cfg.Units; k++ {
		state := intake.ComputeDisplay(cfg, k)
		percent := "-"
		if state.PercentVisible {
			percent = state.PercentLabel
		}
		remaining := "-"
		if state.RemainingVisible {
			remaining = state.RemainingLabel
		}
		rows = append(rows, []string{fmt.Sprintf("%d/%d", k, cfg.Units), percent, remaining})
	}
	rightAlign := map[int]bool{0: true, 1: true, 2: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
