package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/h2o/internal/intake"
	"github.com/verte-zerg/h2o/internal/model"
	"github.com/verte-zerg/h2o/internal/publicip"
)

type fakeSource struct {
	out   publicip.Outcome
	calls int
}

func (f *fakeSource) Lookup(context.Context) publicip.Outcome {
	f.calls++
	return f.out
}

type fakeAnnotator struct {
	calls int
}

func (f *fakeAnnotator) Annotate(ip string) string {
	f.calls++
	return "AS64500 Example · NL for " + ip
}

func newTestModel(t *testing.T, cfg model.Config, source publicip.Source) *Model {
	t.Helper()
	tracker, err := intake.New(intake.Config{
		Units:        cfg.Units,
		UnitVolumeMl: cfg.UnitVolumeMl,
		GoalLiters:   cfg.GoalLiters,
	})
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	return NewModel(context.Background(), cfg, tracker, source, nil)
}

func defaultTestConfig() model.Config {
	return model.Config{
		Units:        intake.DefaultUnits,
		UnitVolumeMl: intake.DefaultUnitVolumeMl,
		GoalLiters:   intake.DefaultGoalLiters,
		IPSource:     model.IPSourceNone,
	}
}

func pressRune(m *Model, r rune) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func click(m *Model, x, y int) {
	m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
}

func TestDigitKeySelectsCup(t *testing.T) {
	m := newTestModel(t, defaultTestConfig(), nil)
	pressRune(m, '4')
	if got := m.State().Filled; got != 4 {
		t.Fatalf("expected 4 filled cups, got %d", got)
	}
	pressRune(m, '4')
	if got := m.State().Filled; got != 3 {
		t.Fatalf("expected boundary toggle to 3, got %d", got)
	}
	pressRune(m, '1')
	if got := m.State().Filled; got != 1 {
		t.Fatalf("expected 1 filled cup, got %d", got)
	}
	pressRune(m, '1')
	if got := m.State().Filled; got != 0 {
		t.Fatalf("expected empty after toggling the only cup, got %d", got)
	}
}

func TestDigitBeyondUnitsIgnored(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Units = 4
	cfg.UnitVolumeMl = 500
	m := newTestModel(t, cfg, nil)
	pressRune(m, '9')
	if got := m.State().Filled; got != 0 {
		t.Fatalf("expected no change, got %d", got)
	}
	if m.errMsg != "" {
		t.Fatalf("expected no error, got %q", m.errMsg)
	}
}

func TestCursorSelectAndReset(t *testing.T) {
	m := newTestModel(t, defaultTestConfig(), nil)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.State().Filled; got != 3 {
		t.Fatalf("expected 3 filled cups, got %d", got)
	}
	if m.cursor != 2 {
		t.Fatalf("expected cursor on cup 2, got %d", m.cursor)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.cursor != 0 {
		t.Fatalf("expected cursor clamped at 0, got %d", m.cursor)
	}
	pressRune(m, 'r')
	if got := m.State().Filled; got != 0 {
		t.Fatalf("expected reset to 0, got %d", got)
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, defaultTestConfig(), nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestMouseClickSelectsCup(t *testing.T) {
	m := newTestModel(t, defaultTestConfig(), nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	l := m.layoutFor(m.renderSections())
	if l.perRow != intake.DefaultUnits {
		t.Fatalf("expected a single row of cups, got %d per row", l.perRow)
	}
	x := l.cupsLeft + 2*(smallCupOuterWidth+cupGap) + 1
	y := l.cupsTop + 1

	click(m, x, y)
	if got := m.State().Filled; got != 3 {
		t.Fatalf("expected 3 filled cups, got %d", got)
	}
	click(m, x, y)
	if got := m.State().Filled; got != 2 {
		t.Fatalf("expected boundary toggle to 2, got %d", got)
	}

	gapX := l.cupsLeft + smallCupOuterWidth
	click(m, gapX, y)
	click(m, 0, 0)
	if got := m.State().Filled; got != 2 {
		t.Fatalf("clicks outside cups changed state to %d", got)
	}
}

func TestMouseClickWrappedRow(t *testing.T) {
	m := newTestModel(t, defaultTestConfig(), nil)
	m.Update(tea.WindowSizeMsg{Width: 20, Height: 60})
	l := m.layoutFor(m.renderSections())
	if l.perRow != 2 {
		t.Fatalf("expected 2 cups per row, got %d", l.perRow)
	}
	x := l.cupsLeft + smallCupOuterWidth + cupGap + 1
	y := l.cupsTop + smallCupOuterHeight + 1
	click(m, x, y)
	if got := m.State().Filled; got != 4 {
		t.Fatalf("expected cup 3 selected (4 filled), got %d", got)
	}
}

func TestMouseIgnoresNonPress(t *testing.T) {
	m := newTestModel(t, defaultTestConfig(), nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	l := m.layoutFor(m.renderSections())
	m.Update(tea.MouseMsg{X: l.cupsLeft + 1, Y: l.cupsTop + 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if got := m.State().Filled; got != 0 {
		t.Fatalf("expected release to be ignored, got %d", got)
	}
}

func TestViewRendersDisplayState(t *testing.T) {
	m := newTestModel(t, defaultTestConfig(), nil)
	view := m.View()
	if !strings.Contains(view, "2L") || !strings.Contains(view, "Remained") {
		t.Fatalf("expected remaining 2L in initial view:\n%s", view)
	}
	if strings.Contains(view, "%") {
		t.Fatalf("expected percentage hidden in initial view:\n%s", view)
	}

	pressRune(m, '3')
	view = m.View()
	if !strings.Contains(view, "37.5%") || !strings.Contains(view, "1.25L") {
		t.Fatalf("expected 37.5%% and 1.25L:\n%s", view)
	}

	for _, r := range "45678" {
		pressRune(m, r)
	}
	view = m.View()
	if !strings.Contains(view, "100%") {
		t.Fatalf("expected 100%% when full:\n%s", view)
	}
	if strings.Contains(view, "Remained") {
		t.Fatalf("expected remaining hidden when full:\n%s", view)
	}
}

func TestViewFillsTerminal(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Clock = true
	m := newTestModel(t, cfg, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	lines := strings.Split(m.View(), "\n")
	if len(lines) != 40 {
		t.Fatalf("expected 40 lines, got %d", len(lines))
	}
}

func TestFillRowsFor(t *testing.T) {
	cfg := intake.DefaultConfig()
	cases := []struct {
		k    int
		want int
	}{
		{k: 0, want: 0},
		{k: 1, want: 1},
		{k: 4, want: 5},
		{k: 7, want: 9},
		{k: 8, want: 10},
	}
	for _, tc := range cases {
		if got := fillRowsFor(intake.ComputeDisplay(cfg, tc.k), 10); got != tc.want {
			t.Fatalf("k=%d: expected %d rows, got %d", tc.k, tc.want, got)
		}
	}

	many := intake.Config{Units: 100, UnitVolumeMl: 20, GoalLiters: 2}
	if got := fillRowsFor(intake.ComputeDisplay(many, 1), 10); got != 1 {
		t.Fatalf("expected a visible percentage to keep one row, got %d", got)
	}
	if got := fillRowsFor(intake.ComputeDisplay(many, 99), 10); got != 9 {
		t.Fatalf("expected a visible remainder to keep one row, got %d", got)
	}
}
