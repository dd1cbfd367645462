package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/h2o/internal/intake"
)

const (
	bigCupWidth    = 18
	bigCupHeight   = 10
	smallCupWidth  = 6
	smallCupHeight = 2
	cupGap         = 1

	// Border adds one cell on every side.
	smallCupOuterWidth  = smallCupWidth + 2
	smallCupOuterHeight = smallCupHeight + 2
)

const (
	sectionHeader = iota
	sectionBigCup
	sectionPrompt
	sectionCups
	sectionHelp
)

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	subtitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	bigCupStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), false, true, true, true).BorderForeground(lipgloss.Color("#144FC6"))
	remainedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	litersStyle    = remainedStyle.Copy().Bold(true)
	percentStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#6AB3F8")).Foreground(lipgloss.Color("#0B1F3A")).Bold(true)
	emptyCupStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#144FC6")).Foreground(lipgloss.Color("#8C8C8C"))
	filledCupStyle = emptyCupStyle.Copy().Background(lipgloss.Color("#6AB3F8")).Foreground(lipgloss.Color("#0B1F3A"))
	cursorBorder   = lipgloss.Color("#C89A3A")
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type layout struct {
	top      int
	cupsTop  int
	cupsLeft int
	perRow   int
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := m.renderSections()
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(sections, footer)...)
	}
	l := m.layoutFor(sections)
	bodyHeight := m.height - 1
	lines := make([]string, 0, m.height)
	for i := 0; i < l.top; i++ {
		lines = append(lines, "")
	}
	for _, section := range sections {
		lines = append(lines, strings.Split(m.centerBlock(section), "\n")...)
	}
	for len(lines) < bodyHeight {
		lines = append(lines, "")
	}
	if len(lines) > bodyHeight {
		lines = lines[:bodyHeight]
	}
	if footer != "" {
		lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSections() []string {
	sections := make([]string, sectionHelp+1)
	sections[sectionHeader] = m.renderHeader()
	sections[sectionBigCup] = renderBigCup(m.state)
	sections[sectionPrompt] = promptStyle.Render("Select how many glasses of water that you have drank")
	sections[sectionCups] = m.renderCups()
	help := m.help.View(m.keys)
	if m.errMsg != "" {
		help += "\n" + errorStyle.Render(m.errMsg)
	}
	sections[sectionHelp] = help
	return sections
}

func (m *Model) renderHeader() string {
	cfg := m.tracker.Config()
	title := titleStyle.Render("Drink Water")
	goal := subtitleStyle.Render(fmt.Sprintf("Goal: %s Liters", intake.FormatNumber(cfg.GoalLiters)))
	return lipgloss.JoinVertical(lipgloss.Center, title, goal, "")
}

func renderBigCup(state intake.DisplayState) string {
	fillRows := fillRowsFor(state, bigCupHeight)
	remainedRows := bigCupHeight - fillRows

	var parts []string
	if remainedRows > 0 {
		text := ""
		if state.RemainingVisible {
			text = litersStyle.Render(state.RemainingLabel)
			if remainedRows > 1 {
				text += "\n" + remainedStyle.Render("Remained")
			}
		}
		parts = append(parts, lipgloss.Place(bigCupWidth, remainedRows, lipgloss.Center, lipgloss.Center, text))
	}
	if fillRows > 0 {
		label := ""
		if state.PercentVisible {
			label = state.PercentLabel
		}
		parts = append(parts, percentStyle.
			Width(bigCupWidth).
			Height(fillRows).
			Align(lipgloss.Center, lipgloss.Center).
			Render(label))
	}
	return bigCupStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// fillRowsFor sizes the percentage section. A visible section gets at least
// one row and a visible remainder keeps at least one row.
func fillRowsFor(state intake.DisplayState, height int) int {
	rows := int(math.Round(state.Ratio * float64(height)))
	if state.PercentVisible && rows < 1 {
		rows = 1
	}
	if state.RemainingVisible && rows > height-1 {
		rows = height - 1
	}
	if !state.PercentVisible {
		rows = 0
	}
	return min(max(rows, 0), height)
}

func (m *Model) renderCups() string {
	n := m.tracker.Units()
	perRow := m.cupsPerRow()
	gap := strings.Repeat(" ", cupGap)
	var rows []string
	for start := 0; start < n; start += perRow {
		end := min(start+perRow, n)
		cells := make([]string, 0, 2*(end-start))
		for i := start; i < end; i++ {
			if i > start {
				cells = append(cells, gap)
			}
			cells = append(cells, m.renderSmallCup(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderSmallCup(i int) string {
	style := emptyCupStyle
	if m.tracker.Filled(i) {
		style = filledCupStyle
	}
	if i == m.cursor {
		style = style.Copy().BorderForeground(cursorBorder)
	}
	volume := runewidth.Truncate(fmt.Sprintf("%d", m.tracker.Config().UnitVolumeMl), smallCupWidth, "")
	return style.
		Width(smallCupWidth).
		Height(smallCupHeight).
		Align(lipgloss.Center).
		Render(volume + "\nml")
}

func (m *Model) cupsPerRow() int {
	n := m.tracker.Units()
	if m.width <= 0 {
		return n
	}
	perRow := (m.width + cupGap) / (smallCupOuterWidth + cupGap)
	return min(max(perRow, 1), n)
}

func (m *Model) centerBlock(block string) string {
	pad := leftPad(m.width, lipgloss.Width(block))
	if pad == 0 {
		return block
	}
	return lipgloss.NewStyle().MarginLeft(pad).Render(block)
}

func leftPad(total, width int) int {
	if width >= total {
		return 0
	}
	return (total - width) / 2
}

func (m *Model) layoutFor(sections []string) layout {
	contentHeight := 0
	for _, section := range sections {
		contentHeight += lipgloss.Height(section)
	}
	top := max((m.height-1-contentHeight)/2, 0)
	cupsTop := top
	for _, section := range sections[:sectionCups] {
		cupsTop += lipgloss.Height(section)
	}
	return layout{
		top:      top,
		cupsTop:  cupsTop,
		cupsLeft: leftPad(m.width, lipgloss.Width(sections[sectionCups])),
		perRow:   m.cupsPerRow(),
	}
}

// cupAt maps a screen cell to the small cup drawn there.
func (m *Model) cupAt(x, y int) (int, bool) {
	if m.width == 0 || m.height == 0 {
		return 0, false
	}
	l := m.layoutFor(m.renderSections())
	dx, dy := x-l.cupsLeft, y-l.cupsTop
	if dx < 0 || dy < 0 {
		return 0, false
	}
	cell := smallCupOuterWidth + cupGap
	col := dx / cell
	if col >= l.perRow || dx%cell >= smallCupOuterWidth {
		return 0, false
	}
	idx := (dy/smallCupOuterHeight)*l.perRow + col
	if idx >= m.tracker.Units() {
		return 0, false
	}
	return idx, true
}
