package tui

import (
	"strings"

	"github.com/verte-zerg/h2o/internal/clock"
)

const footerSeparator = "  ·  "

func (m *Model) renderFooter() string {
	var segments []string
	switch {
	case m.ipPending:
		segments = append(segments, m.spinner.View()+" resolving IP")
	case m.ipLine != "":
		segments = append(segments, m.ipLine)
	}
	if m.ipNote != "" {
		segments = append(segments, m.ipNote)
	}
	if m.config.Clock {
		segments = append(segments, clock.Format(m.now, m.config.ClockLayout))
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, footerSeparator))
}
