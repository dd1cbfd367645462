// Package clock formats the footer date/time.
package clock

import "time"

// DefaultLayout matches the common en-US "M/D/YYYY, h:mm:ss AM" rendering.
const DefaultLayout = "1/2/2006, 3:04:05 PM"

// Interval is how often the displayed time is refreshed.
const Interval = time.Second

// Format renders t in local time. An empty layout uses DefaultLayout.
func Format(t time.Time, layout string) string {
	if layout == "" {
		layout = DefaultLayout
	}
	return t.Local().Format(layout)
}
