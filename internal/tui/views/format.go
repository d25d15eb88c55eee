package views

import (
	"regexp"
	"time"

	"github.com/rivo/tview"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func escape(s string) string { return tview.Escape(s) }

// formatTimestamp shows the time for today and the date otherwise.
func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(now.Location())
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("02/01")
}

// tagColor returns a tview color for a backend tag color, falling back to white.
func tagColor(c string) string {
	if hexColor.MatchString(c) {
		return c
	}
	return "white"
}
