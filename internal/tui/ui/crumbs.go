package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Crumbs shows where the agent is: "tickets › ticket #42".
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &Crumbs{TextView: tv, theme: theme}
}

// Update redraws the trail for the given page stack. label may rename pages.
func (c *Crumbs) Update(stack []string, label func(page string) string) {
	c.SetText(c.trail(stack, label))
}

func (c *Crumbs) trail(stack []string, label func(page string) string) string {
	parts := make([]string, 0, len(stack))
	last := len(stack) - 1
	for i, page := range stack {
		if label != nil {
			page = label(page)
		}
		fg, bg, attr := c.theme.CrumbInactiveFg, c.theme.CrumbInactiveBg, ""
		if i == last {
			fg, bg, attr = c.theme.CrumbActiveFg, c.theme.CrumbActiveBg, "b"
		}
		parts = append(parts, fmt.Sprintf("[%s:%s:%s] %s [-:-:-]",
			colorName(fg), colorName(bg), attr, tview.Escape(page)))
	}
	return strings.Join(parts, " › ")
}

// colorName turns a tcell color into something tview color tags accept.
func colorName(c tcell.Color) string {
	for name, val := range tcell.ColorNames {
		if val == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}
