package ui

import "github.com/rivo/tview"

// MenuHint describes a keyboard shortcut for display in the menu bar.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool // true for 0-9 shortcuts (displayed in a different color)
}

// Component is a page that can be pushed on the page stack.
type Component interface {
	tview.Primitive
	Name() string
	// Start runs when the component becomes the top page, Stop when it leaves.
	Start()
	Stop()
	Hints() []MenuHint
}
