package ticketview

import (
	"fmt"
	"slices"
)

// DrawerState is the visibility of the contact drawer.
type DrawerState string

const (
	DrawerClosed DrawerState = "CLOSED"
	DrawerOpen   DrawerState = "OPEN"
)

// drawerTransitions defines allowed drawer transitions. There is no terminal
// state; the drawer toggles for the whole life of the view.
var drawerTransitions = map[DrawerState][]DrawerState{
	DrawerClosed: {DrawerOpen},
	DrawerOpen:   {DrawerClosed},
}

// Drawer tracks the drawer state. It is owned by the controller loop and is
// not safe for concurrent use.
type Drawer struct {
	current DrawerState
}

// NewDrawer returns a drawer in its initial, closed state.
func NewDrawer() Drawer {
	return Drawer{current: DrawerClosed}
}

// Current returns the current state.
func (d *Drawer) Current() DrawerState {
	if d.current == "" {
		return DrawerClosed
	}
	return d.current
}

// IsOpen reports whether the drawer is visible.
func (d *Drawer) IsOpen() bool {
	return d.Current() == DrawerOpen
}

// Transition moves to a new state. Returns error if transition is invalid,
// which includes asking for the state the drawer is already in.
func (d *Drawer) Transition(to DrawerState) error {
	from := d.Current()
	if !slices.Contains(drawerTransitions[from], to) {
		return fmt.Errorf("invalid drawer transition from %s to %s", from, to)
	}
	d.current = to
	return nil
}
