package ticketview

import "testing"

func TestDrawerInitialState(t *testing.T) {
	d := NewDrawer()
	if d.Current() != DrawerClosed {
		t.Errorf("initial state = %s, want CLOSED", d.Current())
	}
	var zero Drawer
	if zero.IsOpen() {
		t.Error("zero drawer reports open")
	}
}

func TestDrawerToggles(t *testing.T) {
	d := NewDrawer()
	for i := 0; i < 3; i++ {
		if err := d.Transition(DrawerOpen); err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		if !d.IsOpen() {
			t.Fatalf("open #%d: drawer not open", i)
		}
		if err := d.Transition(DrawerClosed); err != nil {
			t.Fatalf("close #%d: %v", i, err)
		}
		if d.IsOpen() {
			t.Fatalf("close #%d: drawer still open", i)
		}
	}
}

func TestDrawerRejectsSameState(t *testing.T) {
	d := NewDrawer()
	if err := d.Transition(DrawerClosed); err == nil {
		t.Error("CLOSED -> CLOSED should fail")
	}
	_ = d.Transition(DrawerOpen)
	if err := d.Transition(DrawerOpen); err == nil {
		t.Error("OPEN -> OPEN should fail")
	}
	if d.Current() != DrawerOpen {
		t.Errorf("state = %s after rejected transition, want OPEN", d.Current())
	}
}
