package ui

import (
	"testing"

	"github.com/rivo/tview"
)

type fakeComponent struct {
	*tview.Box
	name    string
	started int
	stopped int
}

func newFakeComponent(name string) *fakeComponent {
	return &fakeComponent{Box: tview.NewBox(), name: name}
}

func (f *fakeComponent) Name() string      { return f.name }
func (f *fakeComponent) Start()            { f.started++ }
func (f *fakeComponent) Stop()             { f.stopped++ }
func (f *fakeComponent) Hints() []MenuHint { return nil }

func TestPagesLifecycle(t *testing.T) {
	p := NewPages()
	list := newFakeComponent("tickets")
	ticket := newFakeComponent("ticket")
	p.Register(list)
	p.Register(ticket)

	var changes [][]string
	p.SetOnChange(func(stack []string) { changes = append(changes, stack) })

	p.Reset("tickets")
	p.Push("ticket")
	p.Push("ticket")

	if got := p.Stack(); len(got) != 2 || got[1] != "ticket" {
		t.Fatalf("stack = %v", got)
	}
	if list.started != 1 || list.stopped != 1 {
		t.Errorf("list started/stopped = %d/%d, want 1/1", list.started, list.stopped)
	}
	if ticket.started != 1 {
		t.Errorf("ticket started %d times, want 1", ticket.started)
	}

	if popped := p.Pop(); popped != "ticket" {
		t.Errorf("Pop() = %q", popped)
	}
	if popped := p.Pop(); popped != "" {
		t.Errorf("popping the last page = %q, want empty", popped)
	}
	if p.Current() != "tickets" || list.started != 2 || ticket.stopped != 1 {
		t.Errorf("after pop: current=%q list.started=%d ticket.stopped=%d", p.Current(), list.started, ticket.stopped)
	}
	if len(changes) != 3 {
		t.Errorf("onChange fired %d times, want 3", len(changes))
	}
}
