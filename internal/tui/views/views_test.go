package views

import (
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/wppdesk/internal/billing"
	"github.com/matheus3301/wppdesk/internal/helpdesk"
	"github.com/matheus3301/wppdesk/internal/ticketview"
	"github.com/matheus3301/wppdesk/internal/tui/ui"
)

func TestSanitizeForTerminal(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"👍🏽", "👍"},
		{"a‍b", "ab"},
		{"line1\nline2\tx", "line1\nline2\tx"},
		{"bell\x07", "bell"},
		{"esc\x1b[31m", "esc[31m"},
	}
	for _, tt := range tests {
		if got := sanitizeForTerminal(tt.in); got != tt.want {
			t.Errorf("sanitizeForTerminal(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	if got := formatTimestamp(time.Time{}, now); got != "" {
		t.Errorf("zero time = %q, want empty", got)
	}
	if got := formatTimestamp(time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC), now); got != "09:05" {
		t.Errorf("today = %q, want 09:05", got)
	}
	if got := formatTimestamp(time.Date(2026, 2, 1, 9, 5, 0, 0, time.UTC), now); got != "01/02" {
		t.Errorf("older = %q, want 01/02", got)
	}
}

func TestTagColor(t *testing.T) {
	if got := tagColor("#A1b2C3"); got != "#A1b2C3" {
		t.Errorf("tagColor(hex) = %q", got)
	}
	for _, c := range []string{"", "red", "#fff", "#12345g"} {
		if got := tagColor(c); got != "white" {
			t.Errorf("tagColor(%q) = %q, want white", c, got)
		}
	}
}

func TestRenderQR(t *testing.T) {
	out := renderQR("https://billing.example/a.pdf")
	if strings.Contains(out, "failed") {
		t.Fatalf("renderQR failed: %s", out)
	}
	if !strings.ContainsAny(out, "█▀▄") {
		t.Error("renderQR produced no blocks")
	}
}

func TestFilterTickets(t *testing.T) {
	tickets := []helpdesk.Ticket{
		{ID: 12, Contact: helpdesk.Contact{Name: "Maria Silva", Number: "5585999"}, LastMessage: "boleto atrasado"},
		{ID: 30, Contact: helpdesk.Contact{Name: "João", Number: "5511888"}, LastMessage: "internet caiu"},
	}
	tests := []struct {
		query string
		want  []int64
	}{
		{"", []int64{12, 30}},
		{"maria", []int64{12}},
		{"BOLETO", []int64{12}},
		{"5511", []int64{30}},
		{"30", []int64{30}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		got := filterTickets(tickets, tt.query)
		var ids []int64
		for _, tk := range got {
			ids = append(ids, tk.ID)
		}
		if len(ids) != len(tt.want) {
			t.Errorf("filter %q = %v, want %v", tt.query, ids, tt.want)
			continue
		}
		for i := range ids {
			if ids[i] != tt.want[i] {
				t.Errorf("filter %q = %v, want %v", tt.query, ids, tt.want)
			}
		}
	}
}

func TestTicketListSelection(t *testing.T) {
	tl := NewTicketList(ui.DefaultTheme())
	var opened int64
	tl.SetOnOpen(func(id int64) { opened = id })
	tl.Update([]helpdesk.Ticket{{ID: 5}, {ID: 9, Contact: helpdesk.Contact{Name: "Ana"}}})

	if got := tl.SelectedID(); got != 5 {
		t.Errorf("SelectedID() = %d, want 5", got)
	}
	tl.SetFilter("ana")
	if len(tl.Visible()) != 1 || tl.SelectedID() != 9 {
		t.Errorf("after filter visible = %v, selected = %d", tl.Visible(), tl.SelectedID())
	}
	tl.Select(1, 0)
	if opened != 0 {
		t.Error("Select alone should not open")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Errorf("truncate short = %q", got)
	}
}

func TestHeaderText(t *testing.T) {
	theme := ui.DefaultTheme()

	if got := headerText(ticketview.Layout{HeaderLoading: true}, theme); !strings.Contains(got, "Loading") {
		t.Errorf("loading header = %q", got)
	}

	ticket := &helpdesk.Ticket{
		ID:     3,
		Status: helpdesk.StatusOpen,
		User:   &helpdesk.User{Name: "Agent Smith"},
		Tags:   []helpdesk.Tag{{Name: "vip", Color: "#ff0000"}},
	}
	l := ticketview.Render(ticketview.State{
		TicketID: 3,
		Ticket:   ticket,
		Contact:  helpdesk.Contact{Name: "Maria"},
	})
	got := headerText(l, theme)
	for _, want := range []string{"Maria", "OPEN", "Agent Smith", "[#ff0000]", "vip"} {
		if !strings.Contains(got, want) {
			t.Errorf("header missing %q: %q", want, got)
		}
	}

	ticket.User = nil
	l = ticketview.Render(ticketview.State{TicketID: 3, Ticket: ticket})
	if got := headerText(l, theme); strings.Contains(got, "Assigned") {
		t.Errorf("unassigned header shows assignee: %q", got)
	}
}

func TestThreadText(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	if got := threadText(nil, "Maria", false, now); !strings.Contains(got, "No messages") {
		t.Errorf("empty thread = %q", got)
	}

	msgs := []helpdesk.Message{
		{Body: "oi", CreatedAt: now},
		{Body: "olá [red]", FromMe: true, CreatedAt: now},
	}
	got := threadText(msgs, "Maria", true, now)
	if !strings.Contains(got, "load older") {
		t.Error("thread missing older marker")
	}
	if strings.Index(got, "Maria") > strings.Index(got, "You") {
		t.Error("messages out of order")
	}
	if !strings.Contains(got, "olá [red[]") {
		t.Errorf("body not escaped: %q", got)
	}
}

func TestInvoiceText(t *testing.T) {
	theme := ui.DefaultTheme()
	if got := invoiceText(ticketview.Layout{InvoiceBusy: true}, theme); !strings.Contains(got, "Looking up") {
		t.Errorf("busy = %q", got)
	}
	got := invoiceText(ticketview.Layout{Invoice: &billing.Invoice{
		Message: "Segunda via gerada",
		PDFURL:  "http://x/a.pdf",
		Barcode: "23790",
	}}, theme)
	for _, want := range []string{"Segunda via gerada", "http://x/a.pdf", "23790", "█"} {
		if !strings.Contains(got, want) {
			t.Errorf("invoice text missing %q", want)
		}
	}
}

func TestContactText(t *testing.T) {
	theme := ui.DefaultTheme()
	if got := contactText(helpdesk.Contact{}, theme); !strings.Contains(got, "No contact") {
		t.Errorf("empty contact = %q", got)
	}
	got := contactText(helpdesk.Contact{
		Name:      "Maria",
		Email:     "m@example.com",
		ExtraInfo: []helpdesk.ExtraInfo{{Name: "Plano", Value: "300MB"}},
	}, theme)
	for _, want := range []string{"Maria", "m@example.com", "Plano", "300MB"} {
		if !strings.Contains(got, want) {
			t.Errorf("contact text missing %q", want)
		}
	}
	if strings.Contains(got, "Number") {
		t.Error("empty number row rendered")
	}
}

func TestTicketPageApply(t *testing.T) {
	tp := NewTicketPage(ui.DefaultTheme())

	closed := &helpdesk.Ticket{ID: 1, Status: helpdesk.StatusClosed}
	tp.Apply(ticketview.Render(ticketview.State{TicketID: 1, Ticket: closed, DrawerOpen: true}))
	if !tp.DrawerShown() {
		t.Error("drawer not shown")
	}
	if tp.Thread().ComposerVisible() {
		t.Error("composer visible on closed ticket")
	}

	open := &helpdesk.Ticket{ID: 1, Status: helpdesk.StatusOpen}
	tp.Apply(ticketview.Render(ticketview.State{TicketID: 1, Ticket: open}))
	if tp.DrawerShown() {
		t.Error("drawer still shown")
	}
	if !tp.Thread().ComposerVisible() {
		t.Error("composer hidden on open ticket")
	}
}

func TestInvoicePanelResetSilent(t *testing.T) {
	ip := NewInvoicePanel(ui.DefaultTheme())
	var changes []string
	ip.SetHandlers(func(s string) { changes = append(changes, s) }, nil)
	ip.Input().SetText("123")
	ip.Reset("")
	if len(changes) != 1 || changes[0] != "123" {
		t.Errorf("changes = %v, want [123]", changes)
	}
	if ip.Input().GetText() != "" {
		t.Error("Reset did not clear input")
	}
	ip.Reset("456")
	if ip.Input().GetText() != "456" || len(changes) != 1 {
		t.Errorf("input = %q, changes = %v", ip.Input().GetText(), changes)
	}
}

func TestInvoicePanelRedrawsSamePDF(t *testing.T) {
	ip := NewInvoicePanel(ui.DefaultTheme())
	ip.Update(ticketview.Layout{Invoice: &billing.Invoice{Message: "primeira", PDFURL: "http://x/a.pdf", Barcode: "111"}})
	if got := ip.result.GetText(true); !strings.Contains(got, "primeira") {
		t.Fatalf("result = %q", got)
	}

	ip.Update(ticketview.Layout{Invoice: &billing.Invoice{Message: "segunda", PDFURL: "http://x/a.pdf", Barcode: "222"}})
	got := ip.result.GetText(true)
	if !strings.Contains(got, "segunda") || !strings.Contains(got, "222") {
		t.Errorf("result not redrawn for new lookup with the same PDF: %q", got)
	}

	ip.Update(ticketview.Layout{})
	if got := ip.result.GetText(true); strings.Contains(got, "segunda") {
		t.Errorf("cleared invoice still shown: %q", got)
	}
}

func TestTicketPageSwitchSyncsTaxID(t *testing.T) {
	tp := NewTicketPage(ui.DefaultTheme())
	var changes []string
	tp.Invoice().SetHandlers(func(s string) { changes = append(changes, s) }, nil)

	tp.Apply(ticketview.Render(ticketview.State{TicketID: 1, Ticket: &helpdesk.Ticket{ID: 1}}))
	tp.Invoice().Input().SetText("123.456.789-00")

	// Same ticket: the agent's text stays.
	tp.Apply(ticketview.Render(ticketview.State{TicketID: 1, Ticket: &helpdesk.Ticket{ID: 1}, TaxID: "123.456.789-00"}))
	if got := tp.Invoice().Input().GetText(); got != "123.456.789-00" {
		t.Errorf("input = %q after re-render", got)
	}

	// Another ticket: the field follows the controller, which cleared it.
	tp.Apply(ticketview.Render(ticketview.State{TicketID: 2, Ticket: &helpdesk.Ticket{ID: 2}}))
	if got := tp.Invoice().Input().GetText(); got != "" {
		t.Errorf("input = %q after switching ticket, want empty", got)
	}
	if len(changes) != 1 {
		t.Errorf("changes = %v, switch must not echo back to the controller", changes)
	}
}
