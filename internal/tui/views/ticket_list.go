package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wppdesk/internal/helpdesk"
	"github.com/matheus3301/wppdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

// PageTickets is the page name of the ticket list.
const PageTickets = "tickets"

// TicketList displays tickets in a table.
type TicketList struct {
	*tview.Table
	theme   *ui.Theme
	tickets []helpdesk.Ticket
	visible []helpdesk.Ticket
	filter  string
	mineID  int64
	onOpen  func(id int64)
	onStart func()
	now     func() time.Time
}

// NewTicketList creates a new ticket list view.
func NewTicketList(theme *ui.Theme) *TicketList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitle(" Tickets ")
	table.SetTitleColor(theme.TitleColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	tl := &TicketList{
		Table: table,
		theme: theme,
		now:   time.Now,
	}
	table.SetSelectedFunc(func(row, _ int) {
		if id := tl.idAt(row); id != 0 && tl.onOpen != nil {
			tl.onOpen(id)
		}
	})
	tl.render()
	return tl
}

// Name implements Component.
func (tl *TicketList) Name() string { return PageTickets }

// Start implements Component. It runs every time the list comes on top.
func (tl *TicketList) Start() {
	if tl.onStart != nil {
		tl.onStart()
	}
}

// Stop implements Component.
func (tl *TicketList) Stop() {}

// Hints implements Component.
func (tl *TicketList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Filter"},
		{Key: "r", Description: "Reload"},
		{Key: "m", Description: "More"},
		{Key: "0", Description: "Clear filter"},
	}
}

// SetOnOpen sets the callback run when a ticket row is selected.
func (tl *TicketList) SetOnOpen(fn func(id int64)) { tl.onOpen = fn }

// SetOnStart sets the callback run when the list is shown.
func (tl *TicketList) SetOnStart(fn func()) { tl.onStart = fn }

// SetMine highlights tickets assigned to the given user.
func (tl *TicketList) SetMine(userID int64) { tl.mineID = userID }

// Update replaces the tickets shown.
func (tl *TicketList) Update(tickets []helpdesk.Ticket) {
	tl.tickets = tickets
	tl.render()
}

// SetFilter narrows the list to tickets matching query.
func (tl *TicketList) SetFilter(query string) {
	tl.filter = strings.TrimSpace(query)
	tl.render()
}

// Filter returns the active filter.
func (tl *TicketList) Filter() string { return tl.filter }

// Visible returns the tickets that pass the filter, in display order.
func (tl *TicketList) Visible() []helpdesk.Ticket { return tl.visible }

// SelectedID returns the id of the highlighted ticket, or 0.
func (tl *TicketList) SelectedID() int64 {
	row, _ := tl.GetSelection()
	return tl.idAt(row)
}

func (tl *TicketList) idAt(row int) int64 {
	i := row - 1
	if i < 0 || i >= len(tl.visible) {
		return 0
	}
	return tl.visible[i].ID
}

func (tl *TicketList) render() {
	tl.Clear()
	tl.visible = filterTickets(tl.tickets, tl.filter)

	headers := []string{"#ID", "CONTACT", "LAST MESSAGE", "STATUS", "UPDATED"}
	for i, h := range headers {
		cell := tview.NewTableCell(h).
			SetTextColor(tl.theme.TableHeaderFg).
			SetBackgroundColor(tl.theme.TableHeaderBg).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold)
		if i == 2 {
			cell.SetExpansion(1)
		}
		tl.SetCell(0, i, cell)
	}

	now := tl.now()
	for i, t := range tl.visible {
		row := i + 1
		fg := tl.theme.FgColor
		if tl.mineID != 0 && t.UserID == tl.mineID {
			fg = tl.theme.MineColor
		}
		cells := []string{
			strconv.FormatInt(t.ID, 10),
			sanitizeForTerminal(t.Contact.Name),
			truncate(sanitizeForTerminal(firstLine(t.LastMessage)), 60),
			strings.ToUpper(t.Status),
			formatTimestamp(t.UpdatedAt, now),
		}
		for col, text := range cells {
			cell := tview.NewTableCell(escape(text)).SetTextColor(fg)
			if col == 2 {
				cell.SetExpansion(1)
			}
			tl.SetCell(row, col, cell)
		}
	}

	title := fmt.Sprintf(" Tickets [%s](%d)[-] ", ui.Tag(tl.theme.CounterColor), len(tl.visible))
	if tl.filter != "" {
		title = fmt.Sprintf(" Tickets [%s](%d)[-] /%s ", ui.Tag(tl.theme.CounterColor), len(tl.visible), escape(tl.filter))
	}
	tl.SetTitle(title)

	if len(tl.visible) > 0 {
		if r, _ := tl.GetSelection(); r < 1 || r > len(tl.visible) {
			tl.Select(1, 0)
		}
	}
}

func filterTickets(tickets []helpdesk.Ticket, query string) []helpdesk.Ticket {
	if query == "" {
		return tickets
	}
	q := strings.ToLower(query)
	var out []helpdesk.Ticket
	for _, t := range tickets {
		if strings.Contains(strconv.FormatInt(t.ID, 10), q) ||
			strings.Contains(strings.ToLower(t.Contact.Name), q) ||
			strings.Contains(strings.ToLower(t.Contact.Number), q) ||
			strings.Contains(strings.ToLower(t.LastMessage), q) {
			out = append(out, t)
		}
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
