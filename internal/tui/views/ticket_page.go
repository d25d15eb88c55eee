package views

import (
	"github.com/matheus3301/wppdesk/internal/ticketview"
	"github.com/matheus3301/wppdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

// PageTicket is the page name of the ticket view.
const PageTicket = "ticket"

const (
	headerHeight   = 5
	invoiceHeight  = 14
	drawerFraction = 1
	mainFraction   = 2
)

// TicketPage composes the ticket header, thread, invoice panel and contact drawer.
type TicketPage struct {
	*tview.Flex
	theme   *ui.Theme
	header  *TicketHeader
	thread  *MessageThread
	invoice *InvoicePanel
	drawer  *ContactDrawer

	drawerShown bool
	ticketID    int64
}

// NewTicketPage creates the ticket page with the drawer collapsed.
func NewTicketPage(theme *ui.Theme) *TicketPage {
	header := NewTicketHeader(theme)
	thread := NewMessageThread(theme)
	invoice := NewInvoicePanel(theme)
	drawer := NewContactDrawer(theme)

	main := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, headerHeight, 0, false).
		AddItem(thread, 0, 1, true).
		AddItem(invoice, invoiceHeight, 0, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(main, 0, mainFraction, true).
		AddItem(drawer, 0, 0, false)

	return &TicketPage{
		Flex:    flex,
		theme:   theme,
		header:  header,
		thread:  thread,
		invoice: invoice,
		drawer:  drawer,
	}
}

// Name implements Component.
func (tp *TicketPage) Name() string { return PageTicket }

// Start implements Component.
func (tp *TicketPage) Start() {}

// Stop implements Component.
func (tp *TicketPage) Stop() {}

// Hints implements Component.
func (tp *TicketPage) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Reply"},
		{Key: "b", Description: "Invoice"},
		{Key: "d", Description: "Contact"},
		{Key: "o", Description: "Older"},
		{Key: "Esc", Description: "Back"},
	}
}

// Apply renders a layout produced by ticketview.Render.
func (tp *TicketPage) Apply(l ticketview.Layout) {
	var id int64
	if l.Ticket != nil {
		id = l.Ticket.ID
	}
	if id != tp.ticketID {
		tp.ticketID = id
		tp.invoice.Reset(l.TaxID)
	}

	tp.header.Update(l)
	tp.thread.Update(l.Messages, l.Contact.Name, l.MoreMessages)
	tp.thread.SetComposerVisible(l.ShowComposer)
	tp.invoice.Update(l)
	tp.drawer.Update(l.Contact)
	tp.setDrawer(l.DrawerOpen)
}

func (tp *TicketPage) setDrawer(open bool) {
	if open == tp.drawerShown {
		return
	}
	tp.drawerShown = open
	if open {
		tp.ResizeItem(tp.drawer, 0, drawerFraction)
	} else {
		tp.ResizeItem(tp.drawer, 0, 0)
	}
}

// DrawerShown reports whether the drawer currently takes space.
func (tp *TicketPage) DrawerShown() bool { return tp.drawerShown }

// Thread returns the message thread.
func (tp *TicketPage) Thread() *MessageThread { return tp.thread }

// Invoice returns the invoice panel.
func (tp *TicketPage) Invoice() *InvoicePanel { return tp.invoice }

// Drawer returns the contact drawer.
func (tp *TicketPage) Drawer() *ContactDrawer { return tp.drawer }
