package ticketview

import (
	"github.com/matheus3301/wppdesk/internal/billing"
	"github.com/matheus3301/wppdesk/internal/helpdesk"
)

// RouteTickets is the navigation target when the view gives up its ticket.
const RouteTickets = "/tickets"

// State is everything the ticket view shows. The controller loop owns it;
// readers get copies through Controller.Snapshot.
type State struct {
	Loading    bool
	DrawerOpen bool

	// TicketID is the identifier the view was asked to show. Ticket is the
	// last committed payload and may lag TicketID while a fetch is pending.
	TicketID int64
	Ticket   *helpdesk.Ticket
	Contact  helpdesk.Contact

	Messages     []helpdesk.Message
	MoreMessages bool

	// Live reports whether a realtime subscription is connected.
	Live bool

	TaxID       string
	Invoice     *billing.Invoice
	InvoiceBusy bool
}

// initialState is the state of a freshly mounted view.
func initialState() State {
	return State{Loading: true}
}

// clone returns a copy that shares nothing mutable with s.
func (s State) clone() State {
	out := s
	if s.Ticket != nil {
		t := *s.Ticket
		t.Tags = append([]helpdesk.Tag(nil), s.Ticket.Tags...)
		out.Ticket = &t
	}
	out.Contact.ExtraInfo = append([]helpdesk.ExtraInfo(nil), s.Contact.ExtraInfo...)
	out.Messages = append([]helpdesk.Message(nil), s.Messages...)
	if s.Invoice != nil {
		inv := *s.Invoice
		out.Invoice = &inv
	}
	return out
}

// Layout is the render model derived from State.
type Layout struct {
	// HeaderLoading shows a loading placeholder instead of ticket info.
	HeaderLoading bool
	// ShowTicketInfo shows the assignee block; only for assigned tickets.
	ShowTicketInfo bool
	// ShowComposer is false only for closed tickets.
	ShowComposer bool
	DrawerOpen   bool
	// MainShifted is set while the drawer takes space beside the main panel.
	MainShifted bool
	ShowTags    bool
	Live        bool

	Ticket       *helpdesk.Ticket
	Contact      helpdesk.Contact
	Messages     []helpdesk.Message
	MoreMessages bool

	TaxID       string
	InvoiceBusy bool
	Invoice     *billing.Invoice
}

// Render maps state to layout. It has no side effects.
func Render(s State) Layout {
	l := Layout{
		HeaderLoading:  s.Loading,
		DrawerOpen:     s.DrawerOpen,
		MainShifted:    s.DrawerOpen,
		Live:           s.Live,
		Ticket:         s.Ticket,
		Contact:        s.Contact,
		Messages:       s.Messages,
		MoreMessages:   s.MoreMessages,
		TaxID:          s.TaxID,
		InvoiceBusy:    s.InvoiceBusy,
		Invoice:        s.Invoice,
		ShowTicketInfo: s.Ticket.Assigned(),
		ShowComposer:   !s.Ticket.Closed(),
	}
	if s.Ticket != nil {
		l.ShowTags = len(s.Ticket.Tags) > 0
	}
	return l
}
