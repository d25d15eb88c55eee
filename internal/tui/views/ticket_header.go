package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/wppdesk/internal/ticketview"
	"github.com/matheus3301/wppdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

// TicketHeader shows the contact, assignee and tags of the current ticket.
type TicketHeader struct {
	*tview.TextView
	theme *ui.Theme
}

// NewTicketHeader creates a new ticket header.
func NewTicketHeader(theme *ui.Theme) *TicketHeader {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitleColor(theme.TitleColor)
	tv.SetTitle(" Ticket ")
	return &TicketHeader{TextView: tv, theme: theme}
}

// Update renders l into the header.
func (th *TicketHeader) Update(l ticketview.Layout) {
	th.Clear()
	if l.Ticket != nil && !l.HeaderLoading {
		th.SetTitle(fmt.Sprintf(" Ticket #%d ", l.Ticket.ID))
	} else {
		th.SetTitle(" Ticket ")
	}
	_, _ = fmt.Fprint(th, headerText(l, th.theme))
}

func headerText(l ticketview.Layout, theme *ui.Theme) string {
	if l.HeaderLoading || l.Ticket == nil {
		return "[::d]Loading ticket…[-:-:-]"
	}
	t := l.Ticket
	ct := ui.Tag(theme.CounterColor)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[::b]%s[-:-:-]  [%s]%s[-]  [::d]%s[-:-:-]",
		clean(l.Contact.Name), ct, clean(l.Contact.Number), clean(strings.ToUpper(t.Status)))
	if l.Live {
		fmt.Fprintf(&sb, "  [%s]●[-]", ui.Tag(theme.LiveColor))
	} else {
		fmt.Fprintf(&sb, "  [%s]○[-]", ui.Tag(theme.OfflineColor))
	}
	if l.ShowTicketInfo {
		fmt.Fprintf(&sb, "\nAssigned to [%s]%s[-]", ct, clean(t.User.Name))
	}
	if l.ShowTags {
		sb.WriteString("\n")
		for i, tag := range t.Tags {
			if i > 0 {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "[%s]%s[-]", tagColor(tag.Color), escape("["+sanitizeForTerminal(tag.Name)+"]"))
		}
	}
	return sb.String()
}
