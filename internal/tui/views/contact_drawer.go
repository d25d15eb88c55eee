package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/wppdesk/internal/helpdesk"
	"github.com/matheus3301/wppdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

// ContactDrawer is the side panel with contact details.
type ContactDrawer struct {
	*tview.TextView
	theme *ui.Theme
}

// NewContactDrawer creates a new contact drawer.
func NewContactDrawer(theme *ui.Theme) *ContactDrawer {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.DrawerBorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Contact ")
	tv.SetTitleColor(theme.TitleColor)
	return &ContactDrawer{TextView: tv, theme: theme}
}

// Update renders c.
func (cd *ContactDrawer) Update(c helpdesk.Contact) {
	cd.Clear()
	_, _ = fmt.Fprint(cd, contactText(c, cd.theme))
	cd.ScrollToBeginning()
}

func contactText(c helpdesk.Contact, theme *ui.Theme) string {
	fg := ui.Tag(theme.FgColor)
	ct := ui.Tag(theme.CounterColor)
	row := func(sb *strings.Builder, label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(sb, "[%s::b]%s:[-:-:-] [%s]%s[-]\n", fg, escape(label), ct, clean(value))
	}

	var sb strings.Builder
	row(&sb, "Name", c.Name)
	row(&sb, "Number", c.Number)
	row(&sb, "Email", c.Email)
	if c.IsGroup {
		row(&sb, "Type", "group")
	}
	if len(c.ExtraInfo) > 0 {
		sb.WriteString("\n[::b]Extra info[-:-:-]\n")
		for _, e := range c.ExtraInfo {
			row(&sb, e.Name, e.Value)
		}
	}
	if sb.Len() == 0 {
		return "[::d]No contact details[-:-:-]"
	}
	return sb.String()
}
