package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/wppdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

// PageHelp is the page name of the help view.
const PageHelp = "help"

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	_, _ = fmt.Fprint(hv, helpText(theme))
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return PageHelp }

// Start implements Component.
func (hv *HelpView) Start() {}

// Stop implements Component.
func (hv *HelpView) Stop() {}

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

type helpSection struct {
	title string
	rows  [][2]string
}

var helpSections = []helpSection{
	{"Global Keys", [][2]string{
		{":", "Command mode"},
		{"?", "Help"},
		{"Esc", "Cancel / Go back"},
		{"q", "Quit"},
		{"Ctrl-C", "Quit immediately"},
	}},
	{"Ticket List", [][2]string{
		{"Enter", "Open ticket"},
		{"/", "Filter"},
		{"0", "Clear filter"},
		{"r", "Reload"},
		{"m", "Load more tickets"},
	}},
	{"Ticket", [][2]string{
		{"i", "Focus reply composer"},
		{"b", "Focus invoice lookup"},
		{"d", "Toggle contact drawer"},
		{"o", "Load older messages"},
		{"Esc", "Close drawer, then go back"},
	}},
	{"Commands (: mode)", [][2]string{
		{":ticket <id>", "Open a ticket"},
		{":tickets", "Back to the ticket list"},
		{":search <text>", "Search tickets on the server"},
		{":retry", "Retry failed replies"},
		{":help", "Show this help"},
		{":quit", "Quit application"},
	}},
}

func helpText(theme *ui.Theme) string {
	kc := ui.Tag(theme.MenuKeyColor)
	var sb strings.Builder
	for _, s := range helpSections {
		fmt.Fprintf(&sb, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, r := range s.rows {
			fmt.Fprintf(&sb, "  [%s]%-14s[-:-:-] %s\n", kc, escape(r[0]), r[1])
		}
	}
	return sb.String()
}
