package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// Logo is the banner in the header's right corner. The tagline under it
// names the helpdesk the agent is connected to.
type Logo struct {
	*tview.TextView
}

func NewLogo(theme *Theme, tagline string) *Logo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignRight)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(1, 0, 0, 1)
	tv.SetText(banner(theme, tagline))
	return &Logo{TextView: tv}
}

func banner(theme *Theme, tagline string) string {
	if tagline == "" {
		tagline = "helpdesk"
	}
	title := colorName(theme.TitleColor)
	return fmt.Sprintf("[%[1]s::b]╔╦╗╔═╗╔═╗╦╔═[-:-:-]\n"+
		"[%[1]s::b] ║║║╣ ╚═╗╠╩╗[-:-:-]\n"+
		"[%[1]s::b]═╩╝╚═╝╚═╝╩ ╩[-:-:-]\n"+
		"[%[2]s]%[3]s[-:-:-]",
		title, colorName(theme.FgColor), tview.Escape(tagline))
}
