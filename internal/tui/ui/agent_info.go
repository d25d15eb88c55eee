package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// AgentData holds what the header shows about the running session.
type AgentData struct {
	Profile string
	Agent   string
	Role    string
	Tenant  int64
	Backend string
	Live    bool
	Cached  bool
}

// AgentInfo displays session metadata in the header.
type AgentInfo struct {
	*tview.TextView
	theme *Theme
}

// NewAgentInfo creates a new agent info panel.
func NewAgentInfo(theme *Theme) *AgentInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &AgentInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the agent info.
func (ai *AgentInfo) Update(data *AgentData) {
	ai.Clear()
	if data == nil {
		return
	}
	_, _ = fmt.Fprint(ai, ai.text(data))
}

func (ai *AgentInfo) text(data *AgentData) string {
	fg := colorName(ai.theme.FgColor)
	ct := colorName(ai.theme.CounterColor)

	live := fmt.Sprintf("[%s]● live[-]", colorName(ai.theme.LiveColor))
	if !data.Live {
		live = fmt.Sprintf("[%s]○ offline[-]", colorName(ai.theme.OfflineColor))
	}
	agent := tview.Escape(data.Agent)
	if data.Cached {
		agent += " (cached)"
	}

	return fmt.Sprintf(
		"[%s::b]Profile:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]Agent:[-:-:-]   [%s]%s[-]\n"+
			"[%s::b]Role:[-:-:-]    [%s]%s[-]\n"+
			"[%s::b]Tenant:[-:-:-]  [%s]%d[-]\n"+
			"[%s::b]Backend:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]Socket:[-:-:-]  %s",
		fg, ct, tview.Escape(data.Profile),
		fg, ct, agent,
		fg, ct, tview.Escape(data.Role),
		fg, ct, data.Tenant,
		fg, ct, tview.Escape(data.Backend),
		fg, live,
	)
}
