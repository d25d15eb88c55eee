package ui

import (
	"strings"
	"testing"
)

func TestCrumbsTrail(t *testing.T) {
	c := NewCrumbs(DefaultTheme())
	label := func(page string) string {
		if page == "ticket" {
			return "ticket #42"
		}
		return page
	}
	out := c.trail([]string{"tickets", "ticket"}, label)
	if !strings.Contains(out, " tickets ") || !strings.Contains(out, "ticket #42") {
		t.Errorf("trail = %q", out)
	}
	if !strings.Contains(out, " › ") {
		t.Errorf("trail = %q, want separator", out)
	}
	if i := strings.Index(out, ":b]"); i < strings.Index(out, "tickets") {
		t.Errorf("active crumb is not the last one: %q", out)
	}
	if c.trail(nil, nil) != "" {
		t.Error("empty stack should render nothing")
	}
}

func TestCrumbsEscapesLabels(t *testing.T) {
	c := NewCrumbs(DefaultTheme())
	out := c.trail([]string{"[red]x"}, nil)
	if strings.Contains(out, "[red]x") {
		t.Errorf("label not escaped: %q", out)
	}
}

func TestBannerTagline(t *testing.T) {
	if out := banner(DefaultTheme(), ""); !strings.Contains(out, "helpdesk") {
		t.Errorf("default tagline missing: %q", out)
	}
	if out := banner(DefaultTheme(), "tenant 7"); !strings.Contains(out, "tenant 7") {
		t.Errorf("tagline missing: %q", out)
	}
}

func TestAgentInfoText(t *testing.T) {
	ai := NewAgentInfo(DefaultTheme())
	out := ai.text(&AgentData{Profile: "work", Agent: "Ana", Role: "admin", Tenant: 3, Live: true, Cached: true})
	for _, want := range []string{"work", "Ana (cached)", "admin", "3", "live"} {
		if !strings.Contains(out, want) {
			t.Errorf("text missing %q: %q", want, out)
		}
	}
	if out := ai.text(&AgentData{}); !strings.Contains(out, "offline") {
		t.Errorf("text = %q, want offline", out)
	}
}
