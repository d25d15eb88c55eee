package ui

import "testing"

func TestPromptRecall(t *testing.T) {
	p := NewPrompt(DefaultTheme())
	p.Activate(PromptCommand)
	p.remember("ticket 1")
	p.remember("ticket 2")
	p.remember("ticket 2")

	if len(p.history) != 2 {
		t.Fatalf("history = %v, want duplicates collapsed", p.history)
	}

	p.Activate(PromptCommand)
	if got := p.Recall(-1); got != "ticket 2" {
		t.Errorf("first Up = %q, want ticket 2", got)
	}
	if got := p.Recall(-1); got != "ticket 1" {
		t.Errorf("second Up = %q, want ticket 1", got)
	}
	if got := p.Recall(-1); got != "ticket 1" {
		t.Errorf("Up past oldest = %q, want ticket 1", got)
	}
	if got := p.Recall(1); got != "ticket 2" {
		t.Errorf("Down = %q, want ticket 2", got)
	}
	if got := p.Recall(1); got != "" {
		t.Errorf("Down past newest = %q, want empty", got)
	}
}

func TestPromptHistoryBounded(t *testing.T) {
	p := NewPrompt(DefaultTheme())
	for i := 0; i < promptHistorySize+10; i++ {
		p.remember(string(rune('a'+i%26)) + string(rune('0'+i/26)))
	}
	if len(p.history) != promptHistorySize {
		t.Errorf("history size = %d, want %d", len(p.history), promptHistorySize)
	}
}
