package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/matheus3301/wppdesk/internal/bus"
)

func TestFlashModelExpiry(t *testing.T) {
	now := time.Unix(1700000000, 0)
	f := NewFlashModel()
	f.now = func() time.Time { return now }

	if f.Current() != nil {
		t.Fatal("empty model returned a message")
	}

	f.Info("saved")
	if m := f.Current(); m == nil || m.Text != "saved" || m.Level != FlashInfo {
		t.Fatalf("Current() = %+v", m)
	}

	now = now.Add(6 * time.Second)
	if m := f.Current(); m != nil {
		t.Errorf("info message still shown after 6s: %+v", m)
	}

	f.Err(errors.New("boom"))
	now = now.Add(6 * time.Second)
	if m := f.Current(); m == nil || m.Level != FlashErr {
		t.Errorf("error message expired too early: %+v", m)
	}
}

func TestFlashNotifyLevels(t *testing.T) {
	tests := []struct {
		in   bus.Level
		want FlashLevel
	}{
		{bus.LevelInfo, FlashInfo},
		{bus.LevelSuccess, FlashSuccess},
		{bus.LevelError, FlashErr},
	}
	for _, tt := range tests {
		f := NewFlashModel()
		f.Notify(bus.Notification{Level: tt.in, Text: "x"})
		if m := f.Current(); m == nil || m.Level != tt.want {
			t.Errorf("Notify(%v) level = %+v, want %v", tt.in, m, tt.want)
		}
	}
}
