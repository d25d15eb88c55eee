package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/matheus3301/wppdesk/internal/bus"
	"github.com/rivo/tview"
)

// FlashLevel represents the severity of a flash message.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashSuccess
	FlashErr
)

// LevelFromBus maps a notification level to a flash level.
func LevelFromBus(l bus.Level) FlashLevel {
	switch l {
	case bus.LevelSuccess:
		return FlashSuccess
	case bus.LevelError:
		return FlashErr
	}
	return FlashInfo
}

// durations per level; errors stay longer.
var flashDurations = map[FlashLevel]time.Duration{
	FlashInfo:    5 * time.Second,
	FlashSuccess: 5 * time.Second,
	FlashErr:     10 * time.Second,
}

// FlashMessage is a flash notification with a level and expiry.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// FlashModel holds the current transient notification.
type FlashModel struct {
	mu      sync.RWMutex
	current FlashMessage
	now     func() time.Time
}

// NewFlashModel creates a new flash model.
func NewFlashModel() *FlashModel {
	return &FlashModel{now: time.Now}
}

// Info sets an info-level flash message.
func (f *FlashModel) Info(msg string) { f.Set(msg, FlashInfo) }

// Success sets a success-level flash message.
func (f *FlashModel) Success(msg string) { f.Set(msg, FlashSuccess) }

// Err sets an error-level flash message.
func (f *FlashModel) Err(err error) { f.Set(err.Error(), FlashErr) }

// Notify shows a notification published on the bus.
func (f *FlashModel) Notify(n bus.Notification) { f.Set(n.Text, LevelFromBus(n.Level)) }

// Set replaces the current message.
func (f *FlashModel) Set(msg string, level FlashLevel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = FlashMessage{
		Text:    msg,
		Level:   level,
		Expires: f.now().Add(flashDurations[level]),
	}
}

// Current returns the current flash message, or nil if expired.
func (f *FlashModel) Current() *FlashMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current.Text == "" || f.now().After(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

// FlashBar is the UI component that displays flash notifications.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

// NewFlashBar creates a new flash notification bar.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &FlashBar{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders a flash message on the bar.
func (fb *FlashBar) Update(msg *FlashMessage) {
	fb.Clear()
	if msg == nil {
		return
	}

	var color string
	switch msg.Level {
	case FlashInfo:
		color = colorName(fb.theme.FlashInfoColor)
	case FlashSuccess:
		color = colorName(fb.theme.FlashSuccessColor)
	case FlashErr:
		color = colorName(fb.theme.FlashErrColor)
	}
	_, _ = fmt.Fprintf(fb, " [%s]%s[-]", color, tview.Escape(msg.Text))
}
