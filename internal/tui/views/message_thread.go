package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wppdesk/internal/helpdesk"
	"github.com/matheus3301/wppdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

const composerHeight = 3

// MessageThread displays a ticket's messages and a composer.
type MessageThread struct {
	*tview.Flex
	theme           *ui.Theme
	messages        *tview.TextView
	composer        *tview.InputField
	composerVisible bool
	onSend          func(text string)
	now             func() time.Time
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Reply (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, composerHeight, 0, false)

	mt := &MessageThread{
		Flex:            flex,
		theme:           theme,
		messages:        messages,
		composer:        composer,
		composerVisible: true,
		now:             time.Now,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter || mt.onSend == nil {
			return
		}
		text := strings.TrimSpace(composer.GetText())
		if text != "" {
			mt.onSend(text)
			composer.SetText("")
		}
	})

	return mt
}

// SetOnSend sets the callback run when the composer submits text.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// SetComposerVisible shows or collapses the composer row.
func (mt *MessageThread) SetComposerVisible(visible bool) {
	if visible == mt.composerVisible {
		return
	}
	mt.composerVisible = visible
	if visible {
		mt.ResizeItem(mt.composer, composerHeight, 0)
	} else {
		mt.ResizeItem(mt.composer, 0, 0)
	}
}

// ComposerVisible reports whether the composer row is shown.
func (mt *MessageThread) ComposerVisible() bool { return mt.composerVisible }

// Update refreshes the message view. msgs are oldest first.
func (mt *MessageThread) Update(msgs []helpdesk.Message, contactName string, more bool) {
	mt.messages.Clear()
	_, _ = fmt.Fprint(mt.messages, threadText(msgs, contactName, more, mt.now()))
	mt.messages.ScrollToEnd()
}

func threadText(msgs []helpdesk.Message, contactName string, more bool, now time.Time) string {
	if len(msgs) == 0 {
		return "[::d]No messages yet[-:-:-]"
	}
	var sb strings.Builder
	if more {
		sb.WriteString("[::d]── o: load older ──[-:-:-]\n\n")
	}
	for _, m := range msgs {
		sender := contactName
		if m.Contact != nil && m.Contact.Name != "" {
			sender = m.Contact.Name
		}
		if m.FromMe {
			sender = "You"
		}
		body := m.Body
		if m.MediaURL != "" {
			body = strings.TrimSpace(fmt.Sprintf("[%s] %s", m.MediaType, m.Body))
		}
		fmt.Fprintf(&sb, "[::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n\n",
			clean(sender), formatTimestamp(m.CreatedAt, now), clean(body))
	}
	return sb.String()
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}
