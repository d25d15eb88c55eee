package bus

import "time"

// Event kinds published by the ticket view and the outbox sender.
const (
	KindViewChanged    = "view.changed"
	KindViewNotify     = "view.notify"
	KindViewNavigate   = "view.navigate"
	KindMessageQueued  = "message.queued"
	KindMessageSendAck = "message.send_ack"
	KindMessageFailed  = "message.send_failed"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Level is the severity of a user-facing notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Notification is the payload of view.notify events.
type Notification struct {
	Level Level
	Text  string
}

// Navigation is the payload of view.navigate events.
type Navigation struct {
	Route  string
	Reason string
}
