package realtime

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matheus3301/wppdesk/internal/helpdesk"
)

// Actions carried by ticket and contact events.
const (
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Topic distinguishes the two tenant-scoped channels.
type Topic int

const (
	TopicTicket Topic = iota
	TopicContact
)

func (t Topic) String() string {
	switch t {
	case TopicTicket:
		return "ticket"
	case TopicContact:
		return "contact"
	}
	return "unknown"
}

// Event is a decoded realtime message.
type Event struct {
	Topic  Topic
	Action string

	// Ticket is set for ticket updates.
	Ticket *helpdesk.Ticket
	// TicketID is set for ticket deletes.
	TicketID int64

	// ContactID and ContactPatch are set for contact updates. The patch
	// holds only the fields the backend sent.
	ContactID    int64
	ContactPatch json.RawMessage
}

// frame is the JSON envelope exchanged over the socket.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// TicketChannel returns the event name for ticket mutations of a tenant.
func TicketChannel(tenant int64) string {
	return "company-" + strconv.FormatInt(tenant, 10) + "-ticket"
}

// ContactChannel returns the event name for contact mutations of a tenant.
func ContactChannel(tenant int64) string {
	return "company-" + strconv.FormatInt(tenant, 10) + "-contact"
}

// decode turns a frame into an Event. ok is false for frames that belong to
// other tenants or topics.
func decode(tenant int64, f frame) (evt Event, ok bool, err error) {
	switch f.Event {
	case TicketChannel(tenant):
		var data struct {
			Action   string           `json:"action"`
			Ticket   *helpdesk.Ticket `json:"ticket"`
			TicketID int64            `json:"ticketId"`
		}
		if err := json.Unmarshal(f.Data, &data); err != nil {
			return Event{}, false, fmt.Errorf("decode %s: %w", f.Event, err)
		}
		evt = Event{Topic: TopicTicket, Action: data.Action, Ticket: data.Ticket, TicketID: data.TicketID}
		if evt.TicketID == 0 && data.Ticket != nil {
			evt.TicketID = data.Ticket.ID
		}
		return evt, true, nil

	case ContactChannel(tenant):
		var data struct {
			Action  string          `json:"action"`
			Contact json.RawMessage `json:"contact"`
		}
		if err := json.Unmarshal(f.Data, &data); err != nil {
			return Event{}, false, fmt.Errorf("decode %s: %w", f.Event, err)
		}
		evt = Event{Topic: TopicContact, Action: data.Action, ContactPatch: data.Contact}
		if len(data.Contact) > 0 && string(data.Contact) != "null" {
			var id struct {
				ID int64 `json:"id"`
			}
			if err := json.Unmarshal(data.Contact, &id); err != nil {
				return Event{}, false, fmt.Errorf("decode %s contact: %w", f.Event, err)
			}
			evt.ContactID = id.ID
		}
		return evt, true, nil
	}
	return Event{}, false, nil
}
