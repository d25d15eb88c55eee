package helpdesk

import (
	"encoding/json"
	"time"
)

// Ticket statuses the view treats specially. The backend may send others.
const (
	StatusOpen     = "open"
	StatusPending  = "pending"
	StatusClosed   = "closed"
	StatusCampaign = "campaign"
)

// Queue is an access-scoping bucket a ticket belongs to.
type Queue struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// User is the logged-in agent. Only Profile and Queues matter for access.
type User struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email,omitempty"`
	Profile   string  `json:"profile"`
	CompanyID int64   `json:"companyId,omitempty"`
	Queues    []Queue `json:"queues"`
}

// IsAdmin reports whether the user bypasses queue restrictions.
func (u *User) IsAdmin() bool {
	return u != nil && u.Profile == "admin"
}

// HasQueue reports whether the user is permitted the given queue.
func (u *User) HasQueue(id int64) bool {
	if u == nil {
		return false
	}
	for _, q := range u.Queues {
		if q.ID == id {
			return true
		}
	}
	return false
}

// ExtraInfo is a free-form contact field.
type ExtraInfo struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Contact is the customer behind a ticket.
type Contact struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Number        string      `json:"number"`
	Email         string      `json:"email,omitempty"`
	ProfilePicURL string      `json:"profilePicUrl,omitempty"`
	IsGroup       bool        `json:"isGroup"`
	ExtraInfo     []ExtraInfo `json:"extraInfo,omitempty"`
}

// MergeJSON overlays the fields present in raw onto a copy of c.
// Fields absent from raw keep their current value.
func (c Contact) MergeJSON(raw json.RawMessage) (Contact, error) {
	merged := c
	merged.ExtraInfo = append([]ExtraInfo(nil), c.ExtraInfo...)
	if err := json.Unmarshal(raw, &merged); err != nil {
		return c, err
	}
	return merged, nil
}

// Tag is a label attached to a ticket.
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Ticket is a unit of customer conversation routed through a queue.
type Ticket struct {
	ID          int64     `json:"id"`
	Status      string    `json:"status"`
	QueueID     int64     `json:"queueId,omitempty"`
	UserID      int64     `json:"userId,omitempty"`
	User        *User     `json:"user,omitempty"`
	IsGroup     bool      `json:"isGroup"`
	ContactID   int64     `json:"contactId"`
	Contact     Contact   `json:"contact"`
	Tags        []Tag     `json:"tags,omitempty"`
	LastMessage string    `json:"lastMessage,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Assigned reports whether the ticket has an assigned agent.
func (t *Ticket) Assigned() bool {
	return t != nil && t.User != nil
}

// Closed reports whether the ticket no longer accepts new messages.
func (t *Ticket) Closed() bool {
	return t != nil && t.Status == StatusClosed
}

// Message is one entry in a ticket's thread.
type Message struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	FromMe    bool      `json:"fromMe"`
	Read      bool      `json:"read"`
	MediaURL  string    `json:"mediaUrl,omitempty"`
	MediaType string    `json:"mediaType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Contact   *Contact  `json:"contact,omitempty"`
}

// Session is the result of an auth refresh.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
