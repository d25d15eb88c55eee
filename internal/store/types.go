package store

// Setting keys.
const (
	KeyCompanyID = "company_id"
	KeyToken     = "auth_token"
	KeyUser      = "auth_user"
)

// Outbox statuses.
const (
	OutboxQueued  = "queued"
	OutboxSending = "sending"
	OutboxSent    = "sent"
	OutboxFailed  = "failed"
)

// InvoiceLookup is a successful duplicate-invoice lookup kept for history.
type InvoiceLookup struct {
	ID           int64
	TicketID     int64
	TaxID        string
	CustomerCode int64
	ChargeCode   int64
	Message      string
	PDFURL       string
	Barcode      string
	CreatedAt    int64
}

// OutboxEntry represents a pending composer message.
type OutboxEntry struct {
	ID           int64
	ClientMsgID  string
	TicketID     int64
	Body         string
	Status       string
	ErrorMessage string
	Attempts     int
}
