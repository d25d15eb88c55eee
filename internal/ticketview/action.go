package ticketview

import (
	"github.com/matheus3301/wppdesk/internal/billing"
	"github.com/matheus3301/wppdesk/internal/helpdesk"
	"github.com/matheus3301/wppdesk/internal/realtime"
)

// action is an input to the controller loop.
type action interface{}

type (
	setTicketAction struct{ id int64 }

	resetAction struct{}

	debounceFired struct{ gen uint64 }

	ticketFetched struct {
		ticketID int64
		reqID    string
		ticket   *helpdesk.Ticket
		err      error
	}

	messagesFetched struct {
		ticketID int64
		reqID    string
		page     int
		result   *helpdesk.MessagePage
		err      error
	}

	olderMessagesAction struct{}

	messageAcked struct{ ticketID int64 }

	realtimeDialed struct {
		gen      uint64
		ticketID int64
		sub      realtime.Subscription
		err      error
	}

	realtimeEvent struct {
		gen uint64
		evt realtime.Event
	}

	realtimeClosed struct{ gen uint64 }

	redialFired struct {
		gen      uint64
		ticketID int64
	}

	drawerAction struct{ open bool }

	setTaxIDAction struct{ taxID string }

	submitInvoiceAction struct{}

	invoiceDone struct {
		seq        uint64
		ticketID   int64
		chargeCode int64
		result     *billing.Result
		err        error
	}

	sendAction struct{ body string }
)
