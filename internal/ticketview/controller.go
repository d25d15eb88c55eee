// Package ticketview drives the single-ticket screen: it fetches the ticket,
// guards access, keeps it current through the realtime socket, runs invoice
// lookups and tracks the contact drawer.
//
// All state lives in one goroutine (Controller.Run). Callers and background
// work post actions to it; nothing else mutates State.
package ticketview

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/wppdesk/internal/billing"
	"github.com/matheus3301/wppdesk/internal/bus"
	"github.com/matheus3301/wppdesk/internal/helpdesk"
	"github.com/matheus3301/wppdesk/internal/outbox"
	"github.com/matheus3301/wppdesk/internal/realtime"
	"github.com/matheus3301/wppdesk/internal/store"
	"go.uber.org/zap"
)

// Notification texts.
const (
	TextAccessDenied     = "Access not permitted"
	TextTicketDeleted    = "Ticket deleted"
	TextCustomerNotFound = "Customer not found"
	TextTaxIDRequired    = "Enter a CPF or CNPJ"
	TextTicketClosed     = "Ticket is closed"
)

const (
	defaultDebounce = 500 * time.Millisecond
	actionBuf       = 64

	// Redial backoff after the realtime socket drops or a dial fails.
	redialMin = time.Second
	redialMax = 30 * time.Second
)

// Fetcher loads tickets and their message threads.
type Fetcher interface {
	Ticket(ctx context.Context, id int64) (*helpdesk.Ticket, error)
	Messages(ctx context.Context, ticketID int64, page int) (*helpdesk.MessagePage, error)
}

// Enqueuer queues composer text for delivery.
type Enqueuer interface {
	Enqueue(ticketID int64, body string) (string, error)
}

// InvoiceRecorder keeps successful invoice lookups.
type InvoiceRecorder interface {
	RecordInvoice(l *store.InvoiceLookup) error
}

// AfterFunc runs f once after d and returns a function that cancels it.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Deps are the collaborators of a Controller. Outbox and History are optional.
type Deps struct {
	Fetcher Fetcher
	Billing billing.Client
	Dialer  realtime.Dialer
	Outbox  Enqueuer
	History InvoiceRecorder
	Bus     *bus.Bus
	Logger  *zap.Logger
}

// Options carry the session and tunables.
type Options struct {
	// User is the logged-in agent the access guard checks against.
	User *helpdesk.User
	// Tenant scopes realtime channels.
	Tenant     int64
	Debounce   time.Duration
	ChargeCode int64
	// AfterFunc replaces time.AfterFunc for the debounce and redial timers.
	AfterFunc AfterFunc
}

// Controller owns the ticket view state.
type Controller struct {
	deps   Deps
	opts   Options
	logger *zap.Logger

	actions chan action
	stopped chan struct{}
	runOnce sync.Once

	mu   sync.RWMutex
	snap State

	// Fields below are touched only by the Run goroutine.
	ctx    context.Context
	state  State
	drawer Drawer

	debounceGen  uint64
	debounceStop func() bool

	fetchReq    string
	fetchCancel context.CancelFunc
	msgReq      string
	msgPage     int

	sub       realtime.Subscription
	subGen    uint64
	subTicket int64

	redialStop  func() bool
	redialDelay time.Duration

	invoiceSeq uint64
}

// New creates a controller. Run must be called for it to do anything.
func New(deps Deps, opts Options) *Controller {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Bus == nil {
		deps.Bus = bus.New()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = timeAfterFunc
	}
	c := &Controller{
		deps:    deps,
		opts:    opts,
		logger:  deps.Logger.Named("ticketview"),
		actions: make(chan action, actionBuf),
		stopped: make(chan struct{}),
		state:   initialState(),
		drawer:  NewDrawer(),
	}
	c.snap = c.state.clone()
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.clone()
}

// Layout renders the current state.
func (c *Controller) Layout() Layout {
	return Render(c.Snapshot())
}

// SetTicketID asks the view to show a ticket. The fetch is debounced so that
// rapid changes result in a single request for the last id.
func (c *Controller) SetTicketID(id int64) { c.post(setTicketAction{id: id}) }

// Reset unloads the ticket, as when the view is closed by the user.
func (c *Controller) Reset() { c.post(resetAction{}) }

// OpenDrawer opens the contact drawer.
func (c *Controller) OpenDrawer() { c.post(drawerAction{open: true}) }

// CloseDrawer closes the contact drawer.
func (c *Controller) CloseDrawer() { c.post(drawerAction{open: false}) }

// SetTaxID updates the invoice form input.
func (c *Controller) SetTaxID(taxID string) { c.post(setTaxIDAction{taxID: taxID}) }

// SubmitInvoice starts a duplicate-invoice lookup for the current tax id.
func (c *Controller) SubmitInvoice() { c.post(submitInvoiceAction{}) }

// Send queues composer text for the current ticket.
func (c *Controller) Send(body string) { c.post(sendAction{body: body}) }

// LoadOlderMessages fetches the next page of the thread.
func (c *Controller) LoadOlderMessages() { c.post(olderMessagesAction{}) }

// post hands an action to the loop. It reports false once Run has returned.
func (c *Controller) post(a action) bool {
	select {
	case c.actions <- a:
		return true
	case <-c.stopped:
		return false
	}
}

// Run processes actions until ctx is done. On return the realtime
// subscription is closed and pending work is abandoned.
func (c *Controller) Run(ctx context.Context) error {
	started := false
	c.runOnce.Do(func() { started = true })
	if !started {
		return errors.New("ticketview: controller already running")
	}

	c.ctx = ctx
	acks, unsub := c.deps.Bus.Subscribe(bus.KindMessageSendAck, 32)
	defer func() {
		unsub()
		c.stopDebounce()
		c.cancelFetch()
		c.unsubscribe()
		close(c.stopped)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case a := <-c.actions:
			c.apply(a)
		case evt, ok := <-acks:
			if !ok {
				acks = nil
				continue
			}
			if ack, ok := evt.Payload.(outbox.Ack); ok {
				c.apply(messageAcked{ticketID: ack.TicketID})
			}
		}
		c.publish()
	}
}

func (c *Controller) publish() {
	c.mu.Lock()
	c.snap = c.state.clone()
	c.mu.Unlock()
	c.deps.Bus.Publish(bus.Event{Kind: bus.KindViewChanged})
}

func (c *Controller) apply(a action) {
	switch a := a.(type) {
	case setTicketAction:
		c.onSetTicket(a.id)
	case resetAction:
		c.reset()
	case debounceFired:
		if a.gen == c.debounceGen {
			c.debounceStop = nil
			c.fetchTicket()
		}
	case ticketFetched:
		c.onTicketFetched(a)
	case messagesFetched:
		c.onMessagesFetched(a)
	case olderMessagesAction:
		if c.state.Ticket != nil && c.state.MoreMessages && c.msgReq == "" {
			c.fetchMessages(c.state.Ticket.ID, c.msgPage+1)
		}
	case messageAcked:
		if c.state.Ticket != nil && a.ticketID == c.state.Ticket.ID {
			c.fetchMessages(a.ticketID, 1)
		}
	case realtimeDialed:
		c.onDialed(a)
	case realtimeEvent:
		if a.gen == c.subGen {
			c.onRealtime(a.evt)
		}
	case realtimeClosed:
		if a.gen == c.subGen && c.sub != nil {
			c.logger.Info("realtime connection ended", zap.Int64("ticket_id", c.subTicket))
			c.sub = nil
			c.state.Live = false
			c.scheduleRedial()
		}
	case redialFired:
		if a.gen == c.subGen && a.ticketID == c.subTicket && c.sub == nil {
			c.redialStop = nil
			c.dial(a.ticketID, a.gen)
		}
	case drawerAction:
		c.onDrawer(a.open)
	case setTaxIDAction:
		c.state.TaxID = a.taxID
	case submitInvoiceAction:
		c.onSubmitInvoice()
	case invoiceDone:
		c.onInvoiceDone(a)
	case sendAction:
		c.onSend(a.body)
	}
}

// onSetTicket marks the view loading and (re)arms the debounce timer.
// Moving to another ticket drops the invoice form; it belonged to the
// previous customer.
func (c *Controller) onSetTicket(id int64) {
	if id != c.state.TicketID {
		c.invoiceSeq++
		c.state.TaxID = ""
		c.state.Invoice = nil
		c.state.InvoiceBusy = false
	}
	c.state.TicketID = id
	c.state.Loading = true
	c.cancelFetch()
	c.stopDebounce()

	c.debounceGen++
	gen := c.debounceGen
	c.debounceStop = c.opts.AfterFunc(c.opts.Debounce, func() {
		c.post(debounceFired{gen: gen})
	})
}

func (c *Controller) stopDebounce() {
	if c.debounceStop != nil {
		c.debounceStop()
		c.debounceStop = nil
	}
}

func (c *Controller) cancelFetch() {
	if c.fetchCancel != nil {
		c.fetchCancel()
		c.fetchCancel = nil
	}
	c.fetchReq = ""
}

// fetchTicket issues the request for the current id. The response carries
// the id and request id it was issued for so stale answers can be dropped.
func (c *Controller) fetchTicket() {
	c.cancelFetch()
	id := c.state.TicketID
	reqID := uuid.New().String()
	ctx, cancel := context.WithCancel(helpdesk.WithRequestID(c.ctx, reqID))
	c.fetchReq = reqID
	c.fetchCancel = cancel

	c.logger.Debug("fetching ticket", zap.Int64("ticket_id", id), zap.String("request_id", reqID))
	go func() {
		t, err := c.deps.Fetcher.Ticket(ctx, id)
		c.post(ticketFetched{ticketID: id, reqID: reqID, ticket: t, err: err})
	}()
}

func (c *Controller) onTicketFetched(a ticketFetched) {
	if a.reqID != c.fetchReq || a.ticketID != c.state.TicketID {
		c.logger.Debug("discarding stale ticket response",
			zap.Int64("ticket_id", a.ticketID), zap.String("request_id", a.reqID))
		return
	}
	c.fetchCancel()
	c.fetchCancel = nil
	c.fetchReq = ""

	if a.err == nil && a.ticket == nil {
		a.err = errors.New("empty ticket response")
	}
	if a.err != nil {
		c.logger.Warn("fetch ticket failed", zap.Int64("ticket_id", a.ticketID), zap.Error(a.err))
		c.state.Loading = false
		c.deps.Bus.Notify(bus.LevelError, a.err.Error())
		return
	}

	if !helpdesk.CanAccess(c.opts.User, a.ticket) {
		c.logger.Info("ticket access denied",
			zap.Int64("ticket_id", a.ticket.ID), zap.Int64("queue_id", a.ticket.QueueID))
		c.deps.Bus.Notify(bus.LevelError, TextAccessDenied)
		c.leave("access denied")
		return
	}

	c.state.Loading = false
	c.state.Ticket = a.ticket
	c.state.Contact = a.ticket.Contact
	if a.ticket.ID != c.subTicket || c.sub == nil {
		c.subscribe(a.ticket.ID)
	}
	c.fetchMessages(a.ticket.ID, 1)
}

func (c *Controller) fetchMessages(ticketID int64, page int) {
	reqID := uuid.New().String()
	c.msgReq = reqID
	ctx := helpdesk.WithRequestID(c.ctx, reqID)
	go func() {
		p, err := c.deps.Fetcher.Messages(ctx, ticketID, page)
		c.post(messagesFetched{ticketID: ticketID, reqID: reqID, page: page, result: p, err: err})
	}()
}

func (c *Controller) onMessagesFetched(a messagesFetched) {
	if a.reqID != c.msgReq {
		return
	}
	c.msgReq = ""
	if c.state.Ticket == nil || c.state.Ticket.ID != a.ticketID {
		return
	}
	if a.err != nil {
		c.logger.Warn("fetch messages failed", zap.Int64("ticket_id", a.ticketID), zap.Error(a.err))
		c.deps.Bus.Notify(bus.LevelError, a.err.Error())
		return
	}
	if a.result == nil {
		return
	}
	c.msgPage = a.page
	c.state.MoreMessages = a.result.HasMore
	if a.page == 1 {
		c.state.Messages = append([]helpdesk.Message(nil), a.result.Messages...)
		return
	}
	// Older pages go before what is already shown.
	c.state.Messages = append(append([]helpdesk.Message(nil), a.result.Messages...), c.state.Messages...)
}

// subscribe replaces the realtime subscription with one for ticketID.
func (c *Controller) subscribe(ticketID int64) {
	c.unsubscribe()
	c.subTicket = ticketID
	c.dial(ticketID, c.subGen)
}

// dial connects off the loop. The result is tagged with gen; one for a
// superseded generation is closed on arrival.
func (c *Controller) dial(ticketID int64, gen uint64) {
	if c.deps.Dialer == nil {
		return
	}
	ctx := c.ctx
	go func() {
		sub, err := c.deps.Dialer.Dial(ctx, c.opts.Tenant, ticketID)
		if !c.post(realtimeDialed{gen: gen, ticketID: ticketID, sub: sub, err: err}) && sub != nil {
			_ = sub.Close()
		}
	}()
}

// unsubscribe closes the active subscription, if any, and invalidates
// in-flight dials and queued events.
func (c *Controller) unsubscribe() {
	c.subGen++
	c.subTicket = 0
	c.state.Live = false
	c.stopRedial()
	c.redialDelay = 0
	if c.sub != nil {
		if err := c.sub.Close(); err != nil {
			c.logger.Debug("close realtime subscription", zap.Error(err))
		}
		c.sub = nil
	}
}

func (c *Controller) onDialed(a realtimeDialed) {
	if a.gen != c.subGen {
		if a.sub != nil {
			_ = a.sub.Close()
		}
		return
	}
	if a.err != nil {
		c.logger.Warn("realtime dial failed", zap.Int64("ticket_id", a.ticketID), zap.Error(a.err))
		c.scheduleRedial()
		return
	}
	c.sub = a.sub
	c.state.Live = true
	c.redialDelay = 0
	c.logger.Info("realtime subscribed", zap.Int64("ticket_id", a.ticketID), zap.Int64("tenant", c.opts.Tenant))

	gen := a.gen
	events := a.sub.Events()
	go func() {
		for evt := range events {
			if !c.post(realtimeEvent{gen: gen, evt: evt}) {
				return
			}
		}
		c.post(realtimeClosed{gen: gen})
	}()
}

// scheduleRedial dials the current ticket again after a growing delay, as
// long as the ticket stays mounted. The server needs the join again after
// every reconnect, which Dial sends.
func (c *Controller) scheduleRedial() {
	if c.state.Ticket == nil || c.subTicket == 0 || c.deps.Dialer == nil {
		return
	}
	c.stopRedial()
	if c.redialDelay == 0 {
		c.redialDelay = redialMin
	}
	d := c.redialDelay
	c.redialDelay = min(c.redialDelay*2, redialMax)

	gen, ticketID := c.subGen, c.subTicket
	c.logger.Debug("realtime redial scheduled", zap.Int64("ticket_id", ticketID), zap.Duration("delay", d))
	c.redialStop = c.opts.AfterFunc(d, func() {
		c.post(redialFired{gen: gen, ticketID: ticketID})
	})
}

func (c *Controller) stopRedial() {
	if c.redialStop != nil {
		c.redialStop()
		c.redialStop = nil
	}
}

func (c *Controller) onRealtime(evt realtime.Event) {
	switch evt.Topic {
	case realtime.TopicTicket:
		switch evt.Action {
		case realtime.ActionUpdate:
			if evt.Ticket == nil {
				return
			}
			if c.state.Ticket != nil && evt.Ticket.ID != 0 && evt.Ticket.ID != c.state.Ticket.ID {
				c.logger.Debug("ignoring update for another ticket", zap.Int64("ticket_id", evt.Ticket.ID))
				return
			}
			t := *evt.Ticket
			c.state.Ticket = &t
		case realtime.ActionDelete:
			if c.state.Ticket != nil && evt.TicketID != 0 && evt.TicketID != c.state.Ticket.ID {
				c.logger.Debug("ignoring delete for another ticket", zap.Int64("ticket_id", evt.TicketID))
				return
			}
			c.logger.Info("ticket deleted", zap.Int64("ticket_id", evt.TicketID))
			c.deps.Bus.Notify(bus.LevelSuccess, TextTicketDeleted)
			c.leave("ticket deleted")
		}

	case realtime.TopicContact:
		if evt.Action != realtime.ActionUpdate || evt.ContactID == 0 || evt.ContactID != c.state.Contact.ID {
			return
		}
		merged, err := c.state.Contact.MergeJSON(evt.ContactPatch)
		if err != nil {
			c.logger.Warn("merge contact update", zap.Int64("contact_id", evt.ContactID), zap.Error(err))
			return
		}
		c.state.Contact = merged
	}
}

// leave drops the ticket and asks the UI to show the ticket list. The view
// returns to its initial state, as if it had been unmounted.
func (c *Controller) leave(reason string) {
	c.reset()
	c.deps.Bus.Publish(bus.Event{
		Kind:    bus.KindViewNavigate,
		Payload: bus.Navigation{Route: RouteTickets, Reason: reason},
	})
}

// reset abandons all pending work and returns to the initial state.
func (c *Controller) reset() {
	c.stopDebounce()
	c.cancelFetch()
	c.unsubscribe()
	c.msgReq = ""
	c.msgPage = 0
	c.invoiceSeq++
	c.state = initialState()
	c.drawer = NewDrawer()
}

func (c *Controller) onDrawer(open bool) {
	to := DrawerClosed
	if open {
		to = DrawerOpen
	}
	if err := c.drawer.Transition(to); err != nil {
		c.logger.Debug("drawer", zap.Error(err))
		return
	}
	c.state.DrawerOpen = c.drawer.IsOpen()
}

func (c *Controller) onSubmitInvoice() {
	if c.state.InvoiceBusy {
		return
	}
	taxID := billing.NormalizeTaxID(c.state.TaxID)
	if taxID == "" {
		c.deps.Bus.Notify(bus.LevelError, TextTaxIDRequired)
		return
	}
	if c.deps.Billing == nil {
		c.deps.Bus.Notify(bus.LevelError, "billing is not configured")
		return
	}

	c.state.InvoiceBusy = true
	c.invoiceSeq++
	seq := c.invoiceSeq
	ticketID := c.state.TicketID
	ctx := c.ctx
	chargeCode := c.opts.ChargeCode
	go func() {
		res, err := billing.Lookup(ctx, c.deps.Billing, taxID, chargeCode)
		c.post(invoiceDone{seq: seq, ticketID: ticketID, chargeCode: chargeCode, result: res, err: err})
	}()
}

func (c *Controller) onInvoiceDone(a invoiceDone) {
	if a.seq != c.invoiceSeq {
		return
	}
	c.state.InvoiceBusy = false

	switch {
	case errors.Is(a.err, billing.ErrCustomerNotFound):
		c.deps.Bus.Notify(bus.LevelInfo, TextCustomerNotFound)
	case a.err != nil:
		c.logger.Warn("invoice lookup failed", zap.Error(a.err))
		c.state.Invoice = nil
		c.deps.Bus.Notify(bus.LevelError, a.err.Error())
	default:
		inv := a.result.Invoice
		c.state.Invoice = &inv
		c.recordInvoice(a)
	}
}

func (c *Controller) recordInvoice(a invoiceDone) {
	if c.deps.History == nil {
		return
	}
	err := c.deps.History.RecordInvoice(&store.InvoiceLookup{
		TicketID:     a.ticketID,
		TaxID:        a.result.TaxID,
		CustomerCode: a.result.Customer.Code,
		ChargeCode:   a.chargeCode,
		Message:      a.result.Invoice.Message,
		PDFURL:       a.result.Invoice.PDFURL,
		Barcode:      a.result.Invoice.Barcode,
	})
	if err != nil {
		c.logger.Warn("record invoice lookup", zap.Error(err))
	}
}

func (c *Controller) onSend(body string) {
	body = strings.TrimSpace(body)
	if body == "" || c.state.Ticket == nil {
		return
	}
	if c.state.Ticket.Closed() {
		c.deps.Bus.Notify(bus.LevelError, TextTicketClosed)
		return
	}
	if c.deps.Outbox == nil {
		return
	}
	if _, err := c.deps.Outbox.Enqueue(c.state.Ticket.ID, body); err != nil {
		c.logger.Error("enqueue message", zap.Int64("ticket_id", c.state.Ticket.ID), zap.Error(err))
		c.deps.Bus.Notify(bus.LevelError, err.Error())
	}
}
