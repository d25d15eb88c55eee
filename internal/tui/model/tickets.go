// Package model caches data the TUI shows outside the ticket view.
package model

import (
	"context"
	"sync"

	"github.com/matheus3301/wppdesk/internal/helpdesk"
)

// Lister is the part of the helpdesk client the ticket list needs.
type Lister interface {
	Tickets(ctx context.Context, q helpdesk.TicketQuery) (*helpdesk.TicketPage, error)
}

// Tickets caches the agent's ticket list and signals UI refreshes.
type Tickets struct {
	mu sync.RWMutex

	lister  Lister
	query   helpdesk.TicketQuery
	tickets []helpdesk.Ticket
	hasMore bool
	loading bool

	refreshCh chan struct{}
}

// NewTickets creates a ticket list model. query is the base filter; its
// Page is managed by the model.
func NewTickets(l Lister, query helpdesk.TicketQuery) *Tickets {
	return &Tickets{
		lister:    l,
		query:     query,
		refreshCh: make(chan struct{}, 1),
	}
}

// RefreshCh returns the channel that signals UI refresh.
func (m *Tickets) RefreshCh() <-chan struct{} {
	return m.refreshCh
}

func (m *Tickets) signalRefresh() {
	select {
	case m.refreshCh <- struct{}{}:
	default:
	}
}

// Load replaces the cache with the first page.
func (m *Tickets) Load(ctx context.Context) error {
	m.mu.Lock()
	q := m.query
	m.loading = true
	m.mu.Unlock()

	q.Page = 1
	page, err := m.lister.Tickets(ctx, q)

	m.mu.Lock()
	m.loading = false
	if err == nil {
		m.query.Page = 1
		m.tickets = page.Tickets
		m.hasMore = page.HasMore
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.signalRefresh()
	return nil
}

// LoadMore appends the next page. It is a no-op when there is none.
func (m *Tickets) LoadMore(ctx context.Context) error {
	m.mu.Lock()
	if !m.hasMore || m.loading {
		m.mu.Unlock()
		return nil
	}
	q := m.query
	m.loading = true
	m.mu.Unlock()

	q.Page++
	page, err := m.lister.Tickets(ctx, q)

	m.mu.Lock()
	m.loading = false
	if err == nil {
		m.query.Page = q.Page
		m.tickets = mergeTickets(m.tickets, page.Tickets)
		m.hasMore = page.HasMore
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.signalRefresh()
	return nil
}

// SetSearch changes the server-side search term. Callers reload afterwards.
func (m *Tickets) SetSearch(search string) {
	m.mu.Lock()
	m.query.Search = search
	m.mu.Unlock()
}

// List returns a copy of the cached tickets.
func (m *Tickets) List() []helpdesk.Ticket {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]helpdesk.Ticket(nil), m.tickets...)
}

// HasMore reports whether another page is available.
func (m *Tickets) HasMore() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasMore
}

// mergeTickets appends next to cur, skipping ids already present. Tickets can
// move between pages while an agent scrolls.
func mergeTickets(cur, next []helpdesk.Ticket) []helpdesk.Ticket {
	seen := make(map[int64]bool, len(cur))
	for _, t := range cur {
		seen[t.ID] = true
	}
	out := append([]helpdesk.Ticket(nil), cur...)
	for _, t := range next {
		if !seen[t.ID] {
			out = append(out, t)
			seen[t.ID] = true
		}
	}
	return out
}
