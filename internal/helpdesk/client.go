package helpdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type requestIDKey struct{}

// WithRequestID attaches a request id that the client sends as X-Request-Id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Client talks to the helpdesk backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a backend client. token may be empty until SetToken is called.
func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// SetToken replaces the bearer token used on subsequent calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Ticket fetches a ticket, with its contact embedded.
func (c *Client) Ticket(ctx context.Context, id int64) (*Ticket, error) {
	var t Ticket
	if err := c.do(ctx, http.MethodGet, "/tickets/u/"+strconv.FormatInt(id, 10), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// TicketQuery filters the ticket list. Zero fields are omitted.
type TicketQuery struct {
	Status   string
	Search   string
	Page     int
	ShowAll  bool
	QueueIDs []int64
}

// TicketPage is one page of the ticket list.
type TicketPage struct {
	Tickets []Ticket `json:"tickets"`
	HasMore bool     `json:"hasMore"`
	Count   int      `json:"count"`
}

// Tickets lists tickets visible to the agent.
func (c *Client) Tickets(ctx context.Context, q TicketQuery) (*TicketPage, error) {
	v := url.Values{}
	if q.Page < 1 {
		q.Page = 1
	}
	v.Set("pageNumber", strconv.Itoa(q.Page))
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Search != "" {
		v.Set("searchParam", q.Search)
	}
	if q.ShowAll {
		v.Set("showAll", "true")
	}
	if len(q.QueueIDs) > 0 {
		ids, _ := json.Marshal(q.QueueIDs)
		v.Set("queueIds", string(ids))
	}
	var p TicketPage
	if err := c.do(ctx, http.MethodGet, "/tickets?"+v.Encode(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MessagePage is one page of a ticket thread.
type MessagePage struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"hasMore"`
	Count    int       `json:"count"`
}

// Messages fetches a page of messages for a ticket. Pages start at 1.
func (c *Client) Messages(ctx context.Context, ticketID int64, page int) (*MessagePage, error) {
	if page < 1 {
		page = 1
	}
	path := "/messages/" + strconv.FormatInt(ticketID, 10) + "?" + url.Values{"pageNumber": {strconv.Itoa(page)}}.Encode()
	var p MessagePage
	if err := c.do(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SendMessage posts a text message to a ticket.
func (c *Client) SendMessage(ctx context.Context, ticketID int64, body string) error {
	payload := map[string]any{"body": body, "fromMe": true, "read": 1}
	return c.do(ctx, http.MethodPost, "/messages/"+strconv.FormatInt(ticketID, 10), payload, nil)
}

// RefreshSession exchanges the current token for a fresh one and the agent profile.
// When the user record lacks a company id it is read from the token claims.
func (c *Client) RefreshSession(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/auth/refresh_token", nil, &s); err != nil {
		return nil, err
	}
	if s.User.CompanyID == 0 && s.Token != "" {
		if tenant, err := TenantFromToken(s.Token); err == nil {
			s.User.CompanyID = tenant
		}
	}
	if s.Token != "" {
		c.SetToken(s.Token)
	}
	return &s, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		req.Header.Set("X-Request-Id", id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("helpdesk request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)); json.Unmarshal(data, &e) == nil {
			apiErr.Code = e.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
