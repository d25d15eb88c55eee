package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	eventBuf   = 64
)

// Subscription is one live connection joined to a ticket room.
type Subscription interface {
	// Events delivers decoded events in arrival order. It is closed when
	// the connection ends.
	Events() <-chan Event
	// Close disconnects. Safe to call more than once.
	Close() error
}

// Dialer opens subscriptions.
type Dialer interface {
	Dial(ctx context.Context, tenant, ticketID int64) (Subscription, error)
}

// WSDialer connects to the backend's WebSocket endpoint.
type WSDialer struct {
	URL    string
	Token  func() string
	Logger *zap.Logger
}

// Dial connects with the tenant as a query parameter and joins the ticket's room.
func (d *WSDialer) Dial(ctx context.Context, tenant, ticketID int64) (Subscription, error) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	endpoint, err := socketURL(d.URL, tenant)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	if d.Token != nil {
		if tok := d.Token(); tok != "" {
			header.Set("Authorization", "Bearer "+tok)
		}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("dial realtime: %w", err)
	}

	s := &wsSubscription{
		conn:   conn,
		tenant: tenant,
		events: make(chan Event, eventBuf),
		done:   make(chan struct{}),
		logger: logger.With(zap.Int64("tenant", tenant), zap.Int64("ticket_id", ticketID)),
	}

	join, _ := json.Marshal(strconv.FormatInt(ticketID, 10))
	if err := s.write(frame{Event: "joinChatBox", Data: join}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("join room: %w", err)
	}

	s.wg.Add(2)
	go s.readLoop()
	go s.pingLoop()
	s.logger.Info("realtime connected")
	return s, nil
}

func socketURL(raw string, tenant int64) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse socket url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported socket url scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("companyId", strconv.FormatInt(tenant, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type wsSubscription struct {
	conn    *websocket.Conn
	tenant  int64
	events  chan Event
	done    chan struct{}
	writeMu sync.Mutex
	once    sync.Once
	wg      sync.WaitGroup
	logger  *zap.Logger
}

func (s *wsSubscription) Events() <-chan Event {
	return s.events
}

func (s *wsSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		_ = s.writeControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = s.conn.Close()
		s.wg.Wait()
		s.logger.Info("realtime disconnected")
	})
	return err
}

func (s *wsSubscription) write(f frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(f)
}

func (s *wsSubscription) writeControl(kind int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteControl(kind, data, time.Now().Add(writeWait))
}

func (s *wsSubscription) readLoop() {
	defer s.wg.Done()
	defer close(s.events)

	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f frame
		if err := s.conn.ReadJSON(&f); err != nil {
			select {
			case <-s.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logger.Warn("realtime read failed", zap.Error(err))
				}
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		evt, ok, err := decode(s.tenant, f)
		if err != nil {
			s.logger.Warn("dropping malformed realtime frame", zap.String("event", f.Event), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		// Blocking send keeps delivery order; done unblocks on Close.
		select {
		case s.events <- evt:
		case <-s.done:
			return
		}
	}
}

func (s *wsSubscription) pingLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.writeControl(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}
