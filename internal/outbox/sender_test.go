package outbox

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/wppdesk/internal/bus"
	"github.com/matheus3301/wppdesk/internal/store"
	"go.uber.org/zap"
)

// mockPoster records calls and returns configurable results.
type mockPoster struct {
	mu    sync.Mutex
	calls []postCall
	err   error
}

type postCall struct {
	TicketID int64
	Body     string
}

func (m *mockPoster) SendMessage(_ context.Context, ticketID int64, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, postCall{TicketID: ticketID, Body: body})
	return m.err
}

func (m *mockPoster) Calls() []postCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]postCall(nil), m.calls...)
}

func testDB(t *testing.T) *store.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newSender(t *testing.T, db *store.DB, p MessagePoster, b *bus.Bus) *Sender {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	s := NewSender(db, p, b, logger)
	s.interval = 20 * time.Millisecond
	return s
}

func waitEvent(t *testing.T, ch <-chan bus.Event) bus.Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
	return bus.Event{}
}

func TestSenderProcessesPendingMessages(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	mock := &mockPoster{}
	s := newSender(t, db, mock, b)

	queued, unsubQueued := b.Subscribe(bus.KindMessageQueued, 10)
	defer unsubQueued()
	acks, unsubAcks := b.Subscribe(bus.KindMessageSendAck, 10)
	defer unsubAcks()

	id, err := s.Enqueue(7, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if evt := waitEvent(t, queued); evt.Payload.(Ack).ClientMsgID != id {
		t.Errorf("queued ack = %+v, want client id %s", evt.Payload, id)
	}

	s.Start(context.Background())
	defer s.Stop()

	evt := waitEvent(t, acks)
	ack, ok := evt.Payload.(Ack)
	if !ok {
		t.Fatalf("payload type = %T, want Ack", evt.Payload)
	}
	if ack.ClientMsgID != id || ack.TicketID != 7 {
		t.Errorf("ack = %+v", ack)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d send calls, want 1", len(calls))
	}
	if calls[0] != (postCall{TicketID: 7, Body: "hello"}) {
		t.Errorf("call = %+v, want {7, hello}", calls[0])
	}

	pending, err := db.PendingOutbox()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("got %d pending, want 0 after send", len(pending))
	}
}

func TestSenderHandlesFailure(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	mock := &mockPoster{err: fmt.Errorf("network error")}
	s := newSender(t, db, mock, b)

	ch, unsub := b.Subscribe(bus.KindMessageFailed, 10)
	defer unsub()

	id, err := s.Enqueue(7, "hello")
	if err != nil {
		t.Fatal(err)
	}

	s.Start(context.Background())
	evt := waitEvent(t, ch)
	s.Stop()

	if ack := evt.Payload.(Ack); ack.Error != "network error" || ack.ClientMsgID != id {
		t.Errorf("failure ack = %+v", ack)
	}

	// Failed entries are not retried automatically.
	if got := len(mock.Calls()); got != 1 {
		t.Errorf("got %d send calls, want 1", got)
	}

	failed, err := db.FailedOutbox()
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].ErrorMessage != "network error" {
		t.Fatalf("failed = %+v", failed)
	}

	if err := s.Retry(id); err != nil {
		t.Fatal(err)
	}
	pending, err := db.PendingOutbox()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Errorf("got %d pending after retry, want 1", len(pending))
	}
}

func TestSenderPreservesOrder(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	mock := &mockPoster{}
	s := newSender(t, db, mock, b)

	acks, unsub := b.Subscribe(bus.KindMessageSendAck, 10)
	defer unsub()

	for _, body := range []string{"one", "two", "three"} {
		if _, err := s.Enqueue(1, body); err != nil {
			t.Fatal(err)
		}
	}

	s.Start(context.Background())
	defer s.Stop()
	for i := 0; i < 3; i++ {
		waitEvent(t, acks)
	}

	calls := mock.Calls()
	for i, want := range []string{"one", "two", "three"} {
		if calls[i].Body != want {
			t.Errorf("call %d = %q, want %q", i, calls[i].Body, want)
		}
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := NewSender(testDB(t), &mockPoster{}, bus.New(), nil)
	s.Stop()
}

func TestRetryFailed(t *testing.T) {
	db := testDB(t)
	s := newSender(t, db, &mockPoster{}, bus.New())

	for i, id := range []string{"a", "b"} {
		if err := db.QueueOutbox(id, int64(i+1), "x"); err != nil {
			t.Fatal(err)
		}
		if err := db.MarkOutboxSending(id); err != nil {
			t.Fatal(err)
		}
		if err := db.MarkOutboxFailed(id, "boom"); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.RetryFailed()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("RetryFailed() = %d, want 2", n)
	}
	pending, err := db.PendingOutbox()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Errorf("got %d pending, want 2", len(pending))
	}
}
