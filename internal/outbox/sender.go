package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/wppdesk/internal/bus"
	"github.com/matheus3301/wppdesk/internal/store"
	"go.uber.org/zap"
)

// MessagePoster delivers a composer message to the helpdesk backend.
type MessagePoster interface {
	SendMessage(ctx context.Context, ticketID int64, body string) error
}

// Ack is the payload of message.queued, message.send_ack and message.send_failed events.
type Ack struct {
	ClientMsgID string
	TicketID    int64
	Error       string
}

// Sender drains the outbox and posts messages to the backend.
type Sender struct {
	db       *store.DB
	poster   MessagePoster
	bus      *bus.Bus
	logger   *zap.Logger
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSender creates a new outbox sender.
func NewSender(db *store.DB, poster MessagePoster, b *bus.Bus, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{
		db:       db,
		poster:   poster,
		bus:      b,
		logger:   logger,
		interval: 500 * time.Millisecond,
	}
}

// Enqueue stores a message for delivery and returns its client message id.
func (s *Sender) Enqueue(ticketID int64, body string) (string, error) {
	id := uuid.New().String()
	if err := s.db.QueueOutbox(id, ticketID, body); err != nil {
		return "", err
	}
	s.bus.Publish(bus.Event{Kind: bus.KindMessageQueued, Payload: Ack{ClientMsgID: id, TicketID: ticketID}})
	return id, nil
}

// Retry requeues a failed message.
func (s *Sender) Retry(clientMsgID string) error {
	return s.db.RequeueOutbox(clientMsgID)
}

// RetryFailed requeues every failed message and returns how many were requeued.
func (s *Sender) RetryFailed() (int, error) {
	failed, err := s.db.FailedOutbox()
	if err != nil {
		return 0, err
	}
	for i, e := range failed {
		if err := s.db.RequeueOutbox(e.ClientMsgID); err != nil {
			return i, err
		}
	}
	return len(failed), nil
}

// Start begins polling the outbox for pending messages.
func (s *Sender) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx)
}

// Stop stops the sender loop and waits for an in-flight batch to finish.
func (s *Sender) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

func (s *Sender) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sender) processPending(ctx context.Context) {
	pending, err := s.db.PendingOutbox()
	if err != nil {
		s.logger.Error("failed to read outbox", zap.Error(err))
		return
	}

	for _, entry := range pending {
		if ctx.Err() != nil {
			return
		}
		if err := s.db.MarkOutboxSending(entry.ClientMsgID); err != nil {
			s.logger.Error("failed to mark sending", zap.Error(err), zap.String("client_msg_id", entry.ClientMsgID))
			continue
		}

		if err := s.poster.SendMessage(ctx, entry.TicketID, entry.Body); err != nil {
			s.logger.Error("failed to send message", zap.Error(err), zap.String("client_msg_id", entry.ClientMsgID))
			_ = s.db.MarkOutboxFailed(entry.ClientMsgID, err.Error())
			s.bus.Publish(bus.Event{
				Kind:    bus.KindMessageFailed,
				Payload: Ack{ClientMsgID: entry.ClientMsgID, TicketID: entry.TicketID, Error: err.Error()},
			})
			continue
		}

		if err := s.db.MarkOutboxSent(entry.ClientMsgID); err != nil {
			s.logger.Error("failed to mark sent", zap.Error(err), zap.String("client_msg_id", entry.ClientMsgID))
		}
		s.logger.Info("message sent", zap.String("client_msg_id", entry.ClientMsgID), zap.Int64("ticket_id", entry.TicketID))
		s.bus.Publish(bus.Event{
			Kind:    bus.KindMessageSendAck,
			Payload: Ack{ClientMsgID: entry.ClientMsgID, TicketID: entry.TicketID},
		})
	}
}
