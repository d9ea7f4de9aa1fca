package pager

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"opspager/internal/eventbus"
	"opspager/internal/transport"
	"opspager/pkg/logx"
)

// QueueService owns the delivery queue: it persists newly addressed
// messages and drives individual transmission attempts.
type QueueService struct {
	store       MessageStore
	transmitter Transmitter
	bus         eventbus.Bus
	log         logx.Logger
	now         func() time.Time
}

func NewQueueService(store MessageStore, transmitter Transmitter, bus eventbus.Bus, log logx.Logger) *QueueService {
	return &QueueService{
		store:       store,
		transmitter: transmitter,
		bus:         bus,
		log:         log,
		now:         time.Now,
	}
}

// Queue persists a message for later transmission and publishes the
// queued status. The pager message shares the outgoing message's id.
func (s *QueueService) Queue(
	ctx context.Context,
	outgoingID uuid.UUID,
	transportKey string,
	cap CapCode,
	body string,
	priority transport.Priority,
) error {
	msg, err := NewPagerMessage(outgoingID, transportKey, cap, body, priority, s.now())
	if err != nil {
		return err
	}
	if err := s.store.Add(ctx, msg); err != nil {
		return fmt.Errorf("queue pager message: %w", err)
	}

	transport.PublishStatus(s.bus, outgoingID, transport.StatusQueued, "")
	return nil
}

// NextMessageToSend claims at most one eligible message for the
// transport. Eligible means: not yet transmitted, fewer attempts than
// the retry limit and queued within the staleness window. The claim is
// exclusive for the lease duration.
func (s *QueueService) NextMessageToSend(ctx context.Context, transportKey string) (*PagerMessage, error) {
	return s.store.ClaimNext(ctx, transportKey, s.now())
}

// Send performs one transmission attempt. On success the message is
// marked transmitted and the transmitted status is published. On
// failure the attempt counter is bumped and, once the retry limit is
// reached, a terminal error status goes out; the transmit error is
// returned either way so the delivery loop can abort its drain.
func (s *QueueService) Send(ctx context.Context, msg *PagerMessage) error {
	if err := s.transmitter.Transmit(ctx, msg.Cap(), msg.Body()); err != nil {
		s.handleTransmissionFailure(ctx, msg, err)
		return err
	}

	msg.MarkSent(s.now())
	if err := s.store.Update(ctx, msg); err != nil {
		return fmt.Errorf("persist transmitted pager message: %w", err)
	}

	s.log.Debug("pager message transmitted",
		logx.String("message_id", msg.ID().String()),
		logx.String("cap", msg.Cap().String()))
	transport.PublishStatus(s.bus, msg.ID(), transport.StatusTransmitted, "")
	return nil
}

func (s *QueueService) handleTransmissionFailure(ctx context.Context, msg *PagerMessage, cause error) {
	msg.FailedToSend()
	if err := s.store.Update(ctx, msg); err != nil {
		s.log.Error("persist failed pager message", logx.Err(err),
			logx.String("message_id", msg.ID().String()))
	}

	s.log.Error("pager message transmission failed", logx.Err(cause),
		logx.String("message_id", msg.ID().String()),
		logx.Int("attempts", msg.Attempts()))

	if msg.Attempts() >= RetryLimit {
		transport.PublishStatus(s.bus, msg.ID(), transport.StatusError, cause.Error())
	}
}
