// Package transport defines the contract between the addressing engine and
// the delivery channel implementations (pager, telegram, ntfy, ...).
package transport

import (
	"context"

	"github.com/google/uuid"

	"opspager/internal/recipient"
)

// Message is the incoming message as seen by transports: the content to
// deliver plus its urgency. The ID refers to the incoming message record.
type Message struct {
	ID       uuid.UUID
	Body     string
	Priority Priority
}

// OutgoingMessage is the parameter object for Transport.Send: one message
// bound for one recipient over one transport.
type OutgoingMessage struct {
	ID           uuid.UUID
	Recipient    recipient.Recipient
	Message      Message
	TransportKey string
}

// failedTransportKey marks outgoing messages that never reached a
// transport (dead-end addressing results).
const failedTransportKey = "_FAILED_"

// NewOutgoing creates an outgoing message bound to a transport.
func NewOutgoing(r recipient.Recipient, msg Message, transportKey string) OutgoingMessage {
	return OutgoingMessage{
		ID:           uuid.New(),
		Recipient:    r,
		Message:      msg,
		TransportKey: transportKey,
	}
}

// NewFailedOutgoing creates the record of an addressing dead end: a
// recipient for which no transport could be selected.
func NewFailedOutgoing(r recipient.Recipient, msg Message) OutgoingMessage {
	return OutgoingMessage{
		ID:           uuid.New(),
		Recipient:    r,
		Message:      msg,
		TransportKey: failedTransportKey,
	}
}

// Transport implements the logic to push (or queue) one message to one
// delivery mechanism.
//
// Transports are responsible for publishing all applicable
// OutgoingMessageEvents for messages handed to Send.
type Transport interface {
	// Key returns the transport identifier (slug) recipients reference
	// in their transport configurations.
	Key() string

	// AcceptsNewMessages reports whether the transport is configured
	// well enough to take on messages at all.
	AcceptsNewMessages() bool

	// CanSendTo checks whether the recipient is configured for this
	// transport and the message itself is valid to be sent through it.
	CanSendTo(r recipient.Recipient, msg Message) bool

	// Send queues or pushes the message. Implementations should prefer
	// queueing for asynchronous processing where the channel allows it.
	Send(ctx context.Context, out OutgoingMessage) error
}
