package transport

import (
	"time"

	"github.com/google/uuid"

	"opspager/internal/eventbus"
)

// Event types published on the bus while an outgoing message moves
// through its lifecycle.
const (
	EventTypeOutgoingInitiated = "outgoing_message.initiated"
	EventTypeOutgoingStatus    = "outgoing_message.status"
)

// Status an outgoing message can reach.
//
// Transports are not required to provide all of them; a unidirectional
// broadcast channel will likely never report anything beyond TRANSMITTED.
type Status string

const (
	// StatusQueued: the transport accepted the message and queued it
	// for asynchronous processing.
	StatusQueued Status = "QUEUED"
	// StatusTransmitted: the message left the system and is on its way
	// to the recipient.
	StatusTransmitted Status = "TRANSMITTED"
	// StatusError: an unrecoverable error occurred for this message.
	StatusError Status = "ERROR"
)

// NewOutgoingMessageInitiated is raised when a new outgoing message is
// created for a recipient, before it is passed to the transport. It
// captures the recipient association, and whether addressing already
// ended in a dead end (Failed).
type NewOutgoingMessageInitiated struct {
	IncomingMessageID uuid.UUID
	OutgoingMessageID uuid.UUID
	RecipientID       uuid.UUID
	At                time.Time
	TransportKey      string
	Failed            bool
}

// OutgoingMessageEvent records one status change of an outgoing message.
type OutgoingMessageEvent struct {
	OutgoingMessageID uuid.UUID
	At                time.Time
	Status            Status
	Detail            string
}

// PublishInitiated publishes the initiated event for an outgoing message.
func PublishInitiated(bus eventbus.Bus, out OutgoingMessage, failed bool) {
	bus.Publish(eventbus.Event{
		Type: EventTypeOutgoingInitiated,
		Data: NewOutgoingMessageInitiated{
			IncomingMessageID: out.Message.ID,
			OutgoingMessageID: out.ID,
			RecipientID:       out.Recipient.ID(),
			At:                time.Now(),
			TransportKey:      out.TransportKey,
			Failed:            failed,
		},
	})
}

// PublishStatus publishes a status-change event for an outgoing message.
func PublishStatus(bus eventbus.Bus, outgoingID uuid.UUID, status Status, detail string) {
	bus.Publish(eventbus.Event{
		Type: EventTypeOutgoingStatus,
		Data: OutgoingMessageEvent{
			OutgoingMessageID: outgoingID,
			At:                time.Now(),
			Status:            status,
			Detail:            detail,
		},
	})
}
