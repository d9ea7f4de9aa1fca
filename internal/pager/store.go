package pager

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// RetryLimit caps how often a queued message is attempted.
	RetryLimit = 2

	// StalenessWindow is how long after queueing a message remains
	// eligible for transmission.
	StalenessWindow = 5 * time.Minute

	// ClaimLease is how long a claimed message stays invisible to other
	// delivery workers before it may be claimed again.
	ClaimLease = 30 * time.Second
)

// MessageStore persists the delivery queue. ClaimNext atomically claims
// the single most urgent eligible message for the transport so that
// concurrent delivery loops never double-send; it returns nil without
// error when nothing is eligible.
type MessageStore interface {
	Add(ctx context.Context, msg *PagerMessage) error
	ClaimNext(ctx context.Context, transportKey string, now time.Time) (*PagerMessage, error)
	Update(ctx context.Context, msg *PagerMessage) error
}

// PagerStore resolves the pager a recipient carries. A recipient
// without a pager yields nil without error.
type PagerStore interface {
	PagerCarriedBy(ctx context.Context, recipientID uuid.UUID) (*Pager, error)
}

// ChannelStore resolves shared channels. An unknown id yields nil
// without error.
type ChannelStore interface {
	ChannelByID(ctx context.Context, id uuid.UUID) (*Channel, error)
}
