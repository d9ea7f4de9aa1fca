package pager

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"opspager/internal/transport"
)

// MaxBodyLength is the longest body a pager message may carry on the
// wire.
const MaxBodyLength = 512

// PagerMessage is one queued transmission. State changes only through
// MarkSent and FailedToSend.
type PagerMessage struct {
	id            uuid.UUID
	transportKey  string
	cap           CapCode
	body          string
	priority      transport.Priority
	queuedOn      time.Time
	transmittedOn *time.Time
	attempts      int
}

// NewPagerMessage queues a message body for a cap code. Carriage
// returns are frame delimiters in the wire protocol, so any in the body
// are replaced with spaces before the length check.
func NewPagerMessage(id uuid.UUID, transportKey string, cap CapCode, body string, priority transport.Priority, queuedOn time.Time) (*PagerMessage, error) {
	body = strings.ReplaceAll(body, "\r", " ")
	if len(body) > MaxBodyLength {
		return nil, fmt.Errorf("pager message body %d bytes long, limit is %d", len(body), MaxBodyLength)
	}
	return &PagerMessage{
		id:           id,
		transportKey: transportKey,
		cap:          cap,
		body:         body,
		priority:     priority,
		queuedOn:     queuedOn,
	}, nil
}

// RestorePagerMessage rebuilds a message from persisted state.
func RestorePagerMessage(
	id uuid.UUID,
	transportKey string,
	cap CapCode,
	body string,
	priority transport.Priority,
	queuedOn time.Time,
	transmittedOn *time.Time,
	attempts int,
) *PagerMessage {
	return &PagerMessage{
		id:            id,
		transportKey:  transportKey,
		cap:           cap,
		body:          body,
		priority:      priority,
		queuedOn:      queuedOn,
		transmittedOn: transmittedOn,
		attempts:      attempts,
	}
}

func (m *PagerMessage) ID() uuid.UUID                { return m.id }
func (m *PagerMessage) TransportKey() string         { return m.transportKey }
func (m *PagerMessage) Cap() CapCode                 { return m.cap }
func (m *PagerMessage) Body() string                 { return m.body }
func (m *PagerMessage) Priority() transport.Priority { return m.priority }
func (m *PagerMessage) QueuedOn() time.Time          { return m.queuedOn }
func (m *PagerMessage) TransmittedOn() *time.Time    { return m.transmittedOn }
func (m *PagerMessage) Attempts() int                { return m.attempts }

func (m *PagerMessage) MarkSent(at time.Time) {
	m.transmittedOn = &at
}

func (m *PagerMessage) FailedToSend() {
	m.attempts++
}
