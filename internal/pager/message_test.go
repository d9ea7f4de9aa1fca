package pager

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opspager/internal/transport"
)

func TestNewPagerMessageNormalizesCarriageReturns(t *testing.T) {
	t.Parallel()

	msg, err := NewPagerMessage(uuid.New(), "intelpage", MustCapCode(100),
		"line one\rline two\r", transport.PriorityHigh, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "line one line two ", msg.Body())
	assert.NotContains(t, msg.Body(), "\r")
}

func TestNewPagerMessageEnforcesMaxLength(t *testing.T) {
	t.Parallel()

	_, err := NewPagerMessage(uuid.New(), "intelpage", MustCapCode(100),
		strings.Repeat("x", MaxBodyLength), transport.PriorityHigh, time.Now())
	assert.NoError(t, err)

	_, err = NewPagerMessage(uuid.New(), "intelpage", MustCapCode(100),
		strings.Repeat("x", MaxBodyLength+1), transport.PriorityHigh, time.Now())
	assert.Error(t, err)
}

func TestPagerMessageLifecycle(t *testing.T) {
	t.Parallel()

	queued := time.Now()
	msg, err := NewPagerMessage(uuid.New(), "intelpage", MustCapCode(42), "hello", transport.PriorityDefault, queued)
	require.NoError(t, err)

	assert.Nil(t, msg.TransmittedOn())
	assert.Zero(t, msg.Attempts())
	assert.Equal(t, queued, msg.QueuedOn())

	msg.FailedToSend()
	msg.FailedToSend()
	assert.Equal(t, 2, msg.Attempts())

	sent := time.Now()
	msg.MarkSent(sent)
	require.NotNil(t, msg.TransmittedOn())
	assert.Equal(t, sent, *msg.TransmittedOn())
}
