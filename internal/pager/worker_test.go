package pager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opspager/internal/transport"
	"opspager/pkg/logx"
)

func workerFixture(t *testing.T, tx *fakeTransmitter) (*DeliveryWorker, *memMessageStore) {
	t.Helper()
	store := newMemMessageStore()
	queue := NewQueueService(store, tx, &recordingBus{}, logx.Nop())
	w := NewDeliveryWorker(DeliveryWorkerConfig{
		TransportKey: DefaultTransportKey,
		RatePerSec:   1000, // don't slow the test down
	}, queue, logx.Nop())
	return w, store
}

func queueTestMessage(t *testing.T, store *memMessageStore, body string) *PagerMessage {
	t.Helper()
	msg, err := NewPagerMessage(uuid.New(), DefaultTransportKey, MustCapCode(100), body,
		transport.PriorityDefault, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Add(context.Background(), msg))
	return msg
}

func TestDrainSendsUntilQueueEmpty(t *testing.T) {
	t.Parallel()

	tx := &fakeTransmitter{}
	w, store := workerFixture(t, tx)
	first := queueTestMessage(t, store, "one")
	second := queueTestMessage(t, store, "two")

	w.drain(context.Background())

	assert.Equal(t, 2, tx.calls)
	assert.NotNil(t, first.TransmittedOn())
	assert.NotNil(t, second.TransmittedOn())
}

func TestDrainAbortsOnTransmitFailure(t *testing.T) {
	t.Parallel()

	tx := &fakeTransmitter{errs: []error{errors.New("transmitter offline")}}
	w, store := workerFixture(t, tx)
	queueTestMessage(t, store, "one")
	queueTestMessage(t, store, "two")

	w.drain(context.Background())

	// The failed attempt ends the drain; the second message waits for
	// the next tick.
	assert.Equal(t, 1, tx.calls)
}

func TestDrainHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	tx := &fakeTransmitter{}
	w, store := workerFixture(t, tx)
	queueTestMessage(t, store, "one")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.drain(ctx)

	assert.Zero(t, tx.calls)
}

func TestWorkerDefaults(t *testing.T) {
	t.Parallel()

	queue := NewQueueService(newMemMessageStore(), &fakeTransmitter{}, &recordingBus{}, logx.Nop())
	w := NewDeliveryWorker(DeliveryWorkerConfig{TransportKey: DefaultTransportKey}, queue, logx.Nop())
	assert.Equal(t, 15*time.Second, w.cfg.PollInterval)
	assert.Equal(t, 1, w.cfg.RatePerSec)
}
