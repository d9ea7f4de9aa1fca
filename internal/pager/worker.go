package pager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"opspager/pkg/logx"
)

// DeliveryWorkerConfig tunes one delivery loop.
type DeliveryWorkerConfig struct {
	TransportKey string
	PollInterval time.Duration
	RatePerSec   int
}

// DeliveryWorker drains the queue for one transport key. There is
// exactly one worker per transport, and each drain claims messages one
// at a time, so a message is never attempted twice concurrently. The
// loop is re-invoked on an interval by cron; a transmit failure aborts
// the current drain and leaves retries to the next tick.
type DeliveryWorker struct {
	cfg     DeliveryWorkerConfig
	queue   *QueueService
	limiter *rate.Limiter
	log     logx.Logger

	c       *cron.Cron
	mu      sync.Mutex
	running bool
}

func NewDeliveryWorker(cfg DeliveryWorkerConfig, queue *QueueService, log logx.Logger) *DeliveryWorker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 15 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	return &DeliveryWorker{
		cfg:     cfg,
		queue:   queue,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
		log:     log,
	}
}

// Start schedules the periodic drain. The context bounds individual
// drains and stops the loop when cancelled.
func (w *DeliveryWorker) Start(ctx context.Context) error {
	w.c = cron.New()
	spec := fmt.Sprintf("@every %s", w.cfg.PollInterval)
	_, err := w.c.AddFunc(spec, func() { w.drain(ctx) })
	if err != nil {
		return fmt.Errorf("schedule delivery loop %q: %w", spec, err)
	}
	w.c.Start()

	go func() {
		<-ctx.Done()
		w.c.Stop()
	}()
	return nil
}

// drain claims and sends messages until the queue is empty, the context
// is cancelled or a transmission fails. Overlapping ticks are skipped.
func (w *DeliveryWorker) drain(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		msg, err := w.queue.NextMessageToSend(ctx, w.cfg.TransportKey)
		if err != nil {
			w.log.Error("claim next pager message", logx.Err(err),
				logx.String("transport", w.cfg.TransportKey))
			return
		}
		if msg == nil {
			return
		}

		if err := w.limiter.Wait(ctx); err != nil {
			return
		}

		if err := w.queue.Send(ctx, msg); err != nil {
			// Transmitter trouble is unlikely to clear within this
			// drain. The claim lease expires on its own and the next
			// tick retries.
			return
		}
	}
}
