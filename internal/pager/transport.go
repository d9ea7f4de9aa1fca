package pager

import (
	"context"
	"errors"
	"fmt"

	"opspager/internal/eventbus"
	"opspager/internal/recipient"
	"opspager/internal/transport"
	"opspager/pkg/logx"
)

// DefaultTransportKey is the key the pager transport registers under
// unless configured otherwise.
const DefaultTransportKey = "intelpage"

var errNoCapCode = errors.New("no cap code available for recipient")

// Transport addresses outgoing messages to hardware pagers. Its only
// real job is finding the right cap code; queueing and transmission are
// delegated to the QueueService.
type Transport struct {
	key      string
	queue    *QueueService
	pagers   PagerStore
	channels ChannelStore
	bus      eventbus.Bus
	log      logx.Logger
}

func NewTransport(key string, queue *QueueService, pagers PagerStore, channels ChannelStore, bus eventbus.Bus, log logx.Logger) *Transport {
	if key == "" {
		key = DefaultTransportKey
	}
	return &Transport{
		key:      key,
		queue:    queue,
		pagers:   pagers,
		channels: channels,
		bus:      bus,
		log:      log,
	}
}

func (t *Transport) Key() string { return t.key }

// AcceptsNewMessages is always true: the transmitter is configured
// operations side, there is no application level toggle.
func (t *Transport) AcceptsNewMessages() bool { return true }

// CanSendTo probes whether a cap code can be resolved for the recipient
// with this message. It must agree with the resolution Send performs.
func (t *Transport) CanSendTo(r recipient.Recipient, msg transport.Message) bool {
	if len(msg.Body) > MaxBodyLength {
		t.log.Warn("message body exceeds pager limit",
			logx.Int("length", len(msg.Body)),
			logx.Int("limit", MaxBodyLength))
		return false
	}

	_, err := t.capCodeFor(context.Background(), r, msg.Priority)
	return err == nil
}

// Send resolves the cap code and hands the message to the delivery
// queue. A resolution failure here means state changed between the
// CanSendTo probe and now (or the probe was skipped); it is reported as
// a failed-to-queue error status, never a panic.
func (t *Transport) Send(ctx context.Context, out transport.OutgoingMessage) error {
	code, err := t.capCodeFor(ctx, out.Recipient, out.Message.Priority)
	if err != nil {
		t.log.Error("cap code resolution failed after successful probe", logx.Err(err),
			logx.String("recipient", out.Recipient.Name()),
			logx.String("outgoing_id", out.ID.String()))
		transport.PublishStatus(t.bus, out.ID, transport.StatusError,
			fmt.Sprintf("failed to queue: %v", err))
		return err
	}

	return t.queue.Queue(ctx, out.ID, t.key, code, out.Message.Body, out.Message.Priority)
}

// capCodeFor implements the addressing rules. A channel reference in
// the vendor config wins; otherwise the recipient must carry an
// activated pager, and the message priority against the recipient's
// alert threshold picks the audible or the silent cap.
func (t *Transport) capCodeFor(ctx context.Context, r recipient.Recipient, priority transport.Priority) (CapCode, error) {
	vendorCfg, ok := r.VendorConfigFor(t.key)
	if !ok {
		return CapCode{}, fmt.Errorf("recipient %q has no enabled %q configuration", r.Name(), t.key)
	}
	cfg := NewRecipientConfig(vendorCfg)

	if cfg.HasChannel() {
		return t.channelCapCode(ctx, cfg)
	}

	pager, err := t.pagers.PagerCarriedBy(ctx, r.ID())
	if err != nil {
		return CapCode{}, fmt.Errorf("look up pager for recipient %q: %w", r.Name(), err)
	}
	if pager == nil {
		return CapCode{}, fmt.Errorf("recipient %q carries no pager", r.Name())
	}
	if !pager.Activated() {
		return CapCode{}, fmt.Errorf("pager %q is deactivated", pager.Label())
	}

	var code *CapCode
	if priority.HigherOrEqual(cfg.AlertFromPriority()) {
		code = pager.IndividualAlertCap()
	} else {
		code = pager.IndividualNonAlertCap()
	}
	if code == nil {
		return CapCode{}, fmt.Errorf("pager %q: %w", pager.Label(), errNoCapCode)
	}
	return *code, nil
}

func (t *Transport) channelCapCode(ctx context.Context, cfg RecipientConfig) (CapCode, error) {
	id, err := cfg.ChannelID()
	if err != nil {
		return CapCode{}, err
	}
	channel, err := t.channels.ChannelByID(ctx, id)
	if err != nil {
		return CapCode{}, fmt.Errorf("look up channel %s: %w", id, err)
	}
	if channel == nil {
		return CapCode{}, fmt.Errorf("channel %s not found", id)
	}
	return channel.CapCode(), nil
}
