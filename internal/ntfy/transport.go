// Package ntfy delivers outgoing messages as push notifications via an
// ntfy server (https://docs.ntfy.sh/publish/).
package ntfy

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"opspager/internal/eventbus"
	"opspager/internal/recipient"
	"opspager/internal/transport"
	"opspager/pkg/logx"
)

// DefaultTransportKey is the key the ntfy transport registers under
// unless configured otherwise.
const DefaultTransportKey = "ntfy"

// KeyTopic is the vendor config key holding the destination topic.
const KeyTopic = "topic"

type Config struct {
	Key         string
	ServerURL   string
	AccessToken string
}

// Transport publishes to one topic per recipient. Without a server URL
// it stays registered but accepts nothing.
type Transport struct {
	key    string
	client *resty.Client
	token  string
	bus    eventbus.Bus
	log    logx.Logger
}

func New(cfg Config, bus eventbus.Bus, log logx.Logger) *Transport {
	t := &Transport{key: cfg.Key, token: cfg.AccessToken, bus: bus, log: log}
	if t.key == "" {
		t.key = DefaultTransportKey
	}
	if cfg.ServerURL != "" {
		t.client = resty.New().
			SetBaseURL(cfg.ServerURL).
			SetTimeout(10 * time.Second)
	}
	return t
}

func (t *Transport) Key() string { return t.key }

func (t *Transport) AcceptsNewMessages() bool { return t.client != nil }

func (t *Transport) CanSendTo(r recipient.Recipient, _ transport.Message) bool {
	vendorCfg, ok := r.VendorConfigFor(t.key)
	if !ok {
		return false
	}
	_, err := topicFrom(vendorCfg)
	return err == nil
}

func (t *Transport) Send(ctx context.Context, out transport.OutgoingMessage) error {
	if t.client == nil {
		return t.fail(out, fmt.Errorf("ntfy transport %q has no server configured", t.key))
	}
	vendorCfg, ok := out.Recipient.VendorConfigFor(t.key)
	if !ok {
		return t.fail(out, fmt.Errorf("recipient %q has no enabled %q configuration", out.Recipient.Name(), t.key))
	}
	topic, err := topicFrom(vendorCfg)
	if err != nil {
		return t.fail(out, err)
	}

	req := t.client.R().
		SetContext(ctx).
		SetHeader("X-Priority", strconv.Itoa(ntfyPriority(out.Message.Priority))).
		SetBody(out.Message.Body)
	if t.token != "" {
		req.SetAuthToken(t.token)
	}

	resp, err := req.Post("/" + topic)
	if err != nil {
		return t.fail(out, fmt.Errorf("ntfy publish to %q: %w", topic, err))
	}
	if resp.IsError() {
		return t.fail(out, fmt.Errorf("ntfy publish to %q: status %s", topic, resp.Status()))
	}

	transport.PublishStatus(t.bus, out.ID, transport.StatusTransmitted, "")
	return nil
}

func (t *Transport) fail(out transport.OutgoingMessage, err error) error {
	t.log.Error("ntfy delivery failed", logx.Err(err),
		logx.String("recipient", out.Recipient.Name()),
		logx.String("outgoing_id", out.ID.String()))
	transport.PublishStatus(t.bus, out.ID, transport.StatusError, err.Error())
	return err
}

func topicFrom(vendorCfg map[string]any) (string, error) {
	raw, ok := vendorCfg[KeyTopic]
	if !ok {
		return "", fmt.Errorf("vendor config has no %q key", KeyTopic)
	}
	topic, ok := raw.(string)
	if !ok || topic == "" {
		return "", fmt.Errorf("vendor config key %q must be a non-empty string", KeyTopic)
	}
	return topic, nil
}

// ntfyPriority maps the internal scale to ntfy's 1..5.
func ntfyPriority(p transport.Priority) int {
	switch p {
	case transport.PriorityUrgent:
		return 5
	case transport.PriorityHigh:
		return 4
	case transport.PriorityLow:
		return 2
	case transport.PriorityMin:
		return 1
	default:
		return 3
	}
}
