// Package telegram delivers outgoing messages to Telegram chats via the
// Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"opspager/internal/eventbus"
	"opspager/internal/recipient"
	"opspager/internal/transport"
	"opspager/pkg/logx"
)

// DefaultTransportKey is the key the Telegram transport registers under
// unless configured otherwise.
const DefaultTransportKey = "telegram"

// KeyChatID is the vendor config key holding the destination chat.
const KeyChatID = "chat_id"

// Sender is the telebot surface the transport needs; *tele.Bot
// satisfies it.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type Config struct {
	Key      string
	BotToken string
}

// Transport sends messages synchronously to the recipient's configured
// chat. Without a bot token it stays registered but accepts nothing.
type Transport struct {
	key string
	bot Sender
	bus eventbus.Bus
	log logx.Logger
}

func New(cfg Config, bus eventbus.Bus, log logx.Logger) (*Transport, error) {
	t := &Transport{key: cfg.Key, bus: bus, log: log}
	if t.key == "" {
		t.key = DefaultTransportKey
	}
	if cfg.BotToken == "" {
		return t, nil
	}

	bot, err := tele.NewBot(tele.Settings{Token: cfg.BotToken})
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	t.bot = bot
	return t, nil
}

// NewWithSender wires a custom sender. Used by tests.
func NewWithSender(key string, bot Sender, bus eventbus.Bus, log logx.Logger) *Transport {
	if key == "" {
		key = DefaultTransportKey
	}
	return &Transport{key: key, bot: bot, bus: bus, log: log}
}

func (t *Transport) Key() string { return t.key }

func (t *Transport) AcceptsNewMessages() bool { return t.bot != nil }

func (t *Transport) CanSendTo(r recipient.Recipient, _ transport.Message) bool {
	vendorCfg, ok := r.VendorConfigFor(t.key)
	if !ok {
		return false
	}
	_, err := chatIDFrom(vendorCfg)
	return err == nil
}

// Send is synchronous; telebot carries its own HTTP timeouts, so the
// context only gates entry.
func (t *Transport) Send(ctx context.Context, out transport.OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	vendorCfg, ok := out.Recipient.VendorConfigFor(t.key)
	if !ok {
		return t.fail(out, fmt.Errorf("recipient %q has no enabled %q configuration", out.Recipient.Name(), t.key))
	}
	chatID, err := chatIDFrom(vendorCfg)
	if err != nil {
		return t.fail(out, err)
	}

	opts := &tele.SendOptions{
		// Low priorities arrive silently.
		DisableNotification: !out.Message.Priority.HigherOrEqual(transport.PriorityDefault),
	}
	if _, err := t.bot.Send(tele.ChatID(chatID), out.Message.Body, opts); err != nil {
		return t.fail(out, fmt.Errorf("telegram send to chat %d: %w", chatID, err))
	}

	transport.PublishStatus(t.bus, out.ID, transport.StatusTransmitted, "")
	return nil
}

func (t *Transport) fail(out transport.OutgoingMessage, err error) error {
	t.log.Error("telegram delivery failed", logx.Err(err),
		logx.String("recipient", out.Recipient.Name()),
		logx.String("outgoing_id", out.ID.String()))
	transport.PublishStatus(t.bus, out.ID, transport.StatusError, err.Error())
	return err
}

func chatIDFrom(vendorCfg map[string]any) (int64, error) {
	raw, ok := vendorCfg[KeyChatID]
	if !ok {
		return 0, fmt.Errorf("vendor config has no %q key", KeyChatID)
	}
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		// JSON decoding of vendor config yields float64 numbers.
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("vendor config key %q: %w", KeyChatID, err)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("vendor config key %q is %T, want number or string", KeyChatID, raw)
	}
}
