package pager

import (
	"fmt"

	"github.com/google/uuid"

	"opspager/internal/transport"
)

// Vendor config keys understood by the pager transport.
const (
	KeyChannel           = "channel"
	KeyAlertFromPriority = "alert_from_priority"
)

// DefaultAlertFromPriority applies when a recipient does not configure
// the audible threshold.
const DefaultAlertFromPriority = transport.PriorityHigh

// RecipientConfig interprets a recipient's vendor specific config map
// for the pager transport.
type RecipientConfig struct {
	config map[string]any
}

func NewRecipientConfig(config map[string]any) RecipientConfig {
	return RecipientConfig{config: config}
}

// HasChannel reports whether the recipient addresses a shared channel
// instead of a carried pager.
func (c RecipientConfig) HasChannel() bool {
	_, ok := c.config[KeyChannel]
	return ok
}

// ChannelID parses the configured channel reference.
func (c RecipientConfig) ChannelID() (uuid.UUID, error) {
	raw, ok := c.config[KeyChannel]
	if !ok {
		return uuid.Nil, fmt.Errorf("vendor config has no %q key", KeyChannel)
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("vendor config key %q is %T, want string", KeyChannel, raw)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("vendor config key %q: %w", KeyChannel, err)
	}
	return id, nil
}

// AlertFromPriority is the lowest priority that selects the audible cap.
// Unknown or malformed values fall back to the default, matching the
// lenient interpretation applied to recipient supplied config.
func (c RecipientConfig) AlertFromPriority() transport.Priority {
	raw, ok := c.config[KeyAlertFromPriority]
	if !ok {
		return DefaultAlertFromPriority
	}

	var value int
	switch v := raw.(type) {
	case int:
		value = v
	case int64:
		value = int(v)
	case float64:
		// JSON decoding of vendor config yields float64 numbers.
		value = int(v)
	default:
		return DefaultAlertFromPriority
	}

	p := transport.Priority(value)
	if !p.Valid() {
		return DefaultAlertFromPriority
	}
	return p
}
