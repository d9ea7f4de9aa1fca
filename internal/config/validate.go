package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks cross-field constraints the decoder cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path is required")
	}
	if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
		return err
	}

	if p := c.Transports.Pager; p != nil {
		if strings.TrimSpace(p.TransmitterHost) == "" {
			return errors.New("transports.pager.transmitter_host is required")
		}
		if p.TransmitterPort <= 0 || p.TransmitterPort > 65535 {
			return fmt.Errorf("transports.pager.transmitter_port %d out of range", p.TransmitterPort)
		}
		if _, err := ParseDurationField("transports.pager.connect_timeout", p.ConnectTimeout); err != nil {
			return err
		}
		if _, err := ParseDurationField("transports.pager.poll_interval", p.PollInterval); err != nil {
			return err
		}
		if p.RatePerSec < 0 {
			return errors.New("transports.pager.rate_per_sec must be >= 0")
		}
	}

	if t := c.Transports.Telegram; t != nil && strings.TrimSpace(t.BotToken) == "" {
		return errors.New("transports.telegram.bot_token is required")
	}
	if n := c.Transports.Ntfy; n != nil && strings.TrimSpace(n.ServerURL) == "" {
		return errors.New("transports.ntfy.server_url is required")
	}

	return nil
}
