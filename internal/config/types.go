package config

// Config is the daemon configuration. All durations are Go duration
// strings (e.g. "500ms", "10s", "5m").
type Config struct {
	Logging    LoggingConfig    `json:"logging"`
	Storage    StorageConfig    `json:"storage"`
	Ingest     IngestConfig     `json:"ingest"`
	Debug      DebugConfig      `json:"debug"`
	Transports TransportsConfig `json:"transports"`
}

type LoggingConfig struct {
	Level   string `json:"level,omitempty"` // trace|debug|info|warn|error, default info
	Console *bool  `json:"console,omitempty"`
	File    string `json:"file,omitempty"` // JSON log file; empty disables
}

type StorageConfig struct {
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// IngestConfig controls the HTTP endpoint that accepts messages for
// dispatch. Prefer binding to localhost; the endpoint is unauthenticated.
type IngestConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default "127.0.0.1:8370"
}

// DebugConfig controls the optional pprof endpoint. A non-loopback
// bind requires a token.
type DebugConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default "127.0.0.1:6060"
	Token   string `json:"token,omitempty"`
}

type TransportsConfig struct {
	Pager    *PagerConfig    `json:"pager,omitempty"`
	Telegram *TelegramConfig `json:"telegram,omitempty"`
	Ntfy     *NtfyConfig     `json:"ntfy,omitempty"`
}

// PagerConfig configures the hardware pager transport and its delivery
// loop.
type PagerConfig struct {
	Key             string `json:"key,omitempty"` // transport key, default "intelpage"
	TransmitterHost string `json:"transmitter_host"`
	TransmitterPort int    `json:"transmitter_port"`
	ConnectTimeout  string `json:"connect_timeout,omitempty"` // default "10s"
	PollInterval    string `json:"poll_interval,omitempty"`   // default "15s"
	RatePerSec      int    `json:"rate_per_sec,omitempty"`    // default 1
}

type TelegramConfig struct {
	Key      string `json:"key,omitempty"` // transport key, default "telegram"
	BotToken string `json:"bot_token"`
}

type NtfyConfig struct {
	Key         string `json:"key,omitempty"` // transport key, default "ntfy"
	ServerURL   string `json:"server_url"`
	AccessToken string `json:"access_token,omitempty"`
}
