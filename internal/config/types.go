package config

// Config is the process-wide configuration. It is loaded once at startup
// and must be treated as read-only afterwards.
//
// Credentials normally come from the environment (see ApplyEnv); every
// other field has a default and may be set from an optional JSON/YAML file.
type Config struct {
	Practicum PracticumConfig `json:"practicum"`
	Telegram  TelegramConfig  `json:"telegram"`
	Poll      PollConfig      `json:"poll"`
	Notifier  NotifierConfig  `json:"notifier"`
	Logging   LoggingConfig   `json:"logging"`
}

type PracticumConfig struct {
	// Token is the OAuth credential (env PRACTICUM_TOKEN).
	Token    string `json:"token,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
	// Timeout is a Go duration string (e.g. "30s").
	Timeout string `json:"timeout,omitempty"`
}

type TelegramConfig struct {
	// Token is the bot token (env TELEGRAM_TOKEN).
	Token string `json:"token,omitempty"`
	// ChatID is the single chat notifications go to (env TELEGRAM_CHAT_ID).
	ChatID   string `json:"chat_id,omitempty"`
	ThreadID int    `json:"thread_id,omitempty"`
	// APIURL overrides the Bot API base URL (local Bot API server).
	APIURL string `json:"api_url,omitempty"`
	// Timeout is a Go duration string bounding one Bot API request.
	Timeout string `json:"timeout,omitempty"`
}

// PollConfig controls the poll loop.
//
// Interval accepts a Go duration ("600s", "10m"), HH:MM ("00:10"),
// "interval:"/"every:" prefixed forms, or a cron spec ("cron:*/10 * * * *",
// "@every 10m"). Defaults to "600s".
type PollConfig struct {
	Interval string `json:"interval,omitempty"`
}

// NotifierConfig controls chat delivery pacing.
type NotifierConfig struct {
	RatePerSec  int    `json:"rate_per_sec,omitempty"`
	SendTimeout string `json:"send_timeout,omitempty"`
}

type LoggingConfig struct {
	Level string `json:"level,omitempty"`
	// Console and File.Enabled are pointers so an omitted key keeps the
	// default (true) while an explicit false disables the sink.
	Console  *bool           `json:"console,omitempty"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled *bool  `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

const (
	DefaultEndpoint     = "https://practicum.yandex.ru/api/user_api/homework_statuses/"
	DefaultTimeout      = "30s"
	DefaultPollInterval = "600s"
	DefaultRatePerSec   = 3
	DefaultLogLevel     = "INFO"
	DefaultLogFile      = "main.log"
)

func (c *Config) applyDefaults() {
	if c.Practicum.Endpoint == "" {
		c.Practicum.Endpoint = DefaultEndpoint
	}
	if c.Practicum.Timeout == "" {
		c.Practicum.Timeout = DefaultTimeout
	}
	if c.Poll.Interval == "" {
		c.Poll.Interval = DefaultPollInterval
	}
	if c.Notifier.RatePerSec <= 0 {
		c.Notifier.RatePerSec = DefaultRatePerSec
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Console == nil {
		c.Logging.Console = boolPtr(true)
	}
	if c.Logging.File.Enabled == nil {
		c.Logging.File.Enabled = boolPtr(true)
	}
	if c.Logging.File.Path == "" {
		c.Logging.File.Path = DefaultLogFile
	}
}

func boolPtr(v bool) *bool { return &v }
