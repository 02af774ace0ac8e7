package config

import "strings"

// Environment variable names for the required credentials.
const (
	EnvPracticumToken = "PRACTICUM_TOKEN"
	EnvTelegramToken  = "TELEGRAM_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
)

// ApplyEnv overlays credentials from the environment. Non-empty variables
// win over values from the config file.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&cfg.Practicum.Token, EnvPracticumToken)
	set(&cfg.Telegram.Token, EnvTelegramToken)
	set(&cfg.Telegram.ChatID, EnvTelegramChatID)
}
