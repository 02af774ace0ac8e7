package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MissingValueError is returned by Validate when a required value is absent.
// Name is the environment variable the operator has to set.
type MissingValueError struct {
	Name string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("required value %s is missing", e.Name)
}

// Validate is the startup precondition. Required values are checked in a
// fixed order (API credential, chat credential, chat id) and the first
// missing one is reported.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{EnvPracticumToken, c.Practicum.Token},
		{EnvTelegramToken, c.Telegram.Token},
		{EnvTelegramChatID, c.Telegram.ChatID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &MissingValueError{Name: r.name}
		}
	}
	if _, err := c.ChatID(); err != nil {
		return err
	}
	if _, err := ParseDurationField("practicum.timeout", c.Practicum.Timeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("telegram.timeout", c.Telegram.Timeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("notifier.send_timeout", c.Notifier.SendTimeout); err != nil {
		return err
	}
	if c.Notifier.RatePerSec < 0 {
		return fmt.Errorf("notifier.rate_per_sec must be >= 0")
	}
	return nil
}

// ChatID parses the configured chat target.
func (c *Config) ChatID() (int64, error) {
	raw := strings.TrimSpace(c.Telegram.ChatID)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid chat id %q", EnvTelegramChatID, raw)
	}
	return id, nil
}

func (c *Config) PracticumTimeout() time.Duration {
	d, _ := ParseDurationOrDefault("practicum.timeout", c.Practicum.Timeout, 30*time.Second)
	return d
}

func (c *Config) TelegramTimeout() time.Duration {
	d, _ := ParseDurationOrDefault("telegram.timeout", c.Telegram.Timeout, 10*time.Second)
	return d
}

func (c *Config) SendTimeout() time.Duration {
	d, _ := ParseDurationOrDefault("notifier.send_timeout", c.Notifier.SendTimeout, 15*time.Second)
	return d
}
