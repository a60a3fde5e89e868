package config

import (
	"fmt"
	"strings"
)

// validate performs basic sanity checks on the loaded configuration.
func validate(c *Config) error {
	if err := c.Telegram.validate(); err != nil {
		return err
	}
	if err := c.Chart.validate(); err != nil {
		return err
	}
	return nil
}

func (t *TelegramConfig) validate() error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.BotToken) == "" {
		return fmt.Errorf("telegram enabled but bot_token is empty")
	}
	if t.PollTimeoutSeconds < 1 || t.PollTimeoutSeconds > 120 {
		return fmt.Errorf("telegram.poll_timeout_seconds must be in [1,120]")
	}
	return nil
}

func (ch *ChartConfig) validate() error {
	if ch.Enabled && ch.TimeoutSeconds <= 0 {
		return fmt.Errorf("chart.timeout_seconds must be > 0")
	}
	return nil
}
