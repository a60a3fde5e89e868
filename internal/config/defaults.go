package config

const (
	defaultAppLogLevel  = "info"
	defaultPollTimeout  = 30
	defaultChartTimeout = 20
)

// applyDefaults fills unset fields after the yaml unmarshal.
func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultAppLogLevel
	}
	if c.Telegram.PollTimeoutSeconds <= 0 {
		c.Telegram.PollTimeoutSeconds = defaultPollTimeout
	}
	if c.Chart.TimeoutSeconds <= 0 {
		c.Chart.TimeoutSeconds = defaultChartTimeout
	}
}
