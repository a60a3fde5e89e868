package config

// Config is the top-level configuration for tradecoach.
type Config struct {
	App      AppConfig      `toml:"app"`
	Telegram TelegramConfig `toml:"telegram"`
	Storage  StorageConfig  `toml:"storage"`
	Chart    ChartConfig    `toml:"chart"`
}

type AppConfig struct {
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
}

// TelegramConfig describes the bot API access for the long-poll transport.
type TelegramConfig struct {
	Enabled            bool   `toml:"enabled"`
	BotToken           string `toml:"bot_token"`
	PollTimeoutSeconds int    `toml:"poll_timeout_seconds"`
}

// StorageConfig points at the sqlite ledger file. An empty path selects the
// in-memory store (journal is lost on restart).
type StorageConfig struct {
	Path string `toml:"path"`
}

// ChartConfig controls the equity-curve rendering for the journal view.
// Rendering needs a headless Chrome on the host; disable when there is none.
type ChartConfig struct {
	Enabled        bool `toml:"enabled"`
	TimeoutSeconds int  `toml:"timeout_seconds"`
}
