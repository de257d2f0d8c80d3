package config

// Config is the full staywatch configuration.
//
// All durations are Go duration strings (e.g. "3s", "5m").
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Airbnb   AirbnbConfig   `json:"airbnb"`
	Logging  LoggingConfig  `json:"logging"`
	Watch    WatchConfig    `json:"watch"`
	Storage  StorageConfig  `json:"storage"`
}

type TelegramConfig struct {
	Token string `json:"token"`
}

// AirbnbConfig configures the upstream search client.
type AirbnbConfig struct {
	APIKey string `json:"api_key"`
	// BaseURL defaults to "https://www.airbnb.com".
	BaseURL string `json:"base_url,omitempty"`
	// Locale defaults to "en".
	Locale string `json:"locale,omitempty"`
	// Timeout is the per-request HTTP timeout. Defaults to "30s".
	Timeout string `json:"timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// WatchConfig controls the poll cycle.
//
// Defaults (when fields are omitted):
//   - interval: "5m"
//   - run_timeout: "540s"
//   - listing_pause: "3s"
//   - subscription_pause: "15s"
//   - on_malformed: "skip"
type WatchConfig struct {
	// Interval between scheduled poll cycles.
	Interval string `json:"interval,omitempty"`
	// RunTimeout is the hard wall-clock bound for one full cycle.
	RunTimeout string `json:"run_timeout,omitempty"`
	// ListingPause paces successive notifications within one subscription.
	ListingPause string `json:"listing_pause,omitempty"`
	// SubscriptionPause paces successive subscriptions within one cycle.
	SubscriptionPause string `json:"subscription_pause,omitempty"`
	// OnMalformed selects how a result item that fails normalization is
	// handled: "skip" drops the item, "abort" fails the subscription's poll.
	OnMalformed string `json:"on_malformed,omitempty"`
}

// StorageConfig selects the subscription store backend.
//
// Driver values:
//   - "file": JSON document on disk (human-editable)
//   - "sqlite": SQLite database file
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}
