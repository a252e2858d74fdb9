// Package config defines service configuration and its loading rules.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers sources on top.
// - External errors must be wrapped via this package's sentinels.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// SecretsFile points at the structured secrets YAML holding the
	// service-account material and the workbook URL.
	SecretsFile string `koanf:"secrets_file"`

	// CredentialsJSON holds literal service-account JSON. Checked after
	// the secrets file, before GOOGLE_APPLICATION_CREDENTIALS.
	CredentialsJSON string `koanf:"credentials_json"`

	// SpreadsheetURL locates the workbook: a full URL or a bare ID.
	SpreadsheetURL string `koanf:"spreadsheet_url"`

	// FallbackPath names the local JSON file backing the fallback store.
	// Empty keeps the fallback purely in memory.
	FallbackPath string `koanf:"fallback_path"`

	// MaxRetries bounds retry attempts for transient backend errors.
	MaxRetries int `koanf:"max_retries"`

	// RetryBaseDelayMS is the initial backoff delay in milliseconds.
	RetryBaseDelayMS int `koanf:"retry_base_delay_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9090",
		MaxRetries:       3,
		RetryBaseDelayMS: 600,
	}
}
