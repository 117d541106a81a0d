// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the HTTP listener settings for the daemon.
type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// BackendConfig holds settings for the subscription/payment REST backend.
type BackendConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Timeout     int    `mapstructure:"timeout"` // milliseconds
	CallbackURL string `mapstructure:"callback_url"`
}

// TokenizerConfig holds settings for the card tokenization gateway.
type TokenizerConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
	Locale  string `mapstructure:"locale"`
}

// CheckoutConfig holds settings for the checkout orchestration flow.
type CheckoutConfig struct {
	PollMaxAttempts int `mapstructure:"poll_max_attempts"`
	PollInterval    int `mapstructure:"poll_interval"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig holds TTLs for the usage and subscription caches.
type CacheConfig struct {
	UsageTTL        int `mapstructure:"usage_ttl"`        // milliseconds
	SubscriptionTTL int `mapstructure:"subscription_ttl"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
