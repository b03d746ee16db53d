package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Discord  DiscordConfig  `toml:"discord"`
	Resolver ResolverConfig `toml:"resolver"`
	Accounts AccountsConfig `toml:"accounts"`
	Settings SettingsConfig `toml:"settings"`
	Presence PresenceConfig `toml:"presence"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Votes    VotesConfig    `toml:"votes"`
}

// DiscordConfig contains the bot credentials.
type DiscordConfig struct {
	Token         string `toml:"token"`
	ApplicationID string `toml:"application_id"`
}

// ResolverConfig configures the song-resolution service client.
type ResolverConfig struct {
	BaseURL           string  `toml:"base_url"`
	APIKey            string  `toml:"api_key"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// AccountsConfig configures the linked music accounts API used by the playlist flow.
type AccountsConfig struct {
	BaseURL      string   `toml:"base_url"`
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	TokenURL     string   `toml:"token_url"`
	Scopes       []string `toml:"scopes"`
}

// SettingsConfig controls the guild settings cache.
type SettingsConfig struct {
	CacheTTLMillis int    `toml:"cache_ttl_ms"`
	DefaultReplyTo uint64 `toml:"default_reply_to"`
}

// PresenceConfig controls the scheduled presence refresh.
type PresenceConfig struct {
	Schedule string `toml:"schedule"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP webhook server settings.
type ServerConfig struct {
	Enabled       bool   `toml:"enabled"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	WebhookSecret string `toml:"webhook_secret"`
}

// VotesConfig controls how long a vote unlocks gated commands.
type VotesConfig struct {
	WindowHours int `toml:"window_hours"`
}

// CacheTTL returns the settings cache window as a [time.Duration].
func (c SettingsConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMillis) * time.Millisecond
}

// Timeout returns the resolver transport timeout.
func (c ResolverConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Window returns the vote window as a [time.Duration].
func (c VotesConfig) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

// Addr returns the listen address for the webhook server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the fields required to run the bot.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("%w: discord token is required", ErrMissingCredentials)
	}
	if c.Resolver.BaseURL == "" {
		return fmt.Errorf("%w: resolver base_url is required", ErrInvalidConfig)
	}
	if c.Settings.CacheTTLMillis <= 0 {
		return fmt.Errorf("%w: settings cache_ttl_ms must be positive", ErrInvalidConfig)
	}
	if c.Server.Enabled && c.Server.WebhookSecret == "" {
		return fmt.Errorf("%w: server webhook_secret is required when the server is enabled", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, os.ErrExist)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
