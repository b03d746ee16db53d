package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// envOverrides maps environment variables onto the config fields they replace.
var envOverrides = []struct {
	key   string
	apply func(c *Config, v string)
}{
	{"DISCORD_TOKEN", func(c *Config, v string) { c.Discord.Token = v }},
	{"DISCORD_APPLICATION_ID", func(c *Config, v string) { c.Discord.ApplicationID = v }},
	{"RESOLVER_API_KEY", func(c *Config, v string) { c.Resolver.APIKey = v }},
	{"ACCOUNTS_CLIENT_SECRET", func(c *Config, v string) { c.Accounts.ClientSecret = v }},
	{"VOTES_WEBHOOK_SECRET", func(c *Config, v string) { c.Server.WebhookSecret = v }},
	{"TUNELINK_DB_PATH", func(c *Config, v string) { c.Database.Path = v }},
}

// LoadEnv loads variables from the given .env files into the process environment.
//
// Missing files are ignored; variables already set in the environment are not overwritten.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays secrets from the environment onto config. Environment values win over the file.
func ApplyEnv(config *Config) {
	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			o.apply(config, v)
		}
	}
}
