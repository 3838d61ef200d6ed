// Package config assembles runtime settings for the identity core from
// defaults, environment variables, an optional JSON file, and command-line
// flags. Later sources take precedence over earlier ones.
package config

import "time"

// Config holds runtime settings for the identity core.
//
// Fields:
//   - DataDir: directory holding the user table and vault files.
//   - SessionTimeout: inactivity window after which a session expires.
//   - CheckInterval: period of the background expiration checker.
//   - AutoLoginTTL: maximum age of a persisted auto-login token.
//   - LogLevel: slog level name (debug, info, warn, error).
type Config struct {
	DataDir        string        `env:"IDENTITY_DATA_DIR"`
	SessionTimeout time.Duration `env:"IDENTITY_SESSION_TIMEOUT"`
	CheckInterval  time.Duration `env:"IDENTITY_CHECK_INTERVAL"`
	AutoLoginTTL   time.Duration `env:"IDENTITY_AUTOLOGIN_TTL"`
	LogLevel       string        `env:"IDENTITY_LOG_LEVEL"`
}

// LoadDefaults populates c with the defaults the desktop client shipped with.
func (c *Config) LoadDefaults() {
	c.DataDir = "data"
	c.SessionTimeout = 8 * time.Hour
	c.CheckInterval = time.Minute
	c.AutoLoginTTL = 7 * 24 * time.Hour
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, a JSON file (if given via -c/-config), and
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
