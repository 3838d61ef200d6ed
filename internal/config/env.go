package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// parseEnv overlays Config with values from IDENTITY_* environment
// variables. Unset variables leave the corresponding fields untouched.
// Panics on malformed values (caller should recover if desired).
func parseEnv(cfg *Config) {
	if err := envconfig.Process(context.Background(), cfg); err != nil {
		panic(err)
	}
}
