package config

import (
	"encoding/json"
	"os"

	"github.com/ordermaster/identity/internal/flagx"
	"github.com/ordermaster/identity/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "8h"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	DataDir        string         `json:"data_dir"`
	SessionTimeout timex.Duration `json:"session_timeout"`
	CheckInterval  timex.Duration `json:"check_interval"`
	AutoLoginTTL   timex.Duration `json:"auto_login_ttl"`
	LogLevel       string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// the -c/-config flags. With no such flag, nothing is loaded. Fields absent
// from the file keep their current values. Panics on read or unmarshal
// errors (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.SessionTimeout.Duration != 0 {
		cfg.SessionTimeout = jc.SessionTimeout.Duration
	}
	if jc.CheckInterval.Duration != 0 {
		cfg.CheckInterval = jc.CheckInterval.Duration
	}
	if jc.AutoLoginTTL.Duration != 0 {
		cfg.AutoLoginTTL = jc.AutoLoginTTL.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
