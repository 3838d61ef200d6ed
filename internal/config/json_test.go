package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withArgs temporarily replaces os.Args for the duration of the test.
func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{old[0]}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestParseJson_NoFlagIsNoop(t *testing.T) {
	withArgs(t)

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, 8*time.Hour, c.SessionTimeout)
}

func TestParseJson_OverlaysFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	payload := `{
  "data_dir": "/var/lib/identity",
  "session_timeout": "2h",
  "check_interval": "30s",
  "log_level": "debug"
}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))
	withArgs(t, "-c", path)

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, "/var/lib/identity", c.DataDir)
	assert.Equal(t, 2*time.Hour, c.SessionTimeout)
	assert.Equal(t, 30*time.Second, c.CheckInterval)
	assert.Equal(t, "debug", c.LogLevel)
	// fields absent from the file keep defaults
	assert.Equal(t, 7*24*time.Hour, c.AutoLoginTTL)
}

func TestParseFlags_Overrides(t *testing.T) {
	withArgs(t, "-d", "elsewhere", "-t", "45m")

	var c Config
	c.LoadDefaults()
	parseFlags(&c)

	assert.Equal(t, "elsewhere", c.DataDir)
	assert.Equal(t, 45*time.Minute, c.SessionTimeout)
	assert.Equal(t, time.Minute, c.CheckInterval)
}
