package config

import (
	"flag"
	"os"

	"github.com/ordermaster/identity/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string     data directory (default from Config)
//	-t duration   session timeout, e.g. 8h (default from Config)
//	-i duration   expiration check interval, e.g. 1m (default from Config)
//	-l string     log level (default from Config)
//
// Only the flags listed above are parsed; everything else in os.Args is
// filtered out via flagx.FilterArgs so other components can define their own.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-t", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.DurationVar(&cfg.SessionTimeout, "t", cfg.SessionTimeout, "session timeout")
	fs.DurationVar(&cfg.CheckInterval, "i", cfg.CheckInterval, "expiration check interval")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
