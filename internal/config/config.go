// Package config handles logger setup shared by the binaries.
package config

import (
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger honoring the debug and quiet flags.
// Debug wins over quiet.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
