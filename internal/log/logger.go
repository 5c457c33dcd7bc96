// Package log configures the process-wide zerolog logger and hands out
// component-scoped children.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures the options for the global logger.
type Config struct {
	Level   string    // log level ("debug", "info", ...), defaults to info
	Output  io.Writer // defaults to os.Stderr
	Service string    // service name attached to every entry
	Version string    // version attached to every entry
}

var (
	mu   sync.Mutex
	base zerolog.Logger
	set  bool
)

// Configure (re)initialises the global logger. It may be called again once
// the effective configuration is known, e.g. after the config file has been
// loaded.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}

	service := cfg.Service
	if service == "" {
		service = "socha-client"
	}

	ctx := zerolog.New(writer).With().
		Timestamp().
		Str("service", service)
	if cfg.Version != "" {
		ctx = ctx.Str("version", cfg.Version)
	}
	base = ctx.Logger()
	set = true
}

func logger() zerolog.Logger {
	mu.Lock()
	ok := set
	mu.Unlock()
	if !ok {
		Configure(Config{})
	}
	mu.Lock()
	defer mu.Unlock()
	return base
}

// Base returns the configured base logger.
func Base() zerolog.Logger {
	return logger()
}

// WithComponent returns a child logger annotated with the given component.
func WithComponent(component string) zerolog.Logger {
	return logger().With().Str("component", component).Logger()
}
