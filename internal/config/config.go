// Package config loads the client configuration with the precedence
// ENV > file > defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fwcd/socha-client-2020/internal/log"
)

// Duration wraps time.Duration so YAML decodes strings like "1500ms".
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Std().String(), nil
}

// Config holds everything the client needs at startup.
type Config struct {
	// Host and Port address the game server.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Reservation joins a prepared game when set.
	Reservation string `yaml:"reservation"`
	// GameType is the plugin identifier sent with the join request.
	GameType string `yaml:"gameType"`

	// Strategy selects the move selection policy.
	Strategy string `yaml:"strategy"`
	// Seed makes the strategy deterministic; 0 seeds from the clock.
	Seed int64 `yaml:"seed"`
	// MoveDeadline bounds move selection. The server's soft timeout is
	// two seconds, so the default leaves headroom for the network.
	MoveDeadline Duration `yaml:"moveDeadline"`

	// LogLevel is a zerolog level name (trace..panic).
	LogLevel string `yaml:"logLevel"`

	// OpsAddr serves health and metrics endpoints; empty disables them.
	OpsAddr string `yaml:"opsAddr"`

	// ArchivePath is the sqlite database recording finished games; empty
	// disables archiving.
	ArchivePath string `yaml:"archivePath"`
	// ReplayDir receives an XML replay per finished game when set.
	ReplayDir string `yaml:"replayDir"`

	Telemetry Telemetry `yaml:"telemetry"`
}

// Telemetry configures the OTLP trace exporter.
type Telemetry struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	// Protocol is "grpc" or "http".
	Protocol string `yaml:"protocol"`
	// SampleRatio in [0,1]; 1 traces every move request.
	SampleRatio float64 `yaml:"sampleRatio"`
}

// Default returns the configuration used when nothing else is given.
func Default() Config {
	return Config{
		Host:         "localhost",
		Port:         13050,
		GameType:     "swc_2020_hive",
		Strategy:     "random",
		MoveDeadline: Duration(1800 * time.Millisecond),
		LogLevel:     "info",
		Telemetry: Telemetry{
			Protocol:    "grpc",
			SampleRatio: 1,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and SOCHA_* environment overrides, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	mergeEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Address returns the joined host:port of the game server.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks the configuration for values the client cannot run with.
func (c Config) Validate() error {
	if c.Host == "" {
		return errors.New("config: host must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.MoveDeadline <= 0 {
		return errors.New("config: moveDeadline must be positive")
	}
	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			return errors.New("config: telemetry.endpoint required when telemetry is enabled")
		}
		if p := c.Telemetry.Protocol; p != "grpc" && p != "http" {
			return fmt.Errorf("config: unknown telemetry protocol %q", p)
		}
	}
	if r := c.Telemetry.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("config: telemetry sample ratio %v outside [0,1]", r)
	}
	return nil
}

func mergeEnv(cfg *Config) {
	cfg.Host = envString("SOCHA_HOST", cfg.Host)
	cfg.Port = envInt("SOCHA_PORT", cfg.Port)
	cfg.Reservation = envString("SOCHA_RESERVATION", cfg.Reservation)
	cfg.GameType = envString("SOCHA_GAME_TYPE", cfg.GameType)
	cfg.Strategy = envString("SOCHA_STRATEGY", cfg.Strategy)
	cfg.Seed = int64(envInt("SOCHA_SEED", int(cfg.Seed)))
	cfg.MoveDeadline = Duration(envDuration("SOCHA_MOVE_DEADLINE", cfg.MoveDeadline.Std()))
	cfg.LogLevel = envString("SOCHA_LOG_LEVEL", cfg.LogLevel)
	cfg.OpsAddr = envString("SOCHA_OPS_ADDR", cfg.OpsAddr)
	cfg.ArchivePath = envString("SOCHA_ARCHIVE_PATH", cfg.ArchivePath)
	cfg.ReplayDir = envString("SOCHA_REPLAY_DIR", cfg.ReplayDir)
	cfg.Telemetry.Enabled = envBool("SOCHA_TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Endpoint = envString("SOCHA_TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.Protocol = envString("SOCHA_TELEMETRY_PROTOCOL", cfg.Telemetry.Protocol)
}

// envString reads a string environment variable, falling back to the given
// default when unset or empty.
func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		logger := log.WithComponent("config")
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Msg("using environment variable")
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int("default", fallback).
			Msg("invalid integer in environment variable, using default")
		return fallback
	}
	return i
}

func envBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Bool("default", fallback).
			Msg("invalid boolean in environment variable, using default")
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", fallback).
			Msg("invalid duration in environment variable, using default")
		return fallback
	}
	return d
}
