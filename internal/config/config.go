package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Mode             string
	Port             string
	Lanes            int
	LaneCapacity     int
	LogLevel         string
	Environment      string
	TelemetryEnabled bool
	OTelServiceName  string
	OTelEndpoint     string
	HistoryFile      string
}

func Load() *Config {
	return &Config{
		Mode:             envOr("APP_MODE", "cli"),
		Port:             envOr("APP_PORT", "8080"),
		Lanes:            envOrInt("PARKING_LANES", 3),
		LaneCapacity:     envOrInt("PARKING_LANE_CAPACITY", 5),
		LogLevel:         envOr("LOG_LEVEL", "info"),
		Environment:      envOr("APP_ENV", "development"),
		TelemetryEnabled: envOrBool("TELEMETRY_ENABLED", true),
		OTelServiceName:  envOr("OTEL_SERVICE_NAME", "stacked-parking"),
		OTelEndpoint:     envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		HistoryFile:      envOr("SHELL_HISTORY_FILE", defaultHistoryFile()),
	}
}

// BindFlags registers command-line overrides for the values already loaded
// from the environment.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Mode, "mode", c.Mode, "Mode to run: cli, server, or both")
	fs.StringVar(&c.Port, "port", c.Port, "Port for HTTP server")
	fs.IntVar(&c.Lanes, "lanes", c.Lanes, "Number of parking lanes")
	fs.IntVar(&c.LaneCapacity, "capacity", c.LaneCapacity, "Cars per lane")
}

func (c *Config) Validate() error {
	switch c.Mode {
	case "cli", "server", "both":
	default:
		return fmt.Errorf("invalid mode %q: must be cli, server, or both", c.Mode)
	}
	if c.Lanes < 1 {
		return fmt.Errorf("lanes must be at least 1, got %d", c.Lanes)
	}
	if c.LaneCapacity < 1 {
		return fmt.Errorf("lane capacity must be at least 1, got %d", c.LaneCapacity)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".stacked_parking_history")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envOrBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
