package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration for the tutor CLI and the dev stub
// server.
type Config struct {
	BaseURL      string
	HTTPTimeout  time.Duration
	PollInterval time.Duration
	RecordWindow time.Duration
	Language     string
	RecorderPath string

	StubPort     string
	StubDatabase string
	StubSecret   string
}

// StubAddress returns the address the stub server should listen on.
func (c Config) StubAddress() string {
	if strings.HasPrefix(c.StubPort, ":") {
		return c.StubPort
	}
	return fmt.Sprintf(":%s", c.StubPort)
}

// Load reads configuration from environment variables and an optional .env
// file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("base.url", "http://localhost:5051")
	v.SetDefault("http.timeout", "15s")
	v.SetDefault("poll.interval", "2s")
	v.SetDefault("record.window", "4s")
	v.SetDefault("language", "en")
	v.SetDefault("recorder.path", "arecord")
	v.SetDefault("stub.port", "5051")
	v.SetDefault("stub.database", "file::memory:?cache=shared")
	v.SetDefault("stub.secret", "stub-dev-secret")

	timeout, err := time.ParseDuration(v.GetString("http.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid http timeout: %w", err)
	}

	poll, err := time.ParseDuration(v.GetString("poll.interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid poll interval: %w", err)
	}

	window, err := time.ParseDuration(v.GetString("record.window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid record window: %w", err)
	}

	cfg := Config{
		BaseURL:      v.GetString("base.url"),
		HTTPTimeout:  timeout,
		PollInterval: poll,
		RecordWindow: window,
		Language:     v.GetString("language"),
		RecorderPath: v.GetString("recorder.path"),
		StubPort:     v.GetString("stub.port"),
		StubDatabase: v.GetString("stub.database"),
		StubSecret:   v.GetString("stub.secret"),
	}

	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("base url must be provided")
	}

	return cfg, nil
}
