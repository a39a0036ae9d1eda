// Package config loads the YAML configuration shared by the visualizer and
// the mock backend.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBackendURL is the address of the voice-assistant backend.
const DefaultBackendURL = "http://localhost:8000"

type Config struct {
	Client ClientConfig `yaml:"client"`
	Mock   MockConfig   `yaml:"mock"`
}

type ClientConfig struct {
	BackendURL      string        `yaml:"backend_url"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	TransitionDelay time.Duration `yaml:"transition_delay"`
	// Zero means no local timeout; the transport default applies.
	StartTimeout  time.Duration `yaml:"start_timeout"`
	StatusTimeout time.Duration `yaml:"status_timeout"`
	LogFile       string        `yaml:"log_file"`
}

// MockConfig drives the scripted state machine of the mock backend.
type MockConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	GreetingDuration time.Duration `yaml:"greeting_duration"`
	UtteranceAfter   time.Duration `yaml:"utterance_after"`
	ThinkingDuration time.Duration `yaml:"thinking_duration"`
	SpeakingDuration time.Duration `yaml:"speaking_duration"`
	SilenceTimeout   time.Duration `yaml:"silence_timeout"`
	Exchanges        int           `yaml:"exchanges"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			BackendURL:      DefaultBackendURL,
			PollInterval:    500 * time.Millisecond,
			TransitionDelay: 500 * time.Millisecond,
		},
		Mock: MockConfig{
			Host:             "127.0.0.1",
			Port:             8000,
			GreetingDuration: 2 * time.Second,
			UtteranceAfter:   4 * time.Second,
			ThinkingDuration: 1500 * time.Millisecond,
			SpeakingDuration: 3 * time.Second,
			SilenceTimeout:   30 * time.Second,
			Exchanges:        3,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Client.BackendURL)
	if err != nil {
		return fmt.Errorf("client.backend_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("client.backend_url: %q is not an http(s) address", c.Client.BackendURL)
	}
	if c.Client.PollInterval <= 0 {
		return fmt.Errorf("client.poll_interval must be positive, got %v", c.Client.PollInterval)
	}

	durations := map[string]time.Duration{
		"client.transition_delay": c.Client.TransitionDelay,
		"client.start_timeout":    c.Client.StartTimeout,
		"client.status_timeout":   c.Client.StatusTimeout,
	}
	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %v", name, d)
		}
	}
	return c.Mock.Validate()
}

// Validate checks the mock timings. It is also used on hot reload, where
// only the mock section is replaced.
func (m MockConfig) Validate() error {
	if m.Port < 0 || m.Port > 65535 {
		return fmt.Errorf("mock.port out of range: %d", m.Port)
	}
	durations := map[string]time.Duration{
		"mock.greeting_duration": m.GreetingDuration,
		"mock.utterance_after":   m.UtteranceAfter,
		"mock.thinking_duration": m.ThinkingDuration,
		"mock.speaking_duration": m.SpeakingDuration,
		"mock.silence_timeout":   m.SilenceTimeout,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, d)
		}
	}
	if m.Exchanges < 0 {
		return fmt.Errorf("mock.exchanges must not be negative, got %d", m.Exchanges)
	}
	return nil
}
