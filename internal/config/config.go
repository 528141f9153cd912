// internal/config/config.go
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the client. All keys are optional:
// missing values fall back to defaults, and any key can be overridden
// by a PARLEY_* environment variable.
type Config struct {
	APIKey       string  `yaml:"api_key"`
	BaseURL      string  `yaml:"base_url"`
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	SidecarURL   string  `yaml:"sidecar_url"`
	TimeoutMS    int     `yaml:"timeout_ms"`
	MaxRetries   int     `yaml:"max_retries"`
	RetryDelayMS int     `yaml:"retry_delay_ms"`
	ForceDirect  bool    `yaml:"force_direct"`
	MaxInputLen  int     `yaml:"max_input_len"`
	RevealTickMS int     `yaml:"reveal_tick_ms"`
	Environment  string  `yaml:"environment"`
	ProbeRetries int     `yaml:"probe_retries"`
	ProbeDelayMS int     `yaml:"probe_delay_ms"`
	SpeechURL    string  `yaml:"speech_url"`
}

// Load reads the config file, expands environment variables inside it,
// applies defaults for unset values and PARLEY_* overrides on top.
// A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom loads from an explicit path
func LoadFrom(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, err
		}
		applyDefaults(cfg)
	}

	applyEnv(cfg)
	return cfg, nil
}

// Path returns the config file location
func Path() string {
	configDir, err := os.UserConfigDir()
	if err != nil || configDir == "" {
		configDir = os.ExpandEnv("$HOME/.config")
	}
	return filepath.Join(configDir, "parley", "config.yaml")
}

func defaultConfig() *Config {
	return &Config{
		BaseURL:      "https://api.parley.dev",
		Model:        "parley-core-1",
		Temperature:  0.7,
		MaxTokens:    1024,
		SidecarURL:   "http://127.0.0.1:11601",
		TimeoutMS:    30000,
		MaxRetries:   3,
		RetryDelayMS: 1000,
		MaxInputLen:  4000,
		RevealTickMS: 30,
		Environment:  "Live",
		ProbeRetries: 3,
		ProbeDelayMS: 500,
		SpeechURL:    "http://127.0.0.1:5959",
	}
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.parley.dev"
	}
	if cfg.Model == "" {
		cfg.Model = "parley-core-1"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.SidecarURL == "" {
		cfg.SidecarURL = "http://127.0.0.1:11601"
	}
	if cfg.TimeoutMS == 0 {
		cfg.TimeoutMS = 30000
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayMS == 0 {
		cfg.RetryDelayMS = 1000
	}
	if cfg.MaxInputLen == 0 {
		cfg.MaxInputLen = 4000
	}
	if cfg.RevealTickMS == 0 {
		cfg.RevealTickMS = 30
	}
	if cfg.Environment == "" {
		cfg.Environment = "Live"
	}
	if cfg.ProbeRetries == 0 {
		cfg.ProbeRetries = 3
	}
	if cfg.ProbeDelayMS == 0 {
		cfg.ProbeDelayMS = 500
	}
	if cfg.SpeechURL == "" {
		cfg.SpeechURL = "http://127.0.0.1:5959"
	}
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "1" || strings.EqualFold(v, "true")
		}
	}
	setFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	setString("PARLEY_API_KEY", &cfg.APIKey)
	setString("PARLEY_BASE_URL", &cfg.BaseURL)
	setString("PARLEY_MODEL", &cfg.Model)
	setFloat("PARLEY_TEMPERATURE", &cfg.Temperature)
	setInt("PARLEY_MAX_TOKENS", &cfg.MaxTokens)
	setString("PARLEY_SIDECAR_URL", &cfg.SidecarURL)
	setInt("PARLEY_TIMEOUT_MS", &cfg.TimeoutMS)
	setInt("PARLEY_MAX_RETRIES", &cfg.MaxRetries)
	setInt("PARLEY_RETRY_DELAY_MS", &cfg.RetryDelayMS)
	setBool("PARLEY_FORCE_DIRECT", &cfg.ForceDirect)
	setInt("PARLEY_MAX_INPUT_LEN", &cfg.MaxInputLen)
	setInt("PARLEY_REVEAL_TICK_MS", &cfg.RevealTickMS)
	setString("PARLEY_ENVIRONMENT", &cfg.Environment)
	setInt("PARLEY_PROBE_RETRIES", &cfg.ProbeRetries)
	setInt("PARLEY_PROBE_DELAY_MS", &cfg.ProbeDelayMS)
	setString("PARLEY_SPEECH_URL", &cfg.SpeechURL)
}

// Timeout returns the per-call timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// RetryDelay returns the fixed inter-retry wait
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// RevealTick returns the delay per reveal tick
func (c *Config) RevealTick() time.Duration {
	return time.Duration(c.RevealTickMS) * time.Millisecond
}

// ProbeDelay returns the probe's base backoff delay
func (c *Config) ProbeDelay() time.Duration {
	return time.Duration(c.ProbeDelayMS) * time.Millisecond
}
