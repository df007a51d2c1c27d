package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/tenonchecker/internal/tenon"
)

type Config struct {
	APIKey         string        `yaml:"api_key"`         // Tenon.io key
	Endpoint       string        `yaml:"endpoint"`        // Tenon.io API URL
	Timeout        time.Duration `yaml:"timeout"`         // 0 keeps the transport default
	Addr           string        `yaml:"addr"`            // relay API bind address
	LogDir         string        `yaml:"log_dir"`         // logs directory
	LogLevel       string        `yaml:"log_level"`       // debug|info|warn|error
	PublicAPIKeys  []string      `yaml:"public_api_keys"` // relay API keys; empty disables auth
	AllowedOrigins []string      `yaml:"allowed_origins"` // CORS; empty allows all
}

func Default() Config {
	return Config{
		Endpoint: tenon.DefaultEndpoint,
		Addr:     "127.0.0.1:8080",
		LogDir:   "logs",
		LogLevel: "info",
	}
}

// Load applies, in order: defaults, the YAML file at path (a missing file is
// ignored), a .env file in the working directory, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(content, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// .env is optional; real env vars win over it
	_ = godotenv.Load()

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TENON_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("TENON_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("TENON_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PUBLIC_API_KEYS"); v != "" {
		cfg.PublicAPIKeys = splitList(v)
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var err error
	if strings.TrimSpace(c.APIKey) == "" {
		err = multierr.Append(err, errors.New("TENON_API_KEY is empty"))
	}
	if _, perr := url.ParseRequestURI(c.Endpoint); perr != nil {
		err = multierr.Append(err, fmt.Errorf("endpoint %q: %w", c.Endpoint, perr))
	}
	if c.Timeout < 0 {
		err = multierr.Append(err, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	return err
}

// Tenon returns the client configuration.
func (c Config) Tenon() tenon.Config {
	return tenon.Config{Key: c.APIKey, Endpoint: c.Endpoint, Timeout: c.Timeout}
}
