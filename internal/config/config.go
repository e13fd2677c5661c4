package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/benithors/regbridge/internal/registrar"
	"github.com/benithors/regbridge/internal/registrar/spaceship"
)

// Config holds the defaults a bridge process runs with. Host-supplied
// credentials on a call take precedence over APIKey/APISecret.
type Config struct {
	APIKey    string        `yaml:"api_key" env:"SPACESHIP_API_KEY"`
	APISecret string        `yaml:"api_secret" env:"SPACESHIP_API_SECRET"`
	BaseURL   string        `yaml:"base_url" env:"SPACESHIP_BASE_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"REGBRIDGE_TIMEOUT"`
	MinDelay  time.Duration `yaml:"min_delay" env:"REGBRIDGE_MIN_DELAY"`

	Listen    string `yaml:"listen" env:"REGBRIDGE_LISTEN"`
	LogLevel  string `yaml:"log_level" env:"REGBRIDGE_LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"REGBRIDGE_LOG_FORMAT"`
}

func Default() Config {
	return Config{
		BaseURL:   spaceship.DefaultBaseURL,
		Timeout:   15 * time.Second,
		MinDelay:  100 * time.Millisecond,
		Listen:    "127.0.0.1:8089",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load layers configuration: defaults, then the YAML file at path (optional),
// then a .env file in the working directory, then the environment. The result
// is not validated; callers layer their own overrides and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(err, "failed to parse config file")
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return cfg, errors.Wrap(err, "failed to load .env file")
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to parse environment")
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return errors.Errorf("invalid log format %q (use text|json)", c.LogFormat)
	}
	if c.Timeout < 0 {
		return errors.Errorf("invalid timeout %s", c.Timeout)
	}
	return nil
}

// Credentials returns the configured default credentials.
func (c Config) Credentials() registrar.Credentials {
	return registrar.Credentials{APIKey: c.APIKey, APISecret: c.APISecret}
}

// SpaceshipOptions returns client options without credentials; those are
// supplied per call.
func (c Config) SpaceshipOptions() spaceship.Options {
	return spaceship.Options{
		BaseURL:  c.BaseURL,
		Timeout:  c.Timeout,
		MinDelay: c.MinDelay,
	}
}

// NewLogger builds a logrus logger from the log settings.
func (c Config) NewLogger() (*log.Logger, error) {
	l := log.New()
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	l.SetLevel(level)
	if strings.EqualFold(c.LogFormat, "json") {
		l.SetFormatter(&log.JSONFormatter{})
	}
	l.SetOutput(os.Stderr)
	return l, nil
}
